package service

import (
	"github.com/relaychat/relaychat-backend/internal/models"
)

// Notifier is the outbound half of the pipeline: typed events delivered to
// the rooms that should receive them. Emission is fire-and-forget; callers
// never learn about delivery failures, so implementations must not block on
// or propagate them.
type Notifier interface {
	// DirectMessage goes to the sender's and receiver's personal rooms,
	// deduplicated when they are the same user.
	DirectMessage(payload *models.MessagePayload)
	// GroupMessage goes to the single group room.
	GroupMessage(payload *models.MessagePayload)

	// MessageRead and MessageDelivered go to the original sender's room.
	MessageRead(senderID, messageID uint)
	MessageDelivered(senderID, messageID uint)

	// UnreadCounts pushes one user's fresh combined snapshot.
	UnreadCounts(userID uint, counts map[string]int64)

	// Activity hints for client-side conversation ordering.
	DirectActivity(userID, peerID uint, timestamp int64)
	GroupActivity(userID, groupID uint, timestamp int64)

	MessagePinned(senderID uint, receiverID *uint, messageID uint, pinned bool)
	GroupMessagePinned(groupID, messageID uint, pinned bool)
	GroupSeenUpdate(groupID, messageID uint, seenUsers []models.SeenUser)
	ChatPinUpdated(userID uint, targetType models.PinTargetType, targetID string, pin bool)
	GroupCreated(userID uint, group *models.GroupResponse)
}
