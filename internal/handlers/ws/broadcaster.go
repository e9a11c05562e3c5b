package ws

import (
	"github.com/relaychat/relaychat-backend/internal/models"
)

// Broadcaster translates service-layer notifications into enveloped events
// on hub rooms. It is the single place event names and payload shapes are
// defined for the outbound direction.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// DirectMessage reaches both participants' personal rooms; a self-message
// is delivered once.
func (b *Broadcaster) DirectMessage(payload *models.MessagePayload) {
	b.hub.EmitToUser(payload.SenderID, "new_message", payload)
	if payload.ReceiverID != nil && *payload.ReceiverID != payload.SenderID {
		b.hub.EmitToUser(*payload.ReceiverID, "new_message", payload)
	}
}

func (b *Broadcaster) GroupMessage(payload *models.MessagePayload) {
	if payload.GroupID == nil {
		return
	}
	b.hub.EmitToRoom(GroupRoom(*payload.GroupID), "new_group_message", payload)
}

func (b *Broadcaster) MessageRead(senderID, messageID uint) {
	b.hub.EmitToUser(senderID, "message_read", map[string]interface{}{
		"message_id": messageID,
	})
}

func (b *Broadcaster) MessageDelivered(senderID, messageID uint) {
	b.hub.EmitToUser(senderID, "message_delivered", map[string]interface{}{
		"message_id": messageID,
	})
}

// UnreadCounts pushes the combined mapping as the payload itself, bare peer
// ids and "group:{id}" keys.
func (b *Broadcaster) UnreadCounts(userID uint, counts map[string]int64) {
	b.hub.EmitToUser(userID, "unread_counts_update", counts)
}

func (b *Broadcaster) DirectActivity(userID, peerID uint, timestamp int64) {
	b.hub.EmitToUser(userID, "update_last_activity", map[string]interface{}{
		"peer_id":   peerID,
		"timestamp": timestamp,
	})
}

func (b *Broadcaster) GroupActivity(userID, groupID uint, timestamp int64) {
	b.hub.EmitToUser(userID, "update_group_activity", map[string]interface{}{
		"group_id":  groupID,
		"timestamp": timestamp,
	})
}

// MessagePinned reaches both direct participants, deduplicated for
// self-conversations.
func (b *Broadcaster) MessagePinned(senderID uint, receiverID *uint, messageID uint, pinned bool) {
	payload := map[string]interface{}{
		"message_id": messageID,
		"pinned":     pinned,
	}
	b.hub.EmitToUser(senderID, "message_pinned", payload)
	if receiverID != nil && *receiverID != senderID {
		b.hub.EmitToUser(*receiverID, "message_pinned", payload)
	}
}

func (b *Broadcaster) GroupMessagePinned(groupID, messageID uint, pinned bool) {
	b.hub.EmitToRoom(GroupRoom(groupID), "group_message_pinned", map[string]interface{}{
		"group_id":   groupID,
		"message_id": messageID,
		"pinned":     pinned,
	})
}

func (b *Broadcaster) GroupSeenUpdate(groupID, messageID uint, seenUsers []models.SeenUser) {
	b.hub.EmitToRoom(GroupRoom(groupID), "group_message_seen_update", map[string]interface{}{
		"group_id":   groupID,
		"message_id": messageID,
		"seen_users": seenUsers,
	})
}

func (b *Broadcaster) ChatPinUpdated(userID uint, targetType models.PinTargetType, targetID string, pin bool) {
	b.hub.EmitToUser(userID, "chat_pin_updated", map[string]interface{}{
		"target_type": targetType,
		"target_id":   targetID,
		"pinned":      pin,
	})
}

func (b *Broadcaster) GroupCreated(userID uint, group *models.GroupResponse) {
	b.hub.EmitToUser(userID, "group_created", group)
}

// UserConnected and UserDisconnected are presence broadcasts to every live
// connection; they are driven by the registry's first/last transitions, not
// the Notifier interface.
func (b *Broadcaster) UserConnected(userID uint) {
	b.hub.Broadcast("user_connected", map[string]interface{}{"user_id": userID})
}

func (b *Broadcaster) UserDisconnected(userID uint) {
	b.hub.Broadcast("user_disconnected", map[string]interface{}{"user_id": userID})
}
