package service

import (
	"log"
	"path"
	"strings"
	"time"

	"github.com/enescakir/emoji"
	"github.com/relaychat/relaychat-backend/internal/cache"
	"github.com/relaychat/relaychat-backend/internal/metrics"
	"github.com/relaychat/relaychat-backend/internal/models"
	"github.com/relaychat/relaychat-backend/internal/repository"
	"github.com/relaychat/relaychat-backend/internal/storage"
	"github.com/relaychat/relaychat-backend/internal/validation"
)

// AttachmentSaver is the slice of the attachment store the pipeline needs.
type AttachmentSaver interface {
	Save(payload string, originalFilename string) (storage.Saved, error)
}

// MessageService is the single pipeline turning an inbound send request into
// a persisted, enriched message plus the notifications all interested
// parties receive. Direct and group sends share the pipeline; they differ
// only in target set and in which unread buckets get recomputed.
type MessageService struct {
	messageRepo repository.MessageRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	groupRepo   repository.GroupRepositoryInterface
	seenRepo    repository.MessageSeenRepositoryInterface
	store       AttachmentSaver
	unread      *UnreadService
	notifier    Notifier
	snapshots   *cache.SnapshotCache
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	groupRepo repository.GroupRepositoryInterface,
	seenRepo repository.MessageSeenRepositoryInterface,
	store AttachmentSaver,
	unread *UnreadService,
	notifier Notifier,
	snapshots *cache.SnapshotCache,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		groupRepo:   groupRepo,
		seenRepo:    seenRepo,
		store:       store,
		unread:      unread,
		notifier:    notifier,
		snapshots:   snapshots,
	}
}

type SendMessageInput struct {
	ReceiverID      *uint              `json:"receiver_id"`
	GroupID         *uint              `json:"group_id"`
	Content         string             `json:"content"`
	Kind            models.MessageKind `json:"type"`
	ParentMessageID *uint              `json:"parent_message_id"`
	// MediaURL carries the inline payload (data URL) for image/file kinds.
	MediaURL string `json:"media_url"`
	Filename string `json:"filename"`
}

// Send runs the pipeline: authorize, transform, resolve attachment, enrich
// thread context, persist, then fan out. Each stage aborts with a typed
// error and no later-stage side effects; nothing is written unless every
// stage before persistence succeeded.
func (s *MessageService) Send(senderID uint, input SendMessageInput) (*models.MessagePayload, error) {
	// Stage 1: authorization. Sender identity comes from the connection,
	// never the payload.
	if senderID == 0 {
		return nil, ErrUnauthorized
	}
	if (input.ReceiverID != nil) == (input.GroupID != nil) {
		return nil, &ValidationError{Reason: "exactly one of receiver_id and group_id must be set"}
	}
	if input.GroupID != nil {
		member, err := s.groupRepo.IsMember(*input.GroupID, senderID)
		if err != nil {
			return nil, persistence(err)
		}
		if !member {
			return nil, &ValidationError{Reason: "not a member of this group"}
		}
	}

	kind := input.Kind
	if kind == "" {
		kind = models.TextMessage
	}

	// Stage 2: content transform.
	content := input.Content
	if kind == models.TextMessage {
		if strings.TrimSpace(content) == "" {
			return nil, &ValidationError{Reason: "message content is required"}
		}
		content = emoji.Parse(content)
	}

	// Stage 3: attachment resolution.
	var mediaURL, mediaType, filename *string
	var fileSize *int64
	if (kind == models.ImageMessage || kind == models.FileMessage) && input.MediaURL != "" {
		name := input.Filename
		if name == "" {
			name = "attachment"
		}
		saved, err := s.store.Save(input.MediaURL, name)
		if err != nil {
			return nil, &AttachmentError{Reason: err.Error()}
		}
		mediaURL = &saved.Path
		size := saved.Size
		fileSize = &size
		mt := "file"
		if kind == models.ImageMessage {
			mt = "image"
		}
		mediaType = &mt
		if input.Filename != "" {
			filename = &input.Filename
		} else {
			base := path.Base(saved.Path)
			filename = &base
		}
	}

	// Stage 4: thread enrichment.
	var parent *models.Message
	if input.ParentMessageID != nil && (kind == models.ReplyMessage || kind == models.ForwardMessage) {
		var err error
		parent, err = s.messageRepo.FindByID(*input.ParentMessageID)
		if err != nil || parent == nil {
			return nil, &NotFoundError{Resource: "parent message"}
		}

		if kind == models.ForwardMessage && parent.MediaURL != nil {
			// Forwarded media is copied byte-for-byte from the parent's
			// fields; the store is never consulted again.
			mediaURL = parent.MediaURL
			if parent.MediaType != nil {
				mediaType = parent.MediaType
			} else {
				mt := deriveMediaType(*parent.MediaURL)
				mediaType = &mt
			}
			fileSize = parent.FileSize
			if filename == nil {
				if parent.Filename != nil {
					filename = parent.Filename
				} else {
					base := path.Base(*parent.MediaURL)
					filename = &base
				}
			}
		}
	}

	// Stage 5: persistence. The generated id is the canonical identity used
	// in every subsequent event.
	message := &models.Message{
		SenderID:        senderID,
		ReceiverID:      input.ReceiverID,
		GroupID:         input.GroupID,
		Content:         validation.TrimAndLimit(content, validation.MaxMessageLength()),
		Kind:            kind,
		ParentMessageID: input.ParentMessageID,
		MediaURL:        mediaURL,
		MediaType:       mediaType,
		FileSize:        fileSize,
		Filename:        filename,
	}
	if err := s.messageRepo.Create(message); err != nil {
		log.Printf("failed to persist message from user %d: %v", senderID, err)
		return nil, persistence(err)
	}

	payload := s.buildPayload(message, parent)

	// Stage 6: side effects. The message is already persisted; failures
	// here are logged and never reported to the sender.
	s.fanOut(message, payload)

	return payload, nil
}

func (s *MessageService) fanOut(message *models.Message, payload *models.MessagePayload) {
	if s.notifier == nil {
		return
	}

	now := time.Now().UTC().UnixMilli()
	if message.GroupID != nil {
		metrics.MessagesPersisted.WithLabelValues("group").Inc()
		if err := s.snapshots.InvalidateGroupHistory(*message.GroupID); err != nil {
			log.Printf("failed to invalidate group %d history cache: %v", *message.GroupID, err)
		}
		s.notifier.GroupMessage(payload)

		memberIDs, err := s.groupRepo.MemberIDs(*message.GroupID)
		if err != nil {
			log.Printf("failed to list members of group %d: %v", *message.GroupID, err)
			return
		}
		for _, memberID := range memberIDs {
			s.notifier.GroupActivity(memberID, *message.GroupID, now)
			s.pushUnread(memberID)
		}
		return
	}

	metrics.MessagesPersisted.WithLabelValues("direct").Inc()
	s.notifier.DirectMessage(payload)

	receiverID := *message.ReceiverID
	s.notifier.DirectActivity(message.SenderID, receiverID, now)
	if receiverID != message.SenderID {
		s.notifier.DirectActivity(receiverID, message.SenderID, now)
	}
	s.pushUnread(receiverID)
	if receiverID != message.SenderID {
		s.pushUnread(message.SenderID)
	}
}

// pushUnread recomputes and pushes one user's combined snapshot,
// log-and-continue.
func (s *MessageService) pushUnread(userID uint) {
	if s.notifier == nil {
		return
	}
	counts, err := s.unread.CombinedCounts(userID)
	if err != nil {
		log.Printf("failed to recompute unread counts for user %d: %v", userID, err)
		return
	}
	s.notifier.UnreadCounts(userID, counts)
}

// MarkRead marks one direct message read and notifies the original sender.
func (s *MessageService) MarkRead(readerID, messageID, senderID uint) error {
	if readerID == 0 {
		return ErrUnauthorized
	}
	if err := s.messageRepo.MarkRead(messageID); err != nil {
		log.Printf("failed to mark message %d read: %v", messageID, err)
		return persistence(err)
	}
	if s.notifier != nil {
		s.notifier.MessageRead(senderID, messageID)
	}
	s.pushUnread(readerID)
	s.pushUnread(senderID)
	return nil
}

// Delivered relays a delivery (not read) acknowledgement to the sender.
// Nothing is persisted.
func (s *MessageService) Delivered(readerID, messageID, senderID uint) error {
	if readerID == 0 {
		return ErrUnauthorized
	}
	if messageID == 0 || senderID == 0 {
		return &ValidationError{Reason: "message_id and sender_id are required"}
	}
	if s.notifier != nil {
		s.notifier.MessageDelivered(senderID, messageID)
	}
	return nil
}

// MarkGroupSeen records a seen-marker and pushes the refreshed seen-by list
// to the group room.
func (s *MessageService) MarkGroupSeen(userID, messageID, groupID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if messageID == 0 || groupID == 0 {
		return &ValidationError{Reason: "message_id and group_id are required"}
	}
	if err := s.seenRepo.MarkSeen(messageID, userID); err != nil {
		log.Printf("failed to mark message %d seen by user %d: %v", messageID, userID, err)
		return persistence(err)
	}
	s.pushUnread(userID)

	if s.notifier != nil {
		seenUsers, err := s.seenRepo.SeenUsers(messageID)
		if err != nil {
			log.Printf("failed to load seen users for message %d: %v", messageID, err)
			return nil
		}
		s.notifier.GroupSeenUpdate(groupID, messageID, seenUsers)
	}
	return nil
}

// GetConversation returns the newest messages between two users in
// chronological order and implicitly marks the fetched messages addressed to
// the requester as read.
func (s *MessageService) GetConversation(userID, peerID uint, limit int) ([]models.MessagePayload, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	messages, err := s.messageRepo.FindConversation(userID, peerID, limit)
	if err != nil {
		return nil, persistence(err)
	}

	var unreadIDs []uint
	for i := range messages {
		m := &messages[i]
		if m.ReceiverID != nil && *m.ReceiverID == userID && !m.IsRead {
			unreadIDs = append(unreadIDs, m.ID)
			m.IsRead = true
		}
	}
	if len(unreadIDs) > 0 {
		if err := s.messageRepo.MarkReadBulk(unreadIDs); err != nil {
			log.Printf("failed to bulk-mark %d messages read for user %d: %v", len(unreadIDs), userID, err)
		} else {
			s.pushUnread(userID)
		}
	}

	return s.toPayloads(messages), nil
}

// GetGroupMessages returns the newest group messages in chronological order.
// Group read state is explicit (seen-markers), so nothing is marked here.
func (s *MessageService) GetGroupMessages(userID, groupID uint, limit int) ([]models.MessagePayload, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if cached, ok := s.snapshots.GetGroupHistory(groupID, limit); ok {
		return cached, nil
	}
	messages, err := s.messageRepo.FindGroupMessages(groupID, limit)
	if err != nil {
		return nil, persistence(err)
	}
	payloads := s.toPayloads(messages)
	if err := s.snapshots.SetGroupHistory(groupID, limit, payloads); err != nil {
		log.Printf("failed to cache group %d history: %v", groupID, err)
	}
	return payloads, nil
}

// PinMessage flips the per-message pin flag and notifies the conversation's
// participants (direct) or the group room.
func (s *MessageService) PinMessage(userID, messageID uint, pin bool) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil || message == nil {
		return &NotFoundError{Resource: "message"}
	}
	if err := s.messageRepo.PinMessage(messageID, pin); err != nil {
		return persistence(err)
	}
	if message.GroupID != nil {
		if err := s.snapshots.InvalidateGroupHistory(*message.GroupID); err != nil {
			log.Printf("failed to invalidate group %d history cache: %v", *message.GroupID, err)
		}
	}
	if s.notifier == nil {
		return nil
	}
	if message.GroupID != nil {
		s.notifier.GroupMessagePinned(*message.GroupID, messageID, pin)
	} else {
		s.notifier.MessagePinned(message.SenderID, message.ReceiverID, messageID, pin)
	}
	return nil
}

// Search matches content, filename and media path scoped to one direct
// conversation or one group.
func (s *MessageService) Search(userID uint, query string, peerID, groupID *uint, limit int) ([]models.MessagePayload, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(query) == "" {
		return []models.MessagePayload{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var messages []models.Message
	var err error
	switch {
	case groupID != nil:
		messages, err = s.messageRepo.SearchGroup(query, *groupID, limit)
	case peerID != nil:
		messages, err = s.messageRepo.SearchDirect(query, userID, *peerID, limit)
	default:
		return []models.MessagePayload{}, nil
	}
	if err != nil {
		return nil, persistence(err)
	}
	return s.toPayloads(messages), nil
}

// PinnedMessages lists pinned messages for a direct conversation or a group.
func (s *MessageService) PinnedMessages(userID uint, peerID, groupID *uint) ([]models.MessagePayload, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	var messages []models.Message
	var err error
	switch {
	case groupID != nil:
		messages, err = s.messageRepo.FindPinnedGroup(*groupID)
	case peerID != nil:
		messages, err = s.messageRepo.FindPinnedDirect(userID, *peerID)
	default:
		return []models.MessagePayload{}, nil
	}
	if err != nil {
		return nil, persistence(err)
	}
	return s.toPayloads(messages), nil
}

// SeenUsers returns the seen-by list for one group message.
func (s *MessageService) SeenUsers(messageID uint) ([]models.SeenUser, error) {
	users, err := s.seenRepo.SeenUsers(messageID)
	if err != nil {
		return nil, persistence(err)
	}
	return users, nil
}

func (s *MessageService) toPayloads(messages []models.Message) []models.MessagePayload {
	payloads := make([]models.MessagePayload, 0, len(messages))
	for i := range messages {
		payloads = append(payloads, *s.buildPayload(&messages[i], messages[i].Parent))
	}
	return payloads
}

// buildPayload produces the enriched wire shape, including parent preview
// fields for reply/forward kinds and the cosmetic forward content cleanup.
func (s *MessageService) buildPayload(message *models.Message, parent *models.Message) *models.MessagePayload {
	payload := &models.MessagePayload{
		ID:              message.ID,
		SenderID:        message.SenderID,
		SenderName:      s.userName(message.SenderID, &message.Sender),
		ReceiverID:      message.ReceiverID,
		GroupID:         message.GroupID,
		Content:         message.Content,
		Kind:            message.Kind,
		ParentMessageID: message.ParentMessageID,
		MediaURL:        message.MediaURL,
		MediaType:       message.MediaType,
		FileSize:        message.FileSize,
		Filename:        message.Filename,
		Timestamp:       models.FormatTimestamp(message.CreatedAt),
		IsRead:          message.IsRead,
		Pinned:          message.Pinned,
	}

	if payload.Filename == nil && payload.MediaURL != nil {
		base := path.Base(*payload.MediaURL)
		payload.Filename = &base
	}

	if message.Kind != models.ReplyMessage && message.Kind != models.ForwardMessage {
		return payload
	}
	if parent == nil && message.ParentMessageID != nil {
		var err error
		parent, err = s.messageRepo.FindByID(*message.ParentMessageID)
		if err != nil {
			parent = nil
		}
	}
	if parent == nil {
		// Parent gone (cascade or race): keep the message renderable.
		payload.ParentContent = "Original message not available"
		payload.ParentKind = models.TextMessage
		return payload
	}

	parentSenderName := s.userName(parent.SenderID, &parent.Sender)
	payload.ParentContent = parent.Content
	payload.ParentKind = parent.Kind
	payload.ParentMediaURL = parent.MediaURL
	payload.ParentSenderName = parentSenderName
	payload.ParentFilename = parent.Filename

	switch message.Kind {
	case models.ReplyMessage:
		payload.MessageHeader = "Reply to " + parentSenderName
		payload.HeaderIcon = "fa-reply"
	case models.ForwardMessage:
		payload.MessageHeader = "Forwarded message " + parentSenderName
		payload.HeaderIcon = "fa-share"
		// Best-effort cosmetic cleanup: the copied content often starts with
		// the original sender's name.
		payload.Content = cleanForwardContent(parent.Content, parentSenderName)
	}
	return payload
}

func (s *MessageService) userName(userID uint, preloaded *models.User) string {
	if preloaded != nil && preloaded.ID == userID && preloaded.Name != "" {
		return preloaded.Name
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil || user == nil {
		return "Unknown"
	}
	return user.Name
}

func cleanForwardContent(content, senderName string) string {
	if senderName == "" {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(strings.Replace(content, senderName, "", 1))
}

func deriveMediaType(mediaURL string) string {
	lower := strings.ToLower(mediaURL)
	if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") || strings.HasSuffix(lower, ".png") {
		return "image"
	}
	return "file"
}
