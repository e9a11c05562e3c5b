package ws

import (
	"github.com/relaychat/relaychat-backend/internal/models"
	"github.com/relaychat/relaychat-backend/internal/service"
)

// MessageSend is the send_message event: one direct message to a peer. The
// sender identity always comes from the connection, never the payload.
type MessageSend struct {
	ReceiverID      uint               `json:"receiver_id"`
	Content         string             `json:"content"`
	Kind            models.MessageKind `json:"type"`
	ParentMessageID *uint              `json:"parent_message_id"`
	MediaURL        string             `json:"media_url"`
	Filename        string             `json:"filename"`
}

func (msg *MessageSend) GetType() string {
	return "send_message"
}

func (msg *MessageSend) Process(ctx *MessageContext) error {
	receiverID := msg.ReceiverID
	_, err := ctx.Messages.Send(ctx.UserID, service.SendMessageInput{
		ReceiverID:      &receiverID,
		Content:         msg.Content,
		Kind:            msg.Kind,
		ParentMessageID: msg.ParentMessageID,
		MediaURL:        msg.MediaURL,
		Filename:        msg.Filename,
	})
	return err
}

// MessageGroupSend is the send_group_message event. Membership is enforced
// in the service; non-members get a validation error and nothing is stored.
type MessageGroupSend struct {
	GroupID         uint               `json:"group_id"`
	Content         string             `json:"content"`
	Kind            models.MessageKind `json:"type"`
	ParentMessageID *uint              `json:"parent_message_id"`
	MediaURL        string             `json:"media_url"`
	Filename        string             `json:"filename"`
}

func (msg *MessageGroupSend) GetType() string {
	return "send_group_message"
}

func (msg *MessageGroupSend) Process(ctx *MessageContext) error {
	groupID := msg.GroupID
	_, err := ctx.Messages.Send(ctx.UserID, service.SendMessageInput{
		GroupID:         &groupID,
		Content:         msg.Content,
		Kind:            msg.Kind,
		ParentMessageID: msg.ParentMessageID,
		MediaURL:        msg.MediaURL,
		Filename:        msg.Filename,
	})
	return err
}
