package ws

// MessageGroupSeen is the mark_group_message_seen event: one user's explicit
// seen-marker on a group message. The refreshed seen-by list goes to the
// whole group room.
type MessageGroupSeen struct {
	MessageID uint `json:"message_id"`
	GroupID   uint `json:"group_id"`
}

func (msg *MessageGroupSeen) GetType() string {
	return "mark_group_message_seen"
}

func (msg *MessageGroupSeen) Process(ctx *MessageContext) error {
	return ctx.Messages.MarkGroupSeen(ctx.UserID, msg.MessageID, msg.GroupID)
}
