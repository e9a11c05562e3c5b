package ws

// MessageMarkRead is the mark_read event: the reader confirms one direct
// message, which notifies the original sender and refreshes both unread
// snapshots.
type MessageMarkRead struct {
	MessageID uint `json:"message_id"`
	SenderID  uint `json:"sender_id"`
}

func (msg *MessageMarkRead) GetType() string {
	return "mark_read"
}

func (msg *MessageMarkRead) Process(ctx *MessageContext) error {
	return ctx.Messages.MarkRead(ctx.UserID, msg.MessageID, msg.SenderID)
}

// MessageDelivery is the message_delivered event: a device acknowledges
// receipt without the user having read it. Purely a relay, nothing persists.
type MessageDelivery struct {
	MessageID uint `json:"message_id"`
	SenderID  uint `json:"sender_id"`
}

func (msg *MessageDelivery) GetType() string {
	return "message_delivered"
}

func (msg *MessageDelivery) Process(ctx *MessageContext) error {
	return ctx.Messages.Delivered(ctx.UserID, msg.MessageID, msg.SenderID)
}
