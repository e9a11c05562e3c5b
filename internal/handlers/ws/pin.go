package ws

// MessagePinToggle is the pin_message event: flips the per-message pin flag
// and notifies the conversation or group. An absent pin field means pin.
type MessagePinToggle struct {
	MessageID uint  `json:"message_id"`
	Pin       *bool `json:"pin"`
}

func (msg *MessagePinToggle) GetType() string {
	return "pin_message"
}

func (msg *MessagePinToggle) pinned() bool {
	if msg.Pin == nil {
		return true
	}
	return *msg.Pin
}

func (msg *MessagePinToggle) Process(ctx *MessageContext) error {
	return ctx.Messages.PinMessage(ctx.UserID, msg.MessageID, msg.pinned())
}
