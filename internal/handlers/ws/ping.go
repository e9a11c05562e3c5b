package ws

// MessagePing is an application-level keepalive from the client; it also
// refreshes the cached presence TTL.
type MessagePing struct {
}

func (msg *MessagePing) GetType() string {
	return "ping"
}

func (msg *MessagePing) Process(ctx *MessageContext) error {
	if ctx.Presence != nil {
		ctx.Presence.Refresh(ctx.UserID)
	}
	return ctx.Client.WriteEvent("pong", nil)
}

// MessagePong acknowledges a server ping sent as an application event.
type MessagePong struct {
}

func (msg *MessagePong) GetType() string {
	return "pong"
}

func (msg *MessagePong) Process(ctx *MessageContext) error {
	if ctx.Presence != nil {
		ctx.Presence.Refresh(ctx.UserID)
	}
	return nil
}
