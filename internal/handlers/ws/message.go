package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/gofiber/websocket/v2"
	"github.com/relaychat/relaychat-backend/internal/service"
)

// MessageContext provides everything an inbound event needs to process.
type MessageContext struct {
	UserID   uint
	Client   *Client
	Hub      *Hub
	Messages *service.MessageService
	Groups   *service.GroupService
	Presence *service.PresenceService
	Pins     *service.PinService
	Unread   *service.UnreadService
}

// Message is an inbound websocket event.
type Message interface {
	GetType() string
	Process(ctx *MessageContext) error
}

// SerializedMessage is the wire envelope for both directions.
type SerializedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorResponse is sent when event processing fails.
type ErrorResponse struct {
	Type  string `json:"type"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

func CreateMessage(msgType string, registry map[string]reflect.Type) (Message, error) {
	msgTypeReflect, ok := registry[msgType]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}
	return reflect.New(msgTypeReflect).Interface().(Message), nil
}

// SendError maps the service error taxonomy onto wire error codes and sends
// the result to the offending client only. Persistence details never leave
// the server.
func SendError(client *Client, err error) error {
	code := "internal_error"
	msg := "internal server error"

	var ve *service.ValidationError
	var ae *service.AttachmentError
	var nfe *service.NotFoundError
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		code, msg = "unauthorized", "unauthorized"
	case errors.As(err, &ve):
		code, msg = "validation_error", ve.Reason
	case errors.As(err, &ae):
		code, msg = "attachment_error", ae.Reason
	case errors.As(err, &nfe):
		code, msg = "not_found", nfe.Error()
	}

	data, err := json.Marshal(ErrorResponse{Type: "error", Error: msg, Code: code})
	if err != nil {
		return err
	}
	return client.write(websocket.TextMessage, data)
}
