package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/relaychat/relaychat-backend/internal/handlers/ws"
	"github.com/relaychat/relaychat-backend/internal/metrics"
	"github.com/relaychat/relaychat-backend/internal/service"
)

type WebSocketHandler struct {
	hub             *ws.Hub
	messageService  *service.MessageService
	groupService    *service.GroupService
	presenceService *service.PresenceService
	pinService      *service.PinService
	unreadService   *service.UnreadService
}

func NewWebSocketHandler(
	hub *ws.Hub,
	messageService *service.MessageService,
	groupService *service.GroupService,
	presenceService *service.PresenceService,
	pinService *service.PinService,
	unreadService *service.UnreadService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:             hub,
		messageService:  messageService,
		groupService:    groupService,
		presenceService: presenceService,
		pinService:      pinService,
		unreadService:   unreadService,
	}
}

// HandleWebSocket owns one connection: register, auto-join the user's group
// rooms, push the initial unread snapshot, then dispatch inbound events
// until the read loop ends. Presence transitions ride the hub's first/last
// hooks, so one disconnect of a multi-device user never flips them offline.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)

	client, _ := h.hub.Register(userID, c)
	defer h.hub.Unregister(client)

	c.SetPongHandler(func(string) error {
		h.hub.TouchPong(client)
		h.presenceService.Refresh(userID)
		return nil
	})

	// Current memberships; later joins arrive as join_group events.
	if groupIDs, err := h.groupService.GroupIDsForUser(userID); err != nil {
		log.Printf("failed to load group memberships for user %d: %v", userID, err)
	} else {
		for _, groupID := range groupIDs {
			h.hub.JoinRoom(client, ws.GroupRoom(groupID))
		}
	}

	// Initial unread snapshot, to this connection only.
	if counts, err := h.unreadService.CombinedCounts(userID); err != nil {
		log.Printf("failed to load unread counts for user %d: %v", userID, err)
	} else if err := client.WriteEvent("unread_counts_update", counts); err != nil {
		log.Printf("failed to send initial unread counts to user %d: %v", userID, err)
		return
	}

	ctx := &ws.MessageContext{
		UserID:   userID,
		Client:   client,
		Hub:      h.hub,
		Messages: h.messageService,
		Groups:   h.groupService,
		Presence: h.presenceService,
		Pins:     h.pinService,
		Unread:   h.unreadService,
	}

	for {
		_, messageBytes, err := c.ReadMessage()
		if err != nil {
			log.Printf("read loop ended for user %d: %v", userID, err)
			break
		}

		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			metrics.WSEvents.WithLabelValues("unknown").Inc()
			log.Printf("undecodable event from user %d: %v", userID, err)
			if err := ws.SendError(client, &service.ValidationError{Reason: "invalid message format"}); err != nil {
				break
			}
			continue
		}

		metrics.WSEvents.WithLabelValues(msg.GetType()).Inc()
		if err := msg.Process(ctx); err != nil {
			log.Printf("event %s from user %d failed: %v", msg.GetType(), userID, err)
			if err := ws.SendError(client, err); err != nil {
				break
			}
			continue
		}

		if err := client.WriteEvent("ack", map[string]interface{}{
			"event":   msg.GetType(),
			"success": true,
		}); err != nil {
			break
		}
	}
}
