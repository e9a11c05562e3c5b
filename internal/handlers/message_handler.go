package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/relaychat/relaychat-backend/internal/httpx"
	"github.com/relaychat/relaychat-backend/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// GetConversation returns direct history with a peer. Fetching implicitly
// marks the returned messages addressed to the requester as read and pushes
// a fresh unread snapshot over the socket.
func (h *MessageHandler) GetConversation(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	peerID, err := c.ParamsInt("peer_id")
	if err != nil || peerID <= 0 {
		return httpx.BadRequest(c, "invalid_peer", "Invalid peer id")
	}

	payloads, err := h.messageService.GetConversation(userID, uint(peerID), c.QueryInt("limit", 50))
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"messages": payloads})
}

// Search matches content, filename and media path within one direct
// conversation or one group.
func (h *MessageHandler) Search(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var peerID, groupID *uint
	if v := c.QueryInt("peer_id", 0); v > 0 {
		id := uint(v)
		peerID = &id
	}
	if v := c.QueryInt("group_id", 0); v > 0 {
		id := uint(v)
		groupID = &id
	}

	payloads, err := h.messageService.Search(userID, c.Query("q"), peerID, groupID, c.QueryInt("limit", 50))
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"messages": payloads})
}

// Pinned lists pinned messages for a direct conversation or a group.
func (h *MessageHandler) Pinned(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var peerID, groupID *uint
	if v := c.QueryInt("peer_id", 0); v > 0 {
		id := uint(v)
		peerID = &id
	}
	if v := c.QueryInt("group_id", 0); v > 0 {
		id := uint(v)
		groupID = &id
	}

	payloads, err := h.messageService.PinnedMessages(userID, peerID, groupID)
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"messages": payloads})
}

// pinRequest leaves pin optional; absent means pin.
type pinRequest struct {
	MessageID uint  `json:"message_id"`
	Pin       *bool `json:"pin"`
}

func (r pinRequest) pin() bool {
	if r.Pin == nil {
		return true
	}
	return *r.Pin
}

// Pin flips the per-message pin flag; the affected conversation or group is
// notified over the socket.
func (h *MessageHandler) Pin(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if req.MessageID == 0 {
		return httpx.BadRequest(c, "missing_message_id", "message_id is required")
	}
	if err := h.messageService.PinMessage(userID, req.MessageID, req.pin()); err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// SeenUsers returns the seen-by list for one group message.
func (h *MessageHandler) SeenUsers(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	messageID, err := c.ParamsInt("id")
	if err != nil || messageID <= 0 {
		return httpx.BadRequest(c, "invalid_message_id", "Invalid message id")
	}
	users, err := h.messageService.SeenUsers(uint(messageID))
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"seen_users": users})
}
