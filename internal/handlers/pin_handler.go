package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/relaychat/relaychat-backend/internal/httpx"
	"github.com/relaychat/relaychat-backend/internal/models"
	"github.com/relaychat/relaychat-backend/internal/service"
)

type PinHandler struct {
	pinService *service.PinService
}

func NewPinHandler(pinService *service.PinService) *PinHandler {
	return &PinHandler{pinService: pinService}
}

// List returns the requester's pinned conversations grouped by target type.
func (h *PinHandler) List(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	pins, err := h.pinService.ChatPins(userID)
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(pins)
}

type chatPinRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Pinned     bool   `json:"pinned"`
}

// Set pins or unpins one conversation in the requester's list.
func (h *PinHandler) Set(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	var req chatPinRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	err = h.pinService.SetChatPin(userID, models.PinTargetType(req.TargetType), req.TargetID, req.Pinned)
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
