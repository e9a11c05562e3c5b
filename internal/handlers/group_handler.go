package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/relaychat/relaychat-backend/internal/httpx"
	"github.com/relaychat/relaychat-backend/internal/service"
)

type GroupHandler struct {
	groupService   *service.GroupService
	messageService *service.MessageService
}

func NewGroupHandler(groupService *service.GroupService, messageService *service.MessageService) *GroupHandler {
	return &GroupHandler{groupService: groupService, messageService: messageService}
}

// List returns the requester's groups with unread counts and last activity.
func (h *GroupHandler) List(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groups, err := h.groupService.ListForUser(userID)
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// Create makes a new group with the requester as admin. Every initial member
// gets a group_created event.
func (h *GroupHandler) Create(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	var input service.CreateGroupInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	group, err := h.groupService.CreateGroup(userID, input)
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// Members returns the roster; membership required.
func (h *GroupHandler) Members(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}
	members, err := h.groupService.Members(userID, uint(groupID))
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

type memberRequest struct {
	UserID uint `json:"user_id"`
}

// AddMember adds one user; admin only.
func (h *GroupHandler) AddMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}
	var req memberRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return httpx.BadRequest(c, "invalid_body", "user_id is required")
	}
	if err := h.groupService.AddMember(userID, uint(groupID), req.UserID); err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// RemoveMember removes one user. Admins can remove anyone; a member can
// remove only themselves.
func (h *GroupHandler) RemoveMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}
	var req memberRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return httpx.BadRequest(c, "invalid_body", "user_id is required")
	}
	if err := h.groupService.RemoveMember(userID, uint(groupID), req.UserID); err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// Messages returns group history; membership required. Group fetches never
// change read state, which is explicit via seen-markers.
func (h *GroupHandler) Messages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}
	member, err := h.groupService.IsMember(uint(groupID), userID)
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	if !member {
		return httpx.Forbidden(c, "forbidden", "Not a member of this group")
	}
	payloads, err := h.messageService.GetGroupMessages(userID, uint(groupID), c.QueryInt("limit", 50))
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"messages": payloads})
}

// PinMessage flips the pin flag on one of the group's messages.
func (h *GroupHandler) PinMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	var req pinRequest
	if err := c.BodyParser(&req); err != nil || req.MessageID == 0 {
		return httpx.BadRequest(c, "invalid_body", "message_id is required")
	}
	if err := h.messageService.PinMessage(userID, req.MessageID, req.pin()); err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
