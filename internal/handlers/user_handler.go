package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/relaychat/relaychat-backend/internal/httpx"
	"github.com/relaychat/relaychat-backend/internal/models"
	"github.com/relaychat/relaychat-backend/internal/repository"
	"github.com/relaychat/relaychat-backend/internal/service"
)

type UserHandler struct {
	userRepo        repository.UserRepositoryInterface
	presenceService *service.PresenceService
	unreadService   *service.UnreadService
}

func NewUserHandler(userRepo repository.UserRepositoryInterface, presenceService *service.PresenceService, unreadService *service.UnreadService) *UserHandler {
	return &UserHandler{userRepo: userRepo, presenceService: presenceService, unreadService: unreadService}
}

// List returns the active-account directory clients build their contact list
// from. Disabled accounts are excluded; credentials never leave the server.
func (h *UserHandler) List(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	users, err := h.userRepo.ListActive()
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	entries := make([]models.UserResponse, 0, len(users))
	for i := range users {
		entries = append(entries, users[i].ToResponse())
	}
	return c.JSON(fiber.Map{"users": entries})
}

type presenceEntry struct {
	UserID   uint   `json:"user_id"`
	State    string `json:"state"`
	LastSeen string `json:"last_seen"`
}

// OnlineUsers lists users currently online or inside the away window.
func (h *UserHandler) OnlineUsers(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	rows, err := h.presenceService.OnlineUsers()
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	now := time.Now().UTC()
	entries := make([]presenceEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, presenceEntry{
			UserID:   rows[i].UserID,
			State:    rows[i].PresenceState(now),
			LastSeen: models.FormatTimestamp(rows[i].LastSeen),
		})
	}
	return c.JSON(fiber.Map{"users": entries})
}

// Status returns one user's derived presence state.
func (h *UserHandler) Status(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	targetID, err := c.ParamsInt("id")
	if err != nil || targetID <= 0 {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}
	state, err := h.presenceService.Status(uint(targetID))
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"user_id": uint(targetID), "status": state})
}

// UnreadCounts returns the requester's combined unread snapshot, cache-first.
func (h *UserHandler) UnreadCounts(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	counts, err := h.unreadService.CachedCounts(userID)
	if err != nil {
		return httpx.FromServiceError(c, err)
	}
	return c.JSON(fiber.Map{"counts": counts})
}
