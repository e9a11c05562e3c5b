package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/relaychat/relaychat-backend/internal/httpx"
	"github.com/relaychat/relaychat-backend/internal/metrics"
	"github.com/relaychat/relaychat-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login verifies credentials and returns a bearer token, also set as the
// rc_access cookie for browser clients. Bad credentials and inactive
// accounts get the same answer.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	result, err := h.authService.Login(input)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return httpx.BadRequest(c, "validation_error", ve.Reason)
		}
		metrics.LoginsTotal.WithLabelValues("denied").Inc()
		return httpx.Unauthorized(c, "invalid_credentials", "Invalid username or password")
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	c.Cookie(&fiber.Cookie{
		Name:     "rc_access",
		Value:    result.Token,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(result)
}

// Logout records the logout time and clears the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	if err := h.authService.Logout(userID); err != nil {
		return httpx.FromServiceError(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     "rc_access",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{"success": true})
}
