package httpx

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/relaychat/relaychat-backend/internal/service"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func requestID(c *fiber.Ctx) string {
	if v := c.Locals("requestid"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Error(c *fiber.Ctx, status int, code string, message string) error {
	if message == "" {
		message = "Request failed"
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID(c),
	})
}

func BadRequest(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusBadRequest, code, message)
}

func Unauthorized(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusUnauthorized, code, message)
}

func Forbidden(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusForbidden, code, message)
}

func NotFound(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusNotFound, code, message)
}

func Conflict(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusConflict, code, message)
}

func Internal(c *fiber.Ctx, code string) error {
	return Error(c, fiber.StatusInternalServerError, code, "Internal server error")
}

// FromServiceError maps the service error taxonomy onto HTTP statuses.
// Persistence errors surface only a generic message.
func FromServiceError(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	var ae *service.AttachmentError
	var nfe *service.NotFoundError
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return Forbidden(c, "forbidden", "Not allowed")
	case errors.Is(err, service.ErrDuplicateGroupName):
		return Conflict(c, "duplicate_group_name", "Group name already exists")
	case errors.As(err, &ve):
		return BadRequest(c, "validation_error", ve.Reason)
	case errors.As(err, &ae):
		return BadRequest(c, "attachment_error", ae.Reason)
	case errors.As(err, &nfe):
		return NotFound(c, "not_found", nfe.Error())
	default:
		return Internal(c, "internal_error")
	}
}

func LocalUint(c *fiber.Ctx, key string) (uint, error) {
	v := c.Locals(key)
	if v == nil {
		return 0, fmt.Errorf("missing local %s", key)
	}
	u, ok := v.(uint)
	if !ok {
		return 0, fmt.Errorf("invalid local %s", key)
	}
	return u, nil
}
