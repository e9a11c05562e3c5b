package handlers

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/relaychat/relaychat-backend/internal/httpx"
	"github.com/relaychat/relaychat-backend/internal/storage"
)

type AttachmentHandler struct {
	store *storage.AttachmentStore
}

func NewAttachmentHandler(store *storage.AttachmentStore) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

// Download serves a stored attachment by its relative path. The store
// refuses anything outside uploads/images and uploads/files, so a crafted
// path can never escape the root.
func (h *AttachmentHandler) Download(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	relPath := "uploads/" + strings.TrimSpace(c.Params("*"))
	diskPath, err := h.store.DiskPath(relPath)
	if err != nil {
		return httpx.NotFound(c, "not_found", "Not found")
	}
	if _, err := os.Stat(diskPath); err != nil {
		return httpx.NotFound(c, "not_found", "Not found")
	}
	return c.SendFile(diskPath)
}
