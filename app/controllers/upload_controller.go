package controllers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/PromptBay/promptbay/internal/pkg/storage"
	"github.com/PromptBay/promptbay/internal/pkg/usercontext"
)

type presignRequest struct {
	Filename string `json:"filename"`
}

// HandlePresignUpload issues a presigned PUT URL so result media is
// uploaded directly to object storage. POST /api/uploads/presign
// (bearer auth).
func HandlePresignUpload(c *fiber.Ctx) error {
	var req presignRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}
	req.Filename = strings.TrimSpace(req.Filename)
	if req.Filename == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "filename is required")
	}

	cfg, err := storage.LoadConfig()
	if err != nil {
		log.Printf("media storage not configured: %v", err)
		return jsonError(c, fiber.StatusServiceUnavailable, "storage_unavailable", "media uploads are not available")
	}
	store, err := storage.NewMediaStore(cfg)
	if err != nil {
		log.Printf("media store init failed: %v", err)
		return jsonError(c, fiber.StatusServiceUnavailable, "storage_unavailable", "media uploads are not available")
	}

	userCtx := usercontext.GetUserContext(c)
	upload, err := store.PresignUpload(c.Context(), userCtx.UserID, req.Filename)
	if err != nil {
		if strings.HasPrefix(err.Error(), "unsupported media extension") {
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
		}
		log.Printf("presign failed for user %d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not presign upload")
	}

	return c.JSON(fiber.Map{"ok": true, "upload": upload})
}
