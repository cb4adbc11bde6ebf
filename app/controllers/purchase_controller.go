package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/PromptBay/promptbay/app/repository"
	"github.com/PromptBay/promptbay/internal/pkg/usercontext"
)

// HandleMyPurchases lists the caller's ledger entries with listings
// preloaded, the "my library" view. GET /api/purchases (bearer auth).
func HandleMyPurchases(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	purchases, err := repository.GetGlobalFactory().GetPurchaseRepository().GetByUser(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load purchases")
	}
	return c.JSON(fiber.Map{"ok": true, "purchases": purchases})
}
