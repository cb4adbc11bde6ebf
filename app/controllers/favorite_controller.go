package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/PromptBay/promptbay/app/models"
	"github.com/PromptBay/promptbay/app/repository"
	"github.com/PromptBay/promptbay/internal/pkg/usercontext"
)

// HandleAddFavorite bookmarks a listing. Adding twice is a no-op, same
// natural-key pattern as the purchase ledger.
// POST /api/prompts/:id/favorite (bearer auth).
func HandleAddFavorite(c *fiber.Ctx) error {
	promptID, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid prompt id")
	}

	if _, err := repository.GetGlobalFactory().GetPromptRepository().GetByID(promptID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "prompt not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompt")
	}

	userCtx := usercontext.GetUserContext(c)
	favorite := &models.Favorite{UserID: userCtx.UserID, PromptID: promptID}
	if err := repository.GetGlobalFactory().GetFavoriteRepository().Add(favorite); err != nil {
		log.Printf("favorite add failed for user %d prompt %d: %v", userCtx.UserID, promptID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not save favorite")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleRemoveFavorite removes a bookmark. Removing a non-existent
// bookmark still answers success. DELETE /api/prompts/:id/favorite.
func HandleRemoveFavorite(c *fiber.Ctx) error {
	promptID, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid prompt id")
	}

	userCtx := usercontext.GetUserContext(c)
	if err := repository.GetGlobalFactory().GetFavoriteRepository().Remove(userCtx.UserID, promptID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not remove favorite")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleMyFavorites lists the caller's bookmarks with listings
// preloaded. GET /api/favorites (bearer auth).
func HandleMyFavorites(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	favorites, err := repository.GetGlobalFactory().GetFavoriteRepository().GetByUser(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load favorites")
	}
	return c.JSON(fiber.Map{"ok": true, "favorites": favorites})
}
