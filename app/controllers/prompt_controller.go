package controllers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PromptBay/promptbay/app/models"
	"github.com/PromptBay/promptbay/app/repository"
	"github.com/PromptBay/promptbay/internal/pkg/database"
	"github.com/PromptBay/promptbay/internal/pkg/entitlements"
	"github.com/PromptBay/promptbay/internal/pkg/metrics/counter"
	"github.com/PromptBay/promptbay/internal/pkg/payments"
	"github.com/PromptBay/promptbay/internal/pkg/slug"
	"github.com/PromptBay/promptbay/internal/pkg/usercontext"
)

type promptRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Model       string             `json:"model"`
	PromptText  string             `json:"prompt_text"`
	ResultURLs  []models.ResultURL `json:"result_urls"`
	ContentType string             `json:"content_type"`
	IsPremium   bool               `json:"is_premium"`
	Price       int64              `json:"price"`
	Currency    string             `json:"currency"`
	CategoryIDs []uint             `json:"category_ids"`
	Tags        []string           `json:"tags"`
}

// HandleCreatePrompt submits a listing for moderation. New listings
// always start pending regardless of the submitter's role.
// POST /api/prompts (bearer auth).
func HandleCreatePrompt(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req promptRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}
	if req.ContentType == "" {
		req.ContentType = models.ContentTypePrompt
	}
	if len(req.CategoryIDs) > 3 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "at most 3 categories allowed")
	}
	if req.IsPremium && req.Price <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "premium listings require a positive price")
	}

	promptSlug, err := slug.FromTitle(req.Title)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create listing")
	}

	prompt := &models.Prompt{
		UUID:        uuid.New().String(),
		Slug:        promptSlug,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Model:       req.Model,
		PromptText:  req.PromptText,
		ContentType: req.ContentType,
		IsPremium:   req.IsPremium,
		Price:       req.Price,
		Currency:    normalizeCurrency(req.Currency),
		CreatedBy:   userCtx.UserID,
		Status:      models.PromptStatusPending,
	}
	if err := prompt.SetResultURLs(req.ResultURLs); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}
	if err := prompt.SetTags(req.Tags); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}
	if err := prompt.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	promptRepo := repository.GetGlobalFactory().GetPromptRepository()
	if err := promptRepo.Create(prompt); err != nil {
		log.Printf("prompt create failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create listing")
	}
	if len(req.CategoryIDs) > 0 {
		if err := promptRepo.ReplaceCategories(prompt.ID, req.CategoryIDs); err != nil {
			log.Printf("category link failed for prompt %d: %v", prompt.ID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "prompt": prompt})
}

// HandleGetPromptBySlug returns the public listing view. The gated
// prompt text never appears here; unlock is the only release path.
// Viewing an approved listing increments its view counter in Redis.
// GET /api/prompts/:slug.
func HandleGetPromptBySlug(c *fiber.Ctx) error {
	promptSlug := c.Params("slug")
	if promptSlug == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "slug is required")
	}

	prompt, err := repository.GetGlobalFactory().GetPromptRepository().GetBySlug(promptSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "prompt not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompt")
	}

	userCtx := usercontext.GetUserContext(c)
	if !prompt.IsApproved() && !userCtx.IsAdmin && prompt.CreatedBy != userCtx.UserID {
		// Pending and rejected listings read as absent to outsiders.
		return jsonError(c, fiber.StatusNotFound, "not_found", "prompt not found")
	}

	if prompt.IsApproved() {
		if err := counter.AddPromptView(prompt.ID); err != nil {
			log.Printf("view counter increment failed for prompt %d: %v", prompt.ID, err)
		}
	}

	return c.JSON(fiber.Map{"ok": true, "prompt": prompt})
}

// HandleUpdatePrompt edits a listing. Only the creator or an admin may
// edit; content edits by the creator send it back to moderation.
// PUT /api/prompts/:id (bearer auth).
func HandleUpdatePrompt(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid prompt id")
	}

	promptRepo := repository.GetGlobalFactory().GetPromptRepository()
	prompt, err := promptRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "prompt not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompt")
	}

	userCtx := usercontext.GetUserContext(c)
	if prompt.CreatedBy != userCtx.UserID && !userCtx.IsAdmin {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "not your listing")
	}

	var req promptRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}
	if len(req.CategoryIDs) > 3 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "at most 3 categories allowed")
	}
	if req.IsPremium && req.Price <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "premium listings require a positive price")
	}

	prompt.Title = strings.TrimSpace(req.Title)
	prompt.Description = req.Description
	prompt.Model = req.Model
	prompt.PromptText = req.PromptText
	if req.ContentType != "" {
		prompt.ContentType = req.ContentType
	}
	prompt.IsPremium = req.IsPremium
	prompt.Price = req.Price
	prompt.Currency = normalizeCurrency(req.Currency)
	if err := prompt.SetResultURLs(req.ResultURLs); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}
	if err := prompt.SetTags(req.Tags); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}
	if !userCtx.IsAdmin {
		prompt.Status = models.PromptStatusPending
	}
	if err := prompt.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := promptRepo.Update(prompt); err != nil {
		log.Printf("prompt update failed for %d: %v", prompt.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not update listing")
	}
	if req.CategoryIDs != nil {
		if err := promptRepo.ReplaceCategories(prompt.ID, req.CategoryIDs); err != nil {
			log.Printf("category link failed for prompt %d: %v", prompt.ID, err)
		}
	}

	return c.JSON(fiber.Map{"ok": true, "prompt": prompt})
}

// HandleDeletePrompt soft-deletes a listing. Purchases referencing it
// stay in the ledger untouched. DELETE /api/prompts/:id (bearer auth).
func HandleDeletePrompt(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid prompt id")
	}

	promptRepo := repository.GetGlobalFactory().GetPromptRepository()
	prompt, err := promptRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "prompt not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompt")
	}

	userCtx := usercontext.GetUserContext(c)
	if prompt.CreatedBy != userCtx.UserID && !userCtx.IsAdmin {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "not your listing")
	}

	if err := promptRepo.Delete(prompt.ID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not delete listing")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleListPrompts returns approved listings, newest first.
// GET /api/prompts.
func HandleListPrompts(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 20, 100)
	prompts, err := repository.GetGlobalFactory().GetPromptRepository().GetApproved(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompts")
	}
	return c.JSON(fiber.Map{"ok": true, "prompts": prompts})
}

// HandleMyPrompts returns the caller's own listings in every status.
// GET /api/prompts/mine (bearer auth).
func HandleMyPrompts(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := parsePagination(c, 20, 100)
	prompts, err := repository.GetGlobalFactory().GetPromptRepository().GetByCreator(userCtx.UserID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompts")
	}
	return c.JSON(fiber.Map{"ok": true, "prompts": prompts})
}

// HandlePromptsByCategory returns approved listings linked to a
// taxonomy node. GET /api/categories/:id/prompts.
func HandlePromptsByCategory(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid category id")
	}
	offset, limit := parsePagination(c, 20, 100)
	prompts, err := repository.GetGlobalFactory().GetPromptRepository().GetByCategory(id, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompts")
	}
	return c.JSON(fiber.Map{"ok": true, "prompts": prompts})
}

// HandleUnlockPrompt releases the gated content after an entitlement
// check against the purchase ledger. Free listings unlock for anyone.
// Premium listings answer 401 to anonymous callers and 402 to
// authenticated callers without a completed purchase, both with a
// locked marker so clients can route to checkout.
// GET /api/prompts/:slug/unlock (optional bearer auth).
func HandleUnlockPrompt(c *fiber.Ctx) error {
	promptSlug := c.Params("slug")
	if promptSlug == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "slug is required")
	}

	prompt, err := repository.GetGlobalFactory().GetPromptRepository().GetBySlug(promptSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "prompt not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompt")
	}

	userCtx := usercontext.GetUserContext(c)
	if prompt.IsPremium && !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "locked": true, "message": "login required"})
	}

	svc := payments.NewServiceFromDB(database.GetDB())
	allowed, err := entitlements.CanAccessPrompt(c.Context(), svc, userCtx.UserID, prompt)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "entitlement check failed")
	}
	if !allowed {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"ok": false, "locked": true, "message": "purchase required"})
	}

	return c.JSON(fiber.Map{"ok": true, "prompt_text": prompt.PromptText})
}

func normalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return "INR"
	}
	return currency
}
