package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/PromptBay/promptbay/app/models"
	"github.com/PromptBay/promptbay/app/repository"
	"github.com/PromptBay/promptbay/internal/pkg/database"
	"github.com/PromptBay/promptbay/internal/pkg/payments"
	"github.com/PromptBay/promptbay/internal/pkg/usercontext"
)

type reviewRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

// HandleUpsertReview creates or replaces the caller's review for a
// listing. One review per buyer per listing; premium listings accept
// reviews only from buyers with a completed purchase.
// POST /api/prompts/:id/reviews (bearer auth).
func HandleUpsertReview(c *fiber.Ctx) error {
	promptID, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid prompt id")
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}

	prompt, err := repository.GetGlobalFactory().GetPromptRepository().GetByID(promptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "prompt not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompt")
	}

	userCtx := usercontext.GetUserContext(c)
	if prompt.IsPremium {
		svc := payments.NewServiceFromDB(database.GetDB())
		purchased, err := svc.HasCompletedPurchase(c.Context(), userCtx.UserID, prompt.ID)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not verify purchase")
		}
		if !purchased {
			return jsonError(c, fiber.StatusForbidden, "purchase_required", "only buyers can review premium listings")
		}
	}

	review := &models.Review{
		PromptID:   prompt.ID,
		UserID:     userCtx.UserID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	}
	if err := review.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := repository.GetGlobalFactory().GetReviewRepository().Upsert(review); err != nil {
		log.Printf("review upsert failed for prompt %d user %d: %v", prompt.ID, userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not save review")
	}
	return c.JSON(fiber.Map{"ok": true, "review": review})
}

// HandleGetReviews returns recent reviews plus the aggregate rating.
// GET /api/prompts/:id/reviews.
func HandleGetReviews(c *fiber.Ctx) error {
	promptID, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid prompt id")
	}
	_, limit := parsePagination(c, 10, 50)

	reviewRepo := repository.GetGlobalFactory().GetReviewRepository()
	reviews, err := reviewRepo.GetRecentByPrompt(promptID, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load reviews")
	}
	stats, err := reviewRepo.GetStats(promptID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load reviews")
	}

	return c.JSON(fiber.Map{"ok": true, "reviews": reviews, "stats": stats})
}
