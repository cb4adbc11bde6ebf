package controllers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/PromptBay/promptbay/app/models"
	"github.com/PromptBay/promptbay/app/repository"
	"github.com/PromptBay/promptbay/internal/pkg/usercontext"
)

type reportRequest struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

// HandleReportPrompt files an abuse report against a listing. A user
// can hold at most one open report per listing.
// POST /api/prompts/:id/report (bearer auth).
func HandleReportPrompt(c *fiber.Ctx) error {
	promptID, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid prompt id")
	}

	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}
	req.Reason = strings.ToLower(strings.TrimSpace(req.Reason))
	if !models.IsValidReportReason(req.Reason) {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "unknown report reason")
	}

	if _, err := repository.GetGlobalFactory().GetPromptRepository().GetByID(promptID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "prompt not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompt")
	}

	userCtx := usercontext.GetUserContext(c)
	reportRepo := repository.GetGlobalFactory().GetReportRepository()

	open, err := reportRepo.HasOpenReport(promptID, userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not check existing reports")
	}
	if open {
		return jsonError(c, fiber.StatusConflict, "report_exists", "you already have an open report for this prompt")
	}

	report := &models.PromptReport{
		PromptID:   promptID,
		ReporterID: userCtx.UserID,
		Reason:     req.Reason,
		Details:    req.Details,
		Status:     models.ReportStatusOpen,
	}
	if err := reportRepo.Create(report); err != nil {
		log.Printf("report create failed for prompt %d: %v", promptID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not save report")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "report": report})
}
