package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/PromptBay/promptbay/app/models"
	"github.com/PromptBay/promptbay/app/repository"
	"github.com/PromptBay/promptbay/internal/pkg/usercontext"
)

// HandleAdminListPrompts returns listings in every status for the
// moderation queue. GET /api/admin/prompts (admin).
func HandleAdminListPrompts(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 50, 200)
	promptRepo := repository.GetGlobalFactory().GetPromptRepository()

	prompts, err := promptRepo.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompts")
	}
	total, err := promptRepo.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompts")
	}

	return c.JSON(fiber.Map{"ok": true, "prompts": prompts, "total": total})
}

type adminPromptPatch struct {
	Status     *string `json:"status"`
	IsFeatured *bool   `json:"is_featured"`
}

// HandleAdminUpdatePrompt moderates a listing: approve/reject and the
// featured flag. PATCH /api/admin/prompts/:id (admin).
func HandleAdminUpdatePrompt(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid prompt id")
	}

	var patch adminPromptPatch
	if err := c.BodyParser(&patch); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}
	if patch.Status == nil && patch.IsFeatured == nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "nothing to change")
	}

	promptRepo := repository.GetGlobalFactory().GetPromptRepository()
	prompt, err := promptRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "prompt not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompt")
	}

	if patch.Status != nil {
		switch *patch.Status {
		case models.PromptStatusApproved, models.PromptStatusRejected, models.PromptStatusPending:
		default:
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "unknown status")
		}
		if err := promptRepo.UpdateStatus(prompt.ID, *patch.Status); err != nil {
			log.Printf("status update failed for prompt %d: %v", prompt.ID, err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not update prompt")
		}
		prompt.Status = *patch.Status
	}
	if patch.IsFeatured != nil {
		// Only approved listings can be featured.
		if *patch.IsFeatured && !prompt.IsApproved() {
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "only approved listings can be featured")
		}
		if err := promptRepo.SetFeatured(prompt.ID, *patch.IsFeatured); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not update prompt")
		}
		prompt.IsFeatured = *patch.IsFeatured
	}

	return c.JSON(fiber.Map{"ok": true, "prompt": prompt})
}

// HandleAdminListPurchases returns the purchase ledger with buyer and
// listing preloaded for reconciliation review.
// GET /api/admin/purchases (admin).
func HandleAdminListPurchases(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 50, 200)
	purchaseRepo := repository.GetGlobalFactory().GetPurchaseRepository()

	purchases, err := purchaseRepo.ListWithRelations(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load purchases")
	}
	total, err := purchaseRepo.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load purchases")
	}

	return c.JSON(fiber.Map{"ok": true, "purchases": purchases, "total": total})
}

// HandleAdminListReports returns abuse reports filtered by status and
// reason query params. GET /api/admin/reports (admin).
func HandleAdminListReports(c *fiber.Ctx) error {
	status := c.Query("status")
	reason := c.Query("reason")

	reports, err := repository.GetGlobalFactory().GetReportRepository().List(status, reason)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load reports")
	}
	return c.JSON(fiber.Map{"ok": true, "reports": reports})
}

type adminReportPatch struct {
	Status string `json:"status"`
}

// HandleAdminResolveReport resolves or dismisses an abuse report,
// stamping the acting moderator. PATCH /api/admin/reports/:id (admin).
func HandleAdminResolveReport(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid report id")
	}

	var patch adminReportPatch
	if err := c.BodyParser(&patch); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}
	if patch.Status != models.ReportStatusResolved && patch.Status != models.ReportStatusDismissed {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "status must be resolved or dismissed")
	}

	reportRepo := repository.GetGlobalFactory().GetReportRepository()
	report, err := reportRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "report not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load report")
	}

	userCtx := usercontext.GetUserContext(c)
	now := time.Now()
	report.Status = patch.Status
	report.ResolvedByID = &userCtx.UserID
	report.ResolvedAt = &now

	if err := reportRepo.Update(report); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not update report")
	}
	return c.JSON(fiber.Map{"ok": true, "report": report})
}
