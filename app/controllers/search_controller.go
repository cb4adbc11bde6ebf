package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PromptBay/promptbay/app/models"
	"github.com/PromptBay/promptbay/app/repository"
	"github.com/PromptBay/promptbay/internal/pkg/cache"
)

// HandleSearchPrompts searches approved listings by title and
// description. GET /api/search?q=...
func HandleSearchPrompts(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "q is required")
	}

	offset, limit := parsePagination(c, 20, 100)
	prompts, err := repository.GetGlobalFactory().GetPromptRepository().Search(query, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "search failed")
	}
	return c.JSON(fiber.Map{"ok": true, "prompts": prompts})
}

// HandleTrendingPrompts returns the most viewed recent listings,
// optionally filtered by content type. Results are cached briefly in
// Redis; the ranking tolerates staleness, entitlement reads never use
// this path. GET /api/trending.
func HandleTrendingPrompts(c *fiber.Ctx) error {
	contentType := c.Query("contentType")
	switch contentType {
	case "", models.ContentTypePrompt, models.ContentTypeVideo:
	default:
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "unknown content type")
	}

	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days < 1 || days > 90 {
		days = 7
	}
	_, limit := parsePagination(c, 10, 50)

	cacheKey := fmt.Sprintf("trending:%s:%d:%d", contentType, days, limit)
	if cached, err := cache.Get(cacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	prompts, err := repository.GetGlobalFactory().GetPromptRepository().GetTrending(contentType, days, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load trending prompts")
	}

	body, err := json.Marshal(fiber.Map{"ok": true, "prompts": prompts})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load trending prompts")
	}
	if err := cache.Set(cacheKey, string(body), time.Minute); err != nil {
		log.Printf("trending cache write failed: %v", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// HandleFeaturedPrompts returns the curated featured shelf.
// GET /api/featured.
func HandleFeaturedPrompts(c *fiber.Ctx) error {
	_, limit := parsePagination(c, 10, 50)
	prompts, err := repository.GetGlobalFactory().GetPromptRepository().GetFeatured(limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load featured prompts")
	}
	return c.JSON(fiber.Map{"ok": true, "prompts": prompts})
}
