package controllers

import (
	"encoding/json"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/PromptBay/promptbay/app/repository"
)

// HandlePopularTags returns the most used tags across approved
// listings. GET /api/tags/popular.
func HandlePopularTags(c *fiber.Ctx) error {
	rows, err := repository.GetGlobalFactory().GetPromptRepository().ListApprovedTags()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load tags")
	}
	return c.JSON(fiber.Map{"ok": true, "tags": popularTags(rows, 20)})
}

// popularTags counts tag occurrences across serialized tag lists and
// returns the top n by frequency, ties broken alphabetically. Rows that
// fail to decode are skipped.
func popularTags(rows []string, n int) []string {
	counts := make(map[string]int)
	for _, row := range rows {
		var tags []string
		if err := json.Unmarshal([]byte(row), &tags); err != nil {
			continue
		}
		for _, tag := range tags {
			counts[tag]++
		}
	}

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}
