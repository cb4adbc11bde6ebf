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

type commentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// commentNode is one entry of the threaded discussion tree.
type commentNode struct {
	models.Comment
	Replies []*commentNode `json:"replies"`
}

// HandleCreateComment posts a comment or a reply on a listing.
// POST /api/prompts/:id/comments (bearer auth).
func HandleCreateComment(c *fiber.Ctx) error {
	promptID, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid prompt id")
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "content is required")
	}

	commentRepo := repository.GetGlobalFactory().GetCommentRepository()

	if _, err := repository.GetGlobalFactory().GetPromptRepository().GetByID(promptID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "prompt not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompt")
	}

	if req.ParentID != nil {
		// A reply must point at a comment on the same listing.
		siblings, err := commentRepo.GetByPrompt(promptID)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load comments")
		}
		found := false
		for _, sibling := range siblings {
			if sibling.ID == *req.ParentID {
				found = true
				break
			}
		}
		if !found {
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "parent comment not found on this prompt")
		}
	}

	userCtx := usercontext.GetUserContext(c)
	comment := &models.Comment{
		UserID:   userCtx.UserID,
		PromptID: promptID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := commentRepo.Create(comment); err != nil {
		log.Printf("comment create failed for prompt %d: %v", promptID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not save comment")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "comment": comment})
}

// HandleGetComments returns the full discussion as a nested tree with
// replies hung under their parents. GET /api/prompts/:id/comments.
func HandleGetComments(c *fiber.Ctx) error {
	promptID, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid prompt id")
	}

	comments, err := repository.GetGlobalFactory().GetCommentRepository().GetByPrompt(promptID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load comments")
	}

	return c.JSON(fiber.Map{"ok": true, "comments": buildCommentTree(comments)})
}

// buildCommentTree nests replies under their parents. Replies whose
// parent is missing (soft-deleted) surface as roots rather than vanish.
func buildCommentTree(comments []models.Comment) []*commentNode {
	nodes := make(map[uint]*commentNode, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &commentNode{Comment: comments[i], Replies: []*commentNode{}}
	}

	roots := make([]*commentNode, 0, len(comments))
	for i := range comments {
		node := nodes[comments[i].ID]
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// HandleDeleteComment removes a comment. Author or admin only.
// DELETE /api/comments/:id (bearer auth).
func HandleDeleteComment(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid comment id")
	}

	userCtx := usercontext.GetUserContext(c)
	commentRepo := repository.GetGlobalFactory().GetCommentRepository()

	comment, err := commentRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "comment not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load comment")
	}
	if comment.UserID != userCtx.UserID && !userCtx.IsAdmin {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "not your comment")
	}

	if err := commentRepo.Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not delete comment")
	}
	return c.JSON(fiber.Map{"ok": true})
}
