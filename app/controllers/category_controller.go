package controllers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/PromptBay/promptbay/app/models"
	"github.com/PromptBay/promptbay/app/repository"
	"github.com/PromptBay/promptbay/internal/pkg/slug"
)

// categoryNode is one node of the rendered taxonomy tree.
type categoryNode struct {
	models.Category
	Children []*categoryNode `json:"children"`
}

// HandleGetCategories returns the whole taxonomy as a nested tree.
// GET /api/categories.
func HandleGetCategories(c *fiber.Ctx) error {
	categories, err := repository.GetGlobalFactory().GetCategoryRepository().GetAll()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load categories")
	}

	nodes := make(map[uint]*categoryNode, len(categories))
	for i := range categories {
		categories[i].Children = nil
		nodes[categories[i].ID] = &categoryNode{Category: categories[i], Children: []*categoryNode{}}
	}

	roots := make([]*categoryNode, 0)
	for i := range categories {
		node := nodes[categories[i].ID]
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return c.JSON(fiber.Map{"ok": true, "categories": roots})
}

type categoryRequest struct {
	Name     string `json:"name"`
	ParentID *uint  `json:"parent_id"`
}

// HandleCreateCategory adds a taxonomy node. POST /api/admin/categories
// (admin).
func HandleCreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "name is required")
	}

	categoryRepo := repository.GetGlobalFactory().GetCategoryRepository()
	if req.ParentID != nil {
		if _, err := categoryRepo.GetByID(*req.ParentID); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "parent category not found")
		}
	}

	categorySlug, err := slug.FromTitle(req.Name)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create category")
	}

	category := &models.Category{
		Name:     req.Name,
		Slug:     categorySlug,
		ParentID: req.ParentID,
	}
	if err := categoryRepo.Create(category); err != nil {
		log.Printf("category create failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create category")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "category": category})
}
