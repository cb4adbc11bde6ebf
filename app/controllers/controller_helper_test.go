package controllers

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PromptBay/promptbay/app/models"
)

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var offset, limit int
	app.Get("/x", func(c *fiber.Ctx) error {
		offset, limit = parsePagination(c, 20, 100)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		url        string
		wantOffset int
		wantLimit  int
	}{
		{url: "/x", wantOffset: 0, wantLimit: 20},
		{url: "/x?page=3&limit=10", wantOffset: 20, wantLimit: 10},
		{url: "/x?page=0&limit=-5", wantOffset: 0, wantLimit: 20},
		{url: "/x?limit=9999", wantOffset: 0, wantLimit: 100},
		{url: "/x?page=abc&limit=xyz", wantOffset: 0, wantLimit: 20},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.url, nil))
		require.NoError(t, err, tt.url)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, tt.wantOffset, offset, tt.url)
		assert.Equal(t, tt.wantLimit, limit, tt.url)
	}
}

func TestJSONError(t *testing.T) {
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		return jsonError(c, fiber.StatusPaymentRequired, "purchase_required", "purchase required")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"purchase_required","message":"purchase required"}`, string(body))
}

func TestBuildCommentTree(t *testing.T) {
	parent := uint(1)
	comments := []models.Comment{
		{ID: 1, Content: "root"},
		{ID: 2, Content: "reply", ParentID: &parent},
		{ID: 3, Content: "another root"},
	}

	tree := buildCommentTree(comments)
	require.Len(t, tree, 2)
	assert.Equal(t, uint(1), tree[0].ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, uint(2), tree[0].Replies[0].ID)
	assert.Empty(t, tree[1].Replies)
}

func TestBuildCommentTree_OrphanedReplySurfaces(t *testing.T) {
	missing := uint(99)
	comments := []models.Comment{
		{ID: 2, Content: "reply to deleted parent", ParentID: &missing},
	}

	tree := buildCommentTree(comments)
	require.Len(t, tree, 1)
	assert.Equal(t, uint(2), tree[0].ID)
}
