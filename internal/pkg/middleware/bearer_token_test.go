package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenFromHeader(t *testing.T, header string) string {
	t.Helper()
	app := fiber.New()
	var got string
	app.Get("/x", func(c *fiber.Ctx) error {
		got = extractBearerToken(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	_, err := app.Test(req)
	require.NoError(t, err)
	return got
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "pb_abc123", tokenFromHeader(t, "Bearer pb_abc123"))
	assert.Equal(t, "pb_abc123", tokenFromHeader(t, "bearer pb_abc123"))
	assert.Equal(t, "pb_abc123", tokenFromHeader(t, "  Bearer   pb_abc123  "))
	assert.Equal(t, "", tokenFromHeader(t, ""))
	assert.Equal(t, "", tokenFromHeader(t, "Basic dXNlcjpwYXNz"))
	assert.Equal(t, "", tokenFromHeader(t, "pb_abc123"))
}
