package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PromptBay/promptbay/app/models"
	"github.com/PromptBay/promptbay/internal/pkg/usercontext"
)

func newProfileApp(userID uint) *fiber.App {
	app := fiber.New()
	app.Put("/api/auth/me", func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{UserID: userID, IsLoggedIn: true})
		return c.Next()
	}, HandleUpdateProfile)
	return app
}

func putJSON(t *testing.T, app *fiber.App, url string, payload any) (int, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestHandleUpdateProfile_PartialUpdate(t *testing.T) {
	db := setupControllerDB(t)

	user := models.User{
		Name:     "Asha",
		Email:    "asha.profile@example.com",
		Password: "stored-password-hash",
		Role:     models.ROLE_USER,
		Status:   models.STATUS_ACTIVE,
	}
	require.NoError(t, db.Create(&user).Error)

	app := newProfileApp(user.ID)
	status, body := putJSON(t, app, "/api/auth/me", map[string]any{
		"bio": "Prompt engineer and drone photographer.",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ok"])

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "Prompt engineer and drone photographer.", stored.Bio)
	assert.Equal(t, "Asha", stored.Name, "omitted fields keep their values")
}

func TestHandleUpdateProfile_RejectsInvalidName(t *testing.T) {
	db := setupControllerDB(t)

	user := models.User{
		Name:     "Ravi",
		Email:    "ravi.profile@example.com",
		Password: "stored-password-hash",
		Role:     models.ROLE_USER,
		Status:   models.STATUS_ACTIVE,
	}
	require.NoError(t, db.Create(&user).Error)

	app := newProfileApp(user.ID)
	status, body := putJSON(t, app, "/api/auth/me", map[string]any{
		"name": "x",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation_failed", body["error"])

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "Ravi", stored.Name, "rejected edits are not persisted")
}
