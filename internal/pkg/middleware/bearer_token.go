package middleware

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/PromptBay/promptbay/app/models"
	"github.com/PromptBay/promptbay/app/repository"
	"github.com/PromptBay/promptbay/internal/pkg/database"
	"github.com/PromptBay/promptbay/internal/pkg/usercontext"
)

// BearerAuthMiddleware authenticates requests carrying a user bearer
// token. The token is never stored server-side; lookup is by SHA-256
// hash.
func BearerAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing bearer token"})
		}

		user, err := resolveTokenUser(token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid bearer token"})
			}
			log.Printf("bearer token lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token verification failed"})
		}

		if user.Status != models.STATUS_ACTIVE {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "User inactive"})
		}

		setUserContext(c, user)
		return c.Next()
	}
}

// OptionalBearerAuth populates the user context when a valid token is
// present but lets anonymous requests through. Used by read endpoints
// whose response depends on entitlement, like the unlock route.
func OptionalBearerAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Next()
		}

		user, err := resolveTokenUser(token)
		if err != nil || user.Status != models.STATUS_ACTIVE {
			return c.Next()
		}

		setUserContext(c, user)
		return c.Next()
	}
}

func resolveTokenUser(token string) (*models.User, error) {
	db := database.GetDB()
	if db == nil {
		return nil, errors.New("database unavailable")
	}

	hash := models.HashAccessToken(token)
	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByAccessTokenHash(hash)
	if err != nil {
		return nil, err
	}

	// Refresh last-seen timestamp best-effort.
	now := time.Now()
	if err := db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"last_login_at": now}).Error; err != nil {
		log.Printf("failed to update last login for user %d: %v", user.ID, err)
	}

	return user, nil
}

func setUserContext(c *fiber.Ctx, user *models.User) {
	userCtx := usercontext.UserContext{
		UserID:     user.ID,
		Username:   user.Name,
		Email:      user.Email,
		IsLoggedIn: true,
		IsAdmin:    user.IsAdmin(),
	}
	c.Locals("USER_CONTEXT", userCtx)
	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUserID, user.ID)
	c.Locals(usercontext.KeyUsername, user.Name)
	c.Locals(usercontext.KeyIsAdmin, user.IsAdmin())
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
