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
	"github.com/PromptBay/promptbay/internal/pkg/utils"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account. POST /api/auth/register.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user, err := models.CreateUser(strings.TrimSpace(req.Name), req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	if existing, err := userRepo.GetByEmail(req.Email); err == nil && existing != nil {
		return jsonError(c, fiber.StatusConflict, "email_taken", "an account with this email already exists")
	}

	if err := userRepo.Create(user); err != nil {
		log.Printf("user create failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create account")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates by email and password and issues a fresh
// bearer token. The token plaintext appears only in this response; the
// database keeps its hash. POST /api/auth/login.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "login failed")
	}
	if !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "account_inactive", "account is not active")
	}

	token, err := user.IssueAccessToken()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "login failed")
	}
	if err := userRepo.Update(user); err != nil {
		log.Printf("token persist failed for user %d: %v", user.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "login failed")
	}

	return c.JSON(fiber.Map{
		"ok":          true,
		"accessToken": token,
		"user":        user,
	})
}

type profileUpdateRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

// HandleUpdateProfile edits the caller's display fields. Omitted fields
// keep their stored values. PUT /api/auth/me (bearer auth).
func HandleUpdateProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req profileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "user not found")
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if err := user.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := userRepo.Update(user); err != nil {
		log.Printf("profile update failed for user %d: %v", user.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not update profile")
	}

	return c.JSON(fiber.Map{"ok": true, "user": user})
}

// HandleProfile returns the authenticated user. GET /api/auth/me.
func HandleProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "user not found")
	}
	if user.AvatarURL == "" {
		user.AvatarURL = utils.GetGravatarURL(user.Email, 200)
	}
	return c.JSON(fiber.Map{"ok": true, "user": user})
}
