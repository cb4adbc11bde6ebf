package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/PromptBay/promptbay/app/models"
	"github.com/PromptBay/promptbay/app/repository"
	"github.com/PromptBay/promptbay/internal/pkg/database"
	"github.com/PromptBay/promptbay/internal/pkg/env"
	"github.com/PromptBay/promptbay/internal/pkg/mail"
	"github.com/PromptBay/promptbay/internal/pkg/payments"
	"github.com/PromptBay/promptbay/internal/pkg/usercontext"
)

type createOrderRequest struct {
	PromptID uint `json:"promptId"`
	// Amount is accepted for checkout-widget compatibility but ignored;
	// the server re-derives the authoritative amount from the listing.
	Amount int64 `json:"amount"`
}

// HandleCreatePaymentOrder asks the provider to mint an order for a
// premium listing. POST /api/payment/create-order (bearer auth).
func HandleCreatePaymentOrder(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "login required")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil || req.PromptID == 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "promptId is required")
	}

	prompt, err := repository.GetGlobalFactory().GetPromptRepository().GetByID(req.PromptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "prompt not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load prompt")
	}

	svc := payments.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	intent, err := svc.CreateOrderIntent(ctx, userCtx.UserID, prompt)
	if err != nil {
		if errors.Is(err, payments.ErrNotPurchasable) {
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "prompt is not purchasable")
		}
		log.Printf("payment order create failed for prompt %d: %v", prompt.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "payment provider unavailable")
	}

	return c.JSON(fiber.Map{
		"ok":       true,
		"orderId":  intent.OrderID,
		"keyId":    intent.KeyID,
		"amount":   intent.Amount,
		"currency": intent.Currency,
	})
}

type verifyPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	UserID            uint   `json:"user_id"`
	PromptID          uint   `json:"prompt_id"`
	// Amount and Currency arrive from the checkout widget but are never
	// recorded; the ledger takes the listing's figures.
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// HandleVerifyPayment is the synchronous confirmation path. The payload
// is self-authenticating via the checkout signature, so no bearer token
// is required. POST /api/payment/verify.
func HandleVerifyPayment(c *fiber.Ctx) error {
	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed body")
	}
	if req.RazorpayPaymentID == "" || req.RazorpayOrderID == "" || req.RazorpaySignature == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "missing fields")
	}

	secret := env.GetEnv("RAZORPAY_KEY_SECRET", "")
	if !payments.VerifyCheckoutSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, secret) {
		// Treated as a potential forgery attempt, logged apart from
		// ordinary validation noise.
		log.Printf("SECURITY: checkout signature mismatch for order %s", req.RazorpayOrderID)
		return jsonError(c, fiber.StatusBadRequest, "invalid_signature", "payment verification failed")
	}

	if req.UserID == 0 || req.PromptID == 0 {
		// The webhook reconciler owns this payment via order notes.
		return c.JSON(fiber.Map{"ok": true, "warning": "missing user_id or prompt_id; webhook will handle"})
	}

	// The recorded amount comes from the listing, never the client body.
	// If the listing cannot be loaded, fail instead of trusting req.Amount;
	// the webhook path records provider-confirmed figures on retry.
	prompt, err := repository.GetGlobalFactory().GetPromptRepository().GetByID(req.PromptID)
	if err != nil {
		log.Printf("prompt lookup failed during payment verify for prompt %d: %v", req.PromptID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "payment verification failed")
	}
	amount := prompt.Price
	currency := prompt.Currency
	promptTitle := prompt.Title

	metadata, _ := json.Marshal(fiber.Map{"verified_at": time.Now().UTC().Format(time.RFC3339)})

	svc := payments.NewServiceFromDB(database.GetDB())
	if _, err := svc.RecordCompletedPurchase(c.Context(), payments.CompletedPurchaseInput{
		UserID:            req.UserID,
		PromptID:          req.PromptID,
		Provider:          models.PaymentProviderRazorpay,
		ProviderOrderID:   req.RazorpayOrderID,
		ProviderPaymentID: req.RazorpayPaymentID,
		Amount:            amount,
		Currency:          currency,
		MetadataJSON:      string(metadata),
	}); err != nil {
		log.Printf("purchase upsert failed for user %d prompt %d: %v", req.UserID, req.PromptID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "payment verification failed")
	}

	if promptTitle != "" {
		if buyer, err := repository.GetGlobalFactory().GetUserRepository().GetByID(req.UserID); err == nil {
			go mail.SendPurchaseReceipt(buyer.Email, promptTitle, amount, currency)
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}
