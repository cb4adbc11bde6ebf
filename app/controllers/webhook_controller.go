package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/PromptBay/promptbay/internal/pkg/database"
	"github.com/PromptBay/promptbay/internal/pkg/env"
	"github.com/PromptBay/promptbay/internal/pkg/payments"
)

// HandleRazorpayWebhook is the asynchronous reconciliation path.
// POST /api/payment/webhook. The signature covers the raw request body,
// so this handler must read it before any parsing touches it.
func HandleRazorpayWebhook(c *fiber.Ctx) error {
	rawBody := c.Body()
	signature := c.Get("X-Razorpay-Signature")
	secret := env.GetEnv("RAZORPAY_WEBHOOK_SECRET", "")

	if !payments.VerifyWebhookSignature(rawBody, signature, secret) {
		log.Printf("SECURITY: webhook signature mismatch from %s", c.IP())
		return jsonError(c, fiber.StatusBadRequest, "invalid_signature", "invalid webhook signature")
	}

	svc := payments.NewServiceFromDB(database.GetDB())
	outcome, err := svc.ProcessWebhook(c.Context(), rawBody, c.Get("X-Razorpay-Event-Id"))
	if err != nil {
		if outcome == nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "unparseable webhook payload")
		}
		// Ledger write failed. A non-2xx status makes the provider
		// retry the delivery; the event-id dedup absorbs the replays.
		log.Printf("webhook processing failed for event %s: %v", outcome.Event, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "webhook processing failed")
	}

	if outcome.Uncorrelated {
		log.Printf("webhook event %s has no user/prompt correlation, acknowledged without ledger write", outcome.Event)
	}

	return c.JSON(fiber.Map{"ok": true})
}
