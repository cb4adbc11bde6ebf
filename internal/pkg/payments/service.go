package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PromptBay/promptbay/app/models"
	"gorm.io/gorm"
)

// ErrNotPurchasable is returned when an order is requested for a
// listing that is free, unapproved, or unpriced. The provider is never
// called in that case.
var ErrNotPurchasable = errors.New("listing is not purchasable")

// Service owns the payment intent, ledger and reconciliation logic.
// Handlers on both confirmation paths delegate here so the natural-key
// invariant has a single enforcement point.
type Service struct {
	repo   Repository
	client *RazorpayClient
}

// NewService creates a payments service from injected dependencies.
func NewService(repo Repository, client *RazorpayClient) *Service {
	return &Service{repo: repo, client: client}
}

// NewServiceFromDB creates a payments service from a GORM DB handle
// with the provider client configured from the environment.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), NewRazorpayClientFromEnv())
}

// CreateOrderIntent asks the provider to mint an order for one checkout
// attempt. The amount is re-derived from the listing price; a
// client-proposed amount is never trusted. Nothing is persisted
// locally: abandonment simply never reaches the ledger and the webhook
// path remains the safety net.
func (s *Service) CreateOrderIntent(ctx context.Context, userID uint, prompt *models.Prompt) (*OrderIntent, error) {
	if userID == 0 || prompt == nil {
		return nil, errors.New("user and prompt are required")
	}
	if !prompt.Purchasable() {
		return nil, ErrNotPurchasable
	}

	currency := strings.TrimSpace(prompt.Currency)
	if currency == "" {
		currency = "INR"
	}

	order, err := s.client.CreateOrder(ctx, RazorpayOrderRequest{
		Amount:         prompt.Price,
		Currency:       currency,
		Receipt:        fmt.Sprintf("prompt_%d_%d_%d", prompt.ID, userID, time.Now().UnixNano()),
		PaymentCapture: 1,
		Notes: map[string]string{
			"prompt_id": fmt.Sprintf("%d", prompt.ID),
			"user_id":   fmt.Sprintf("%d", userID),
		},
	})
	if err != nil {
		return nil, err
	}

	return &OrderIntent{
		OrderID:  order.ID,
		KeyID:    s.client.KeyID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}, nil
}

// RecordCompletedPurchase performs the idempotent ledger upsert keyed
// by (buyer, prompt). Whichever path lands second overwrites provider
// references with equivalent data; a completed row is never demoted.
func (s *Service) RecordCompletedPurchase(ctx context.Context, in CompletedPurchaseInput) (*models.Purchase, error) {
	_ = ctx
	if in.UserID == 0 || in.PromptID == 0 {
		return nil, errors.New("user_id and prompt_id are required")
	}
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		provider = models.PaymentProviderRazorpay
	}
	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = "INR"
	}

	purchase := &models.Purchase{
		UserID:            in.UserID,
		PromptID:          in.PromptID,
		Provider:          provider,
		ProviderOrderID:   strings.TrimSpace(in.ProviderOrderID),
		ProviderPaymentID: strings.TrimSpace(in.ProviderPaymentID),
		Amount:            in.Amount,
		Currency:          currency,
		Status:            models.PurchaseStatusCompleted,
		Metadata:          in.MetadataJSON,
	}
	if err := s.repo.UpsertCompletedPurchase(purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

// HasCompletedPurchase is the ledger read used by the entitlement check.
func (s *Service) HasCompletedPurchase(ctx context.Context, userID, promptID uint) (bool, error) {
	_ = ctx
	if userID == 0 || promptID == 0 {
		return false, nil
	}
	return s.repo.HasCompletedPurchase(userID, promptID)
}

// RecordWebhookEvent persists webhook payloads idempotently. Providers
// redeliver events; the unique (provider, event id) key keeps one audit
// row per delivery identity. Events without a provider id are keyed by
// a payload hash.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// WebhookOutcome reports what ProcessWebhook did with a verified
// delivery.
type WebhookOutcome struct {
	Event        string
	LedgerWrite  bool
	Uncorrelated bool
}

// ProcessWebhook applies a signature-verified provider notification.
// Capture-style events with correlatable notes upsert the ledger;
// everything else is a deliberate no-op that must still be acknowledged
// with a success response so the provider stops retrying.
func (s *Service) ProcessWebhook(ctx context.Context, rawBody []byte, providerEventID string) (*WebhookOutcome, error) {
	ev, err := ParseWebhookEvent(rawBody)
	if err != nil {
		return nil, err
	}

	_, stored, err := s.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        models.PaymentProviderRazorpay,
		ProviderEventID: providerEventID,
		EventType:       ev.Event,
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		// The audit insert failing must not block reconciliation.
		stored = nil
	}

	outcome := &WebhookOutcome{Event: ev.Event}
	if !IsCaptureEvent(ev.Event) {
		s.markProcessed(stored, nil)
		return outcome, nil
	}

	userID, hasUser := ev.NoteUint("user_id", "userId")
	promptID, hasPrompt := ev.NoteUint("prompt_id", "promptId")
	if !hasUser || !hasPrompt {
		// Unlinkable capture: the synchronous path owns it, or it needs
		// manual follow-up via the audit table.
		outcome.Uncorrelated = true
		s.markProcessed(stored, nil)
		return outcome, nil
	}

	_, err = s.RecordCompletedPurchase(ctx, CompletedPurchaseInput{
		UserID:            userID,
		PromptID:          promptID,
		Provider:          models.PaymentProviderRazorpay,
		ProviderOrderID:   ev.OrderID,
		ProviderPaymentID: ev.PaymentID,
		Amount:            ev.Amount,
		Currency:          ev.Currency,
		MetadataJSON:      ev.EntityJSON,
	})
	if err != nil {
		s.markProcessed(stored, err)
		return outcome, err
	}

	outcome.LedgerWrite = true
	s.markProcessed(stored, nil)
	return outcome, nil
}

func (s *Service) markProcessed(event *models.PaymentWebhookEvent, processingErr error) {
	if event == nil || event.ID == 0 {
		return
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	_ = s.repo.MarkWebhookProcessed(event.ID, errMsg)
}
