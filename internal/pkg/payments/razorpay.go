package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PromptBay/promptbay/internal/pkg/env"
)

const defaultRazorpayAPIBaseURL = "https://api.razorpay.com"

// RazorpayClient talks to the Razorpay REST API with basic auth
// (key id + key secret). KeyID is the public half handed to the
// browser checkout widget; the secret never leaves the server.
type RazorpayClient struct {
	KeyID      string
	KeySecret  string
	APIBaseURL string

	HTTPClient *http.Client
}

// RazorpayOrderRequest is the order-creation payload. Amount is in
// minor currency units (paise for INR). Notes carry the correlation
// ids the webhook reconciler reads back.
type RazorpayOrderRequest struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Receipt        string            `json:"receipt"`
	PaymentCapture int               `json:"payment_capture"`
	Notes          map[string]string `json:"notes,omitempty"`
}

// RazorpayOrder is the subset of the provider order entity this system
// consumes.
type RazorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func NewRazorpayClientFromEnv() *RazorpayClient {
	return &RazorpayClient{
		KeyID:      strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_ID", "")),
		KeySecret:  strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_SECRET", "")),
		APIBaseURL: strings.TrimRight(strings.TrimSpace(env.GetEnv("RAZORPAY_API_BASE_URL", defaultRazorpayAPIBaseURL)), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateOrder mints a provider order reference for one checkout
// attempt. A timed-out call fails closed: no order id is returned and
// nothing is recorded locally.
func (c *RazorpayClient) CreateOrder(ctx context.Context, in RazorpayOrderRequest) (*RazorpayOrder, error) {
	if strings.TrimSpace(c.KeyID) == "" || strings.TrimSpace(c.KeySecret) == "" {
		return nil, errors.New("RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET are not configured")
	}
	if in.Amount <= 0 {
		return nil, errors.New("order amount must be positive")
	}
	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = "INR"
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.KeyID, c.KeySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Keep the status only; the provider error body may echo
		// request internals and does not belong in our errors.
		return nil, fmt.Errorf("razorpay order create failed: status=%d", resp.StatusCode)
	}

	var order RazorpayOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("razorpay order response decode failed: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("razorpay order response missing order id")
	}
	return &order, nil
}

// WebhookEvent is the normalized view of one provider notification.
// EntityJSON preserves the raw payment entity for the ledger metadata
// column.
type WebhookEvent struct {
	Event      string
	PaymentID  string
	OrderID    string
	Amount     int64
	Currency   string
	Notes      map[string]string
	EntityJSON string
}

// CapturedEvents are the event types that trigger a ledger write. All
// other types are acknowledged and ignored.
var capturedEvents = map[string]bool{
	"payment.captured":   true,
	"order.paid":         true,
	"payment.authorized": true,
}

// IsCaptureEvent reports whether the event type records a settled payment.
func IsCaptureEvent(event string) bool {
	return capturedEvents[event]
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity json.RawMessage `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity json.RawMessage `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

type webhookEntity struct {
	ID         string                 `json:"id"`
	OrderID    string                 `json:"order_id"`
	Amount     int64                  `json:"amount"`
	AmountPaid int64                  `json:"amount_paid"`
	Currency   string                 `json:"currency"`
	Notes      map[string]interface{} `json:"notes"`
}

// ParseWebhookEvent decodes a raw Razorpay webhook body. The payment
// entity is preferred; order.paid events without a payment entity fall
// back to the order entity, mirroring the shapes the provider sends.
func ParseWebhookEvent(raw []byte) (*WebhookEvent, error) {
	var envlp webhookEnvelope
	if err := json.Unmarshal(raw, &envlp); err != nil {
		return nil, fmt.Errorf("webhook payload decode failed: %w", err)
	}
	if strings.TrimSpace(envlp.Event) == "" {
		return nil, errors.New("webhook payload missing event type")
	}

	entityRaw := envlp.Payload.Payment.Entity
	isOrderEntity := false
	if len(entityRaw) == 0 {
		entityRaw = envlp.Payload.Order.Entity
		isOrderEntity = true
	}

	ev := &WebhookEvent{Event: envlp.Event}
	if len(entityRaw) == 0 {
		return ev, nil
	}

	var entity webhookEntity
	if err := json.Unmarshal(entityRaw, &entity); err != nil {
		return nil, fmt.Errorf("webhook entity decode failed: %w", err)
	}

	if isOrderEntity {
		// Order entities carry their own id in the id field and have no
		// payment reference of their own.
		ev.OrderID = entity.ID
	} else {
		ev.PaymentID = entity.ID
		ev.OrderID = entity.OrderID
	}
	ev.Amount = entity.Amount
	if ev.Amount == 0 {
		ev.Amount = entity.AmountPaid
	}
	ev.Currency = entity.Currency
	ev.Notes = stringNotes(entity.Notes)
	ev.EntityJSON = string(entityRaw)
	return ev, nil
}

// NoteUint reads a numeric correlation id out of the notes map. Notes
// round-trip through the provider as strings or JSON numbers.
func (e *WebhookEvent) NoteUint(keys ...string) (uint, bool) {
	for _, key := range keys {
		v, ok := e.Notes[key]
		if !ok || v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			continue
		}
		return uint(n), true
	}
	return 0, false
}

func stringNotes(notes map[string]interface{}) map[string]string {
	if len(notes) == 0 {
		return nil
	}
	out := make(map[string]string, len(notes))
	for k, v := range notes {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatInt(int64(val), 10)
		}
	}
	return out
}
