package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(baseURL string) *RazorpayClient {
	return &RazorpayClient{
		KeyID:      "rzp_test_key",
		KeySecret:  "rzp_test_secret",
		APIBaseURL: baseURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCreateOrder(t *testing.T) {
	var gotReq RazorpayOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "rzp_test_secret" {
			t.Errorf("missing or wrong basic auth")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("request decode failed: %v", err)
		}
		_ = json.NewEncoder(w).Encode(RazorpayOrder{
			ID:       "order_abc",
			Amount:   gotReq.Amount,
			Currency: gotReq.Currency,
			Receipt:  gotReq.Receipt,
			Status:   "created",
		})
	}))
	defer srv.Close()

	order, err := testClient(srv.URL).CreateOrder(context.Background(), RazorpayOrderRequest{
		Amount:         49900,
		Currency:       "INR",
		Receipt:        "prompt_3_7_1",
		PaymentCapture: 1,
		Notes:          map[string]string{"prompt_id": "3", "user_id": "7"},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.ID != "order_abc" || order.Amount != 49900 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if gotReq.Notes["user_id"] != "7" || gotReq.Notes["prompt_id"] != "3" {
		t.Fatalf("correlation notes not sent: %+v", gotReq.Notes)
	}
	if gotReq.PaymentCapture != 1 {
		t.Fatalf("expected auto-capture order")
	}
}

func TestCreateOrder_ProviderErrorIsOpaque(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"description":"secret sauce rzp_test_secret"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CreateOrder(context.Background(), RazorpayOrderRequest{Amount: 100})
	if err == nil {
		t.Fatalf("expected provider error")
	}
	// The provider body must not leak into our error chain.
	if want := "razorpay order create failed: status=400"; err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	client := testClient("http://localhost:0")

	if _, err := client.CreateOrder(context.Background(), RazorpayOrderRequest{Amount: 0}); err == nil {
		t.Fatalf("expected zero amount to fail before any request")
	}

	unconfigured := &RazorpayClient{HTTPClient: http.DefaultClient}
	if _, err := unconfigured.CreateOrder(context.Background(), RazorpayOrderRequest{Amount: 100}); err == nil {
		t.Fatalf("expected missing credentials to fail")
	}
}

func TestParseWebhookEvent_PaymentEntity(t *testing.T) {
	raw := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_xyz",
					"order_id": "order_abc",
					"amount": 49900,
					"currency": "INR",
					"notes": {"user_id": "7", "prompt_id": "3"}
				}
			}
		}
	}`)

	ev, err := ParseWebhookEvent(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ev.Event != "payment.captured" || ev.PaymentID != "pay_xyz" || ev.OrderID != "order_abc" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Amount != 49900 || ev.Currency != "INR" {
		t.Fatalf("unexpected amount/currency: %+v", ev)
	}
	if userID, ok := ev.NoteUint("user_id", "userId"); !ok || userID != 7 {
		t.Fatalf("user id note not parsed: %v %v", userID, ok)
	}
}

func TestParseWebhookEvent_OrderEntityFallback(t *testing.T) {
	raw := []byte(`{
		"event": "order.paid",
		"payload": {
			"order": {
				"entity": {
					"id": "order_abc",
					"amount": 0,
					"amount_paid": 49900,
					"currency": "INR",
					"notes": {"user_id": 7, "prompt_id": 3}
				}
			}
		}
	}`)

	ev, err := ParseWebhookEvent(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ev.OrderID != "order_abc" {
		t.Fatalf("expected order id from order entity, got %q", ev.OrderID)
	}
	if ev.PaymentID != "" {
		t.Fatalf("order entity must not masquerade as a payment id, got %q", ev.PaymentID)
	}
	if ev.Amount != 49900 {
		t.Fatalf("expected amount_paid fallback, got %d", ev.Amount)
	}
	if promptID, ok := ev.NoteUint("prompt_id", "promptId"); !ok || promptID != 3 {
		t.Fatalf("numeric note not coerced: %v %v", promptID, ok)
	}
}

func TestParseWebhookEvent_Invalid(t *testing.T) {
	if _, err := ParseWebhookEvent([]byte(`{not json`)); err == nil {
		t.Fatalf("expected malformed JSON to fail")
	}
	if _, err := ParseWebhookEvent([]byte(`{"payload":{}}`)); err == nil {
		t.Fatalf("expected missing event type to fail")
	}
}

func TestIsCaptureEvent(t *testing.T) {
	for _, event := range []string{"payment.captured", "order.paid", "payment.authorized"} {
		if !IsCaptureEvent(event) {
			t.Fatalf("expected %q to be a capture event", event)
		}
	}
	for _, event := range []string{"payment.failed", "refund.created", ""} {
		if IsCaptureEvent(event) {
			t.Fatalf("expected %q to be ignored", event)
		}
	}
}
