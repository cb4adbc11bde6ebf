package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/PromptBay/promptbay/app/models"
)

// fakeRepository keeps the ledger and webhook audit in maps with the
// same natural-key semantics as the real upsert.
type fakeRepository struct {
	mu         sync.Mutex
	purchases  map[string]*models.Purchase
	events     map[string]*models.PaymentWebhookEvent
	nextID     uint
	upsertErr  error
	upsertHits int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		purchases: make(map[string]*models.Purchase),
		events:    make(map[string]*models.PaymentWebhookEvent),
	}
}

func purchaseKey(userID, promptID uint) string {
	return fmt.Sprintf("%d:%d", userID, promptID)
}

func (f *fakeRepository) UpsertCompletedPurchase(purchase *models.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertHits++
	if f.upsertErr != nil {
		return f.upsertErr
	}

	key := purchaseKey(purchase.UserID, purchase.PromptID)
	if existing, ok := f.purchases[key]; ok {
		purchase.ID = existing.ID
	} else {
		f.nextID++
		purchase.ID = f.nextID
	}
	stored := *purchase
	f.purchases[key] = &stored
	return nil
}

func (f *fakeRepository) GetPurchase(userID, promptID uint) (*models.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[purchaseKey(userID, promptID)]
	if !ok {
		return nil, errors.New("record not found")
	}
	out := *p
	return &out, nil
}

func (f *fakeRepository) HasCompletedPurchase(userID, promptID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[purchaseKey(userID, promptID)]
	return ok && p.Status == models.PurchaseStatusCompleted, nil
}

func (f *fakeRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := event.Provider + ":" + event.ProviderEventID
	if existing, ok := f.events[key]; ok {
		out := *existing
		return false, &out, nil
	}
	f.nextID++
	event.ID = f.nextID
	stored := *event
	f.events[key] = &stored
	out := stored
	return true, &out, nil
}

func (f *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range f.events {
		if ev.ID == id {
			ev.ProcessingError = processingError
			return nil
		}
	}
	return errors.New("record not found")
}

func webhookBody(event, paymentID, orderID string, amount int64, notes string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":%q,"payload":{"payment":{"entity":{"id":%q,"order_id":%q,"amount":%d,"currency":"INR","notes":%s}}}}`,
		event, paymentID, orderID, amount, notes,
	))
}

func TestRecordCompletedPurchase_Idempotent(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	in := CompletedPurchaseInput{
		UserID:            7,
		PromptID:          3,
		ProviderOrderID:   "order_abc",
		ProviderPaymentID: "pay_xyz",
		Amount:            49900,
		Currency:          "INR",
	}

	first, err := svc.RecordCompletedPurchase(ctx, in)
	if err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if first.Status != models.PurchaseStatusCompleted {
		t.Fatalf("expected completed status, got %q", first.Status)
	}

	// Second arrival from the other confirmation path.
	in.ProviderPaymentID = "pay_xyz2"
	second, err := svc.RecordCompletedPurchase(ctx, in)
	if err != nil {
		t.Fatalf("second record failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same ledger row, got ids %d and %d", first.ID, second.ID)
	}
	if len(repo.purchases) != 1 {
		t.Fatalf("expected exactly one ledger row, got %d", len(repo.purchases))
	}
	if repo.purchases[purchaseKey(7, 3)].ProviderPaymentID != "pay_xyz2" {
		t.Fatalf("expected last writer's provider references to stick")
	}
}

func TestRecordCompletedPurchase_ConcurrentPaths(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.RecordCompletedPurchase(ctx, CompletedPurchaseInput{
				UserID:            1,
				PromptID:          2,
				ProviderOrderID:   "order_abc",
				ProviderPaymentID: fmt.Sprintf("pay_%d", i),
				Amount:            49900,
			})
			if err != nil {
				t.Errorf("concurrent record failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if len(repo.purchases) != 1 {
		t.Fatalf("expected one ledger row after concurrent writes, got %d", len(repo.purchases))
	}
	has, err := svc.HasCompletedPurchase(ctx, 1, 2)
	if err != nil || !has {
		t.Fatalf("expected completed purchase after concurrent writes, has=%v err=%v", has, err)
	}
}

func TestRecordCompletedPurchase_Defaults(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	p, err := svc.RecordCompletedPurchase(context.Background(), CompletedPurchaseInput{
		UserID:          1,
		PromptID:        2,
		ProviderOrderID: "order_abc",
		Amount:          100,
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if p.Provider != models.PaymentProviderRazorpay {
		t.Fatalf("expected default provider, got %q", p.Provider)
	}
	if p.Currency != "INR" {
		t.Fatalf("expected default currency, got %q", p.Currency)
	}

	if _, err := svc.RecordCompletedPurchase(context.Background(), CompletedPurchaseInput{PromptID: 2}); err == nil {
		t.Fatalf("expected missing user id to fail")
	}
}

func TestProcessWebhook_CaptureWritesLedger(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	body := webhookBody("payment.captured", "pay_xyz", "order_abc", 49900, `{"user_id":"7","prompt_id":"3"}`)
	outcome, err := svc.ProcessWebhook(context.Background(), body, "evt_1")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !outcome.LedgerWrite {
		t.Fatalf("expected a ledger write")
	}

	has, err := svc.HasCompletedPurchase(context.Background(), 7, 3)
	if err != nil || !has {
		t.Fatalf("expected entitlement after capture webhook, has=%v err=%v", has, err)
	}
	p, err := svc.repo.GetPurchase(7, 3)
	if err != nil {
		t.Fatalf("ledger row missing: %v", err)
	}
	if p.ProviderOrderID != "order_abc" || p.ProviderPaymentID != "pay_xyz" || p.Amount != 49900 {
		t.Fatalf("unexpected ledger row: %+v", p)
	}
}

func TestProcessWebhook_NumericNotes(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	// Notes round-trip as JSON numbers from some provider flows.
	body := webhookBody("payment.captured", "pay_1", "order_1", 100, `{"user_id":7,"prompt_id":3}`)
	outcome, err := svc.ProcessWebhook(context.Background(), body, "evt_num")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !outcome.LedgerWrite {
		t.Fatalf("expected a ledger write for numeric notes")
	}
}

func TestProcessWebhook_NonCaptureEventIsNoOp(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	body := webhookBody("payment.failed", "pay_1", "order_1", 100, `{"user_id":"7","prompt_id":"3"}`)
	outcome, err := svc.ProcessWebhook(context.Background(), body, "evt_2")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if outcome.LedgerWrite {
		t.Fatalf("expected no ledger write for non-capture event")
	}
	if len(repo.purchases) != 0 {
		t.Fatalf("expected empty ledger, got %d rows", len(repo.purchases))
	}
	// Audit row is still recorded.
	if len(repo.events) != 1 {
		t.Fatalf("expected one audit row, got %d", len(repo.events))
	}
}

func TestProcessWebhook_UncorrelatedCapture(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	body := webhookBody("payment.captured", "pay_1", "order_1", 100, `{}`)
	outcome, err := svc.ProcessWebhook(context.Background(), body, "evt_3")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !outcome.Uncorrelated {
		t.Fatalf("expected uncorrelated outcome")
	}
	if outcome.LedgerWrite {
		t.Fatalf("expected no ledger write without correlation ids")
	}
}

func TestProcessWebhook_DuplicateDeliveries(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	body := webhookBody("payment.captured", "pay_1", "order_1", 100, `{"user_id":"7","prompt_id":"3"}`)

	for i := 0; i < 3; i++ {
		if _, err := svc.ProcessWebhook(context.Background(), body, "evt_dup"); err != nil {
			t.Fatalf("delivery %d failed: %v", i, err)
		}
	}

	if len(repo.purchases) != 1 {
		t.Fatalf("expected one ledger row after redeliveries, got %d", len(repo.purchases))
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected one audit row after redeliveries, got %d", len(repo.events))
	}
}

func TestProcessWebhook_LedgerFailurePropagates(t *testing.T) {
	repo := newFakeRepository()
	repo.upsertErr = errors.New("db down")
	svc := NewService(repo, nil)

	body := webhookBody("payment.captured", "pay_1", "order_1", 100, `{"user_id":"7","prompt_id":"3"}`)
	outcome, err := svc.ProcessWebhook(context.Background(), body, "evt_4")
	if err == nil {
		t.Fatalf("expected ledger failure to propagate so the provider retries")
	}
	if outcome == nil || outcome.LedgerWrite {
		t.Fatalf("expected parsed outcome without ledger write, got %+v", outcome)
	}
}

func TestProcessWebhook_MalformedBody(t *testing.T) {
	svc := NewService(newFakeRepository(), nil)
	if _, err := svc.ProcessWebhook(context.Background(), []byte("{not json"), "evt_5"); err == nil {
		t.Fatalf("expected malformed body to fail")
	}
}

func TestCreateOrderIntent_RejectsUnpurchasable(t *testing.T) {
	svc := NewService(newFakeRepository(), NewRazorpayClientFromEnv())

	cases := []*models.Prompt{
		{ID: 1, IsPremium: false, Status: models.PromptStatusApproved, Price: 100},
		{ID: 2, IsPremium: true, Status: models.PromptStatusPending, Price: 100},
		{ID: 3, IsPremium: true, Status: models.PromptStatusApproved, Price: 0},
	}
	for _, prompt := range cases {
		_, err := svc.CreateOrderIntent(context.Background(), 7, prompt)
		if !errors.Is(err, ErrNotPurchasable) {
			t.Fatalf("prompt %d: expected ErrNotPurchasable, got %v", prompt.ID, err)
		}
	}
}

func TestRecordWebhookEvent_HashFallbackKey(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	in := WebhookEventInput{
		Provider:    models.PaymentProviderRazorpay,
		EventType:   "payment.captured",
		PayloadJSON: `{"event":"payment.captured"}`,
	}
	created, first, err := svc.RecordWebhookEvent(context.Background(), in)
	if err != nil || !created {
		t.Fatalf("first event store failed: created=%v err=%v", created, err)
	}
	created, second, err := svc.RecordWebhookEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("second event store failed: %v", err)
	}
	if created {
		t.Fatalf("expected identical payload without event id to dedupe")
	}
	if first.ID != second.ID {
		t.Fatalf("expected same audit row, got ids %d and %d", first.ID, second.ID)
	}
}
