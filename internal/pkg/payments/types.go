package payments

// CompletedPurchaseInput is the normalized shape both confirmation
// paths (synchronous verify and asynchronous webhook) feed into the
// ledger upsert.
type CompletedPurchaseInput struct {
	UserID            uint
	PromptID          uint
	Provider          string
	ProviderOrderID   string
	ProviderPaymentID string
	Amount            int64
	Currency          string
	MetadataJSON      string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// OrderIntent is what the order-creation path returns to the caller so
// it can open the hosted checkout widget. Nothing is persisted locally;
// the provider owns the order for the duration of the checkout attempt.
type OrderIntent struct {
	OrderID  string
	KeyID    string
	Amount   int64
	Currency string
}
