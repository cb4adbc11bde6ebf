package models

import "time"

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusFailed    = "failed"
)

const PaymentProviderRazorpay = "razorpay"

// Purchase is the durable ledger record of a completed checkout, keyed
// by the natural key (user, prompt). All writes go through the payments
// service upsert so the uniqueness invariant is enforced by the storage
// layer, never by a read-then-write.
type Purchase struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index:ux_purchases_user_prompt,unique,priority:1" json:"user_id"`
	User              *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PromptID          uint      `gorm:"not null;index:ux_purchases_user_prompt,unique,priority:2" json:"prompt_id"`
	Prompt            *Prompt   `gorm:"foreignKey:PromptID" json:"prompt,omitempty"`
	Provider          string    `gorm:"type:varchar(20);not null;index" json:"provider"`
	ProviderOrderID   string    `gorm:"type:varchar(191);not null;index" json:"provider_order_id"`
	ProviderPaymentID string    `gorm:"type:varchar(191);not null;default:''" json:"provider_payment_id"`
	Amount            int64     `gorm:"not null;default:0" json:"amount"`
	Currency          string    `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	Status            string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Metadata          string    `gorm:"type:longtext" json:"metadata"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsCompleted reports whether the record entitles the buyer.
func (p *Purchase) IsCompleted() bool {
	return p.Status == PurchaseStatusCompleted
}
