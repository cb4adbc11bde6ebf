package payments

import (
	"time"

	"github.com/PromptBay/promptbay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the payments service.
// It is the only code path allowed to write the purchases table.
type Repository interface {
	UpsertCompletedPurchase(purchase *models.Purchase) error
	GetPurchase(userID, promptID uint) (*models.Purchase, error)
	HasCompletedPurchase(userID, promptID uint) (bool, error)
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// UpsertCompletedPurchase performs the single atomic write both
// confirmation paths share: insert on first arrival, overwrite provider
// references on redelivery, always landing on status completed. The
// ON CONFLICT clause on the (user_id, prompt_id) natural key is what
// makes the confirmation/webhook race safe without any locking.
func (r *gormRepository) UpsertCompletedPurchase(purchase *models.Purchase) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "prompt_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"provider",
			"provider_order_id",
			"provider_payment_id",
			"amount",
			"currency",
			"status",
			"metadata",
			"updated_at",
		}),
	}).Create(purchase).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("user_id = ? AND prompt_id = ?", purchase.UserID, purchase.PromptID).
		First(purchase).Error
}

func (r *gormRepository) GetPurchase(userID, promptID uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.Where("user_id = ? AND prompt_id = ?", userID, promptID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *gormRepository) HasCompletedPurchase(userID, promptID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Purchase{}).
		Where("user_id = ? AND prompt_id = ? AND status = ?", userID, promptID, models.PurchaseStatusCompleted).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
