package repository

import (
	"github.com/PromptBay/promptbay/app/models"
	"gorm.io/gorm"
)

// purchaseRepository implements the read-only PurchaseRepository
// interface. The ledger is written only through the payments service.
type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository instance
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) GetByUser(userID uint) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}

// ListWithRelations returns the admin purchase overview with buyer and
// listing preloaded.
func (r *purchaseRepository) ListWithRelations(offset, limit int) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.Preload("User").Preload("Prompt").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Purchase{}).Count(&count).Error
	return count, err
}
