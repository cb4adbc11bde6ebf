package repository

import (
	"github.com/PromptBay/promptbay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// favoriteRepository implements the FavoriteRepository interface
type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new favorite repository instance
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add bookmarks a prompt; re-adding an existing favorite is a no-op.
func (r *favoriteRepository) Add(favorite *models.Favorite) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "prompt_id"},
		},
		DoNothing: true,
	}).Create(favorite).Error
}

func (r *favoriteRepository) Remove(userID, promptID uint) error {
	return r.db.Where("user_id = ? AND prompt_id = ?", userID, promptID).
		Delete(&models.Favorite{}).Error
}

func (r *favoriteRepository) GetByUser(userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.Preload("Prompt").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	return favorites, err
}
