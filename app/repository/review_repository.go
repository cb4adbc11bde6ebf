package repository

import (
	"github.com/PromptBay/promptbay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reviewRepository implements the ReviewRepository interface
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository instance
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Upsert writes one review per (prompt, user); a second submission
// replaces the first instead of duplicating it.
func (r *reviewRepository) Upsert(review *models.Review) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "prompt_id"},
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"rating",
			"review_text",
			"updated_at",
		}),
	}).Create(review).Error; err != nil {
		return err
	}

	return r.db.Where("prompt_id = ? AND user_id = ?", review.PromptID, review.UserID).
		First(review).Error
}

func (r *reviewRepository) GetRecentByPrompt(promptID uint, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Where("prompt_id = ?", promptID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) GetStats(promptID uint) (*models.ReviewStats, error) {
	var stats models.ReviewStats
	err := r.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS review_count").
		Where("prompt_id = ?", promptID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
