package repository

import (
	"time"

	"github.com/PromptBay/promptbay/app/models"
	"gorm.io/gorm"
)

// promptRepository implements the PromptRepository interface
type promptRepository struct {
	db *gorm.DB
}

// NewPromptRepository creates a new prompt repository instance
func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &promptRepository{db: db}
}

func (r *promptRepository) Create(prompt *models.Prompt) error {
	return r.db.Create(prompt).Error
}

func (r *promptRepository) GetByID(id uint) (*models.Prompt, error) {
	var prompt models.Prompt
	err := r.db.First(&prompt, id).Error
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (r *promptRepository) GetByUUID(uuid string) (*models.Prompt, error) {
	var prompt models.Prompt
	err := r.db.Where("uuid = ?", uuid).First(&prompt).Error
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (r *promptRepository) GetBySlug(slug string) (*models.Prompt, error) {
	var prompt models.Prompt
	err := r.db.Where("slug = ?", slug).First(&prompt).Error
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (r *promptRepository) GetByCreator(userID uint, offset, limit int) ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := r.db.Where("created_by = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&prompts).Error
	return prompts, err
}

func (r *promptRepository) GetApproved(offset, limit int) ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := r.db.Where("status = ?", models.PromptStatusApproved).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&prompts).Error
	return prompts, err
}

func (r *promptRepository) GetByCategory(categoryID uint, offset, limit int) ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := r.db.
		Joins("JOIN prompt_categories ON prompt_categories.prompt_id = prompts.id").
		Where("prompt_categories.category_id = ? AND prompts.status = ?", categoryID, models.PromptStatusApproved).
		Order("prompts.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&prompts).Error
	return prompts, err
}

func (r *promptRepository) GetFeatured(limit int) ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := r.db.Where("is_featured = ? AND status = ?", true, models.PromptStatusApproved).
		Order("updated_at DESC").
		Limit(limit).
		Find(&prompts).Error
	return prompts, err
}

// GetTrending ranks recently created approved listings by view count.
// The window keeps stale evergreen content from crowding out new work.
func (r *promptRepository) GetTrending(contentType string, days, limit int) ([]models.Prompt, error) {
	since := time.Now().AddDate(0, 0, -days)
	var prompts []models.Prompt
	q := r.db.Where("status = ? AND created_at >= ?", models.PromptStatusApproved, since)
	if contentType != "" {
		q = q.Where("content_type = ?", contentType)
	}
	err := q.Order("view_count DESC, created_at DESC").
		Limit(limit).
		Find(&prompts).Error
	return prompts, err
}

func (r *promptRepository) Search(query string, offset, limit int) ([]models.Prompt, error) {
	var prompts []models.Prompt
	like := "%" + query + "%"
	err := r.db.Where("status = ?", models.PromptStatusApproved).
		Where("title LIKE ? OR description LIKE ? OR model LIKE ?", like, like, like).
		Order("view_count DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&prompts).Error
	return prompts, err
}

// ListApprovedTags returns the serialized tag columns of approved
// listings so popularity can be aggregated over them.
func (r *promptRepository) ListApprovedTags() ([]string, error) {
	var rows []string
	err := r.db.Model(&models.Prompt{}).
		Where("status = ? AND tags <> ''", models.PromptStatusApproved).
		Pluck("tags", &rows).Error
	return rows, err
}

func (r *promptRepository) Update(prompt *models.Prompt) error {
	return r.db.Save(prompt).Error
}

func (r *promptRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Prompt{}).Where("id = ?", id).Update("status", status).Error
}

func (r *promptRepository) SetFeatured(id uint, featured bool) error {
	return r.db.Model(&models.Prompt{}).Where("id = ?", id).Update("is_featured", featured).Error
}

func (r *promptRepository) Delete(id uint) error {
	return r.db.Delete(&models.Prompt{}, id).Error
}

func (r *promptRepository) List(offset, limit int) ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&prompts).Error
	return prompts, err
}

func (r *promptRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Prompt{}).Count(&count).Error
	return count, err
}

// ReplaceCategories swaps a listing's taxonomy links in one transaction.
func (r *promptRepository) ReplaceCategories(promptID uint, categoryIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", promptID).Delete(&models.PromptCategory{}).Error; err != nil {
			return err
		}
		for _, categoryID := range categoryIDs {
			link := models.PromptCategory{PromptID: promptID, CategoryID: categoryID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
