package repository

import (
	"github.com/PromptBay/promptbay/app/models"
	"gorm.io/gorm"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *models.PromptReport) error {
	return r.db.Create(report).Error
}

// HasOpenReport prevents a user from stacking duplicate open reports
// on the same listing.
func (r *reportRepository) HasOpenReport(promptID, reporterID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.PromptReport{}).
		Where("prompt_id = ? AND reporter_id = ? AND status = ?", promptID, reporterID, models.ReportStatusOpen).
		Count(&count).Error
	return count > 0, err
}

func (r *reportRepository) List(status, reason string) ([]models.PromptReport, error) {
	q := r.db.Preload("Prompt").Preload("Reporter").Order("created_at DESC")
	if status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}
	if reason != "" {
		q = q.Where("reason = ?", reason)
	}
	var reports []models.PromptReport
	err := q.Find(&reports).Error
	return reports, err
}

func (r *reportRepository) GetByID(id uint) (*models.PromptReport, error) {
	var report models.PromptReport
	err := r.db.First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) Update(report *models.PromptReport) error {
	return r.db.Save(report).Error
}
