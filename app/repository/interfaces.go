package repository

import (
	"github.com/PromptBay/promptbay/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAccessTokenHash(hash string) (*models.User, error)
	Update(user *models.User) error
	Count() (int64, error)
}

// PromptRepository defines the interface for listing-related database operations
type PromptRepository interface {
	Create(prompt *models.Prompt) error
	GetByID(id uint) (*models.Prompt, error)
	GetByUUID(uuid string) (*models.Prompt, error)
	GetBySlug(slug string) (*models.Prompt, error)
	GetByCreator(userID uint, offset, limit int) ([]models.Prompt, error)
	GetApproved(offset, limit int) ([]models.Prompt, error)
	GetByCategory(categoryID uint, offset, limit int) ([]models.Prompt, error)
	GetFeatured(limit int) ([]models.Prompt, error)
	GetTrending(contentType string, days, limit int) ([]models.Prompt, error)
	Search(query string, offset, limit int) ([]models.Prompt, error)
	ListApprovedTags() ([]string, error)
	Update(prompt *models.Prompt) error
	UpdateStatus(id uint, status string) error
	SetFeatured(id uint, featured bool) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Prompt, error)
	Count() (int64, error)
	ReplaceCategories(promptID uint, categoryIDs []uint) error
}

// PurchaseRepository exposes read-only ledger queries. Ledger writes
// happen exclusively through the payments service upsert.
type PurchaseRepository interface {
	GetByUser(userID uint) ([]models.Purchase, error)
	ListWithRelations(offset, limit int) ([]models.Purchase, error)
	Count() (int64, error)
}

// ReviewRepository defines the interface for review operations
type ReviewRepository interface {
	Upsert(review *models.Review) error
	GetRecentByPrompt(promptID uint, limit int) ([]models.Review, error)
	GetStats(promptID uint) (*models.ReviewStats, error)
}

// CommentRepository defines the interface for comment operations
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id uint) (*models.Comment, error)
	GetByPrompt(promptID uint) ([]models.Comment, error)
	Delete(id uint) error
}

// FavoriteRepository defines the interface for favorite operations
type FavoriteRepository interface {
	Add(favorite *models.Favorite) error
	Remove(userID, promptID uint) error
	GetByUser(userID uint) ([]models.Favorite, error)
}

// ReportRepository defines the interface for abuse report operations
type ReportRepository interface {
	Create(report *models.PromptReport) error
	HasOpenReport(promptID, reporterID uint) (bool, error)
	List(status, reason string) ([]models.PromptReport, error)
	GetByID(id uint) (*models.PromptReport, error)
	Update(report *models.PromptReport) error
}

// CategoryRepository defines the interface for taxonomy operations
type CategoryRepository interface {
	GetAll() ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	Create(category *models.Category) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User     UserRepository
	Prompt   PromptRepository
	Purchase PurchaseRepository
	Review   ReviewRepository
	Comment  CommentRepository
	Favorite FavoriteRepository
	Report   ReportRepository
	Category CategoryRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Prompt:   NewPromptRepository(db),
		Purchase: NewPurchaseRepository(db),
		Review:   NewReviewRepository(db),
		Comment:  NewCommentRepository(db),
		Favorite: NewFavoriteRepository(db),
		Report:   NewReportRepository(db),
		Category: NewCategoryRepository(db),
	}
}
