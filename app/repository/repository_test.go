package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/PromptBay/promptbay/app/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                           logger.Default.LogMode(logger.Silent),
		IgnoreRelationshipsWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Prompt{},
		&models.Review{},
		&models.Favorite{},
		&models.PromptReport{},
		&models.Category{},
		&models.PromptCategory{},
	))
	return db
}

func TestReviewUpsert_ReplacesExisting(t *testing.T) {
	repo := NewReviewRepository(newTestDB(t))

	first := &models.Review{PromptID: 3, UserID: 7, Rating: 2, ReviewText: "meh"}
	require.NoError(t, repo.Upsert(first))
	require.NotZero(t, first.ID)

	second := &models.Review{PromptID: 3, UserID: 7, Rating: 5, ReviewText: "grew on me"}
	require.NoError(t, repo.Upsert(second))
	assert.Equal(t, first.ID, second.ID)

	reviews, err := repo.GetRecentByPrompt(3, 10)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)

	stats, err := repo.GetStats(3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ReviewCount)
	assert.InDelta(t, 5.0, stats.AvgRating, 0.001)
}

func TestReviewStats_Aggregates(t *testing.T) {
	repo := NewReviewRepository(newTestDB(t))

	for i, rating := range []int{5, 3, 4} {
		require.NoError(t, repo.Upsert(&models.Review{PromptID: 1, UserID: uint(i + 1), Rating: rating}))
	}

	stats, err := repo.GetStats(1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.ReviewCount)
	assert.InDelta(t, 4.0, stats.AvgRating, 0.001)

	empty, err := repo.GetStats(99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.ReviewCount)
	assert.Zero(t, empty.AvgRating)
}

func TestFavoriteAdd_Idempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewFavoriteRepository(db)

	require.NoError(t, repo.Add(&models.Favorite{UserID: 7, PromptID: 3}))
	require.NoError(t, repo.Add(&models.Favorite{UserID: 7, PromptID: 3}))

	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Remove(7, 3))
	require.NoError(t, repo.Remove(7, 3)) // removing twice is fine

	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestReportHasOpenReport(t *testing.T) {
	repo := NewReportRepository(newTestDB(t))

	require.NoError(t, repo.Create(&models.PromptReport{
		PromptID:   3,
		ReporterID: 7,
		Reason:     "spam",
		Status:     models.ReportStatusOpen,
	}))

	open, err := repo.HasOpenReport(3, 7)
	require.NoError(t, err)
	assert.True(t, open)

	open, err = repo.HasOpenReport(3, 8)
	require.NoError(t, err)
	assert.False(t, open)

	report, err := repo.GetByID(1)
	require.NoError(t, err)
	report.Status = models.ReportStatusResolved
	require.NoError(t, repo.Update(report))

	open, err = repo.HasOpenReport(3, 7)
	require.NoError(t, err)
	assert.False(t, open, "resolved reports no longer block new ones")
}

func TestPromptRepository_StatusQueries(t *testing.T) {
	db := newTestDB(t)
	repo := NewPromptRepository(db)

	seed := []models.Prompt{
		{UUID: "u1", Slug: "approved-one", Title: "Approved one", Status: models.PromptStatusApproved, CreatedBy: 1, ContentType: models.ContentTypePrompt},
		{UUID: "u2", Slug: "pending-one", Title: "Pending one", Status: models.PromptStatusPending, CreatedBy: 1, ContentType: models.ContentTypePrompt},
		{UUID: "u3", Slug: "approved-two", Title: "Approved two", Status: models.PromptStatusApproved, CreatedBy: 2, ContentType: models.ContentTypeVideo, IsFeatured: true},
	}
	for i := range seed {
		require.NoError(t, repo.Create(&seed[i]))
	}

	approved, err := repo.GetApproved(0, 10)
	require.NoError(t, err)
	assert.Len(t, approved, 2)

	bySlug, err := repo.GetBySlug("pending-one")
	require.NoError(t, err)
	assert.Equal(t, "Pending one", bySlug.Title)

	mine, err := repo.GetByCreator(1, 0, 10)
	require.NoError(t, err)
	assert.Len(t, mine, 2, "creator sees own pending listings")

	featured, err := repo.GetFeatured(10)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "approved-two", featured[0].Slug)

	require.NoError(t, repo.UpdateStatus(seed[1].ID, models.PromptStatusApproved))
	approved, err = repo.GetApproved(0, 10)
	require.NoError(t, err)
	assert.Len(t, approved, 3)

	results, err := repo.Search("approved", 0, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestPromptRepository_ListApprovedTags(t *testing.T) {
	db := newTestDB(t)
	repo := NewPromptRepository(db)

	seed := []models.Prompt{
		{UUID: "t1", Slug: "tagged-approved", Title: "Tagged approved", Status: models.PromptStatusApproved, ContentType: models.ContentTypePrompt, Tags: `["portrait","drone"]`},
		{UUID: "t2", Slug: "tagged-pending", Title: "Tagged pending", Status: models.PromptStatusPending, ContentType: models.ContentTypePrompt, Tags: `["hidden"]`},
		{UUID: "t3", Slug: "untagged-approved", Title: "Untagged approved", Status: models.PromptStatusApproved, ContentType: models.ContentTypePrompt},
	}
	for i := range seed {
		require.NoError(t, repo.Create(&seed[i]))
	}

	rows, err := repo.ListApprovedTags()
	require.NoError(t, err)
	require.Len(t, rows, 1, "only approved listings with tags")
	assert.Equal(t, `["portrait","drone"]`, rows[0])
}

func TestPromptRepository_ReplaceCategories(t *testing.T) {
	db := newTestDB(t)
	repo := NewPromptRepository(db)

	prompt := models.Prompt{UUID: "u1", Slug: "s1", Title: "Tagged", Status: models.PromptStatusApproved, ContentType: models.ContentTypePrompt}
	require.NoError(t, repo.Create(&prompt))

	require.NoError(t, repo.ReplaceCategories(prompt.ID, []uint{1, 2}))
	require.NoError(t, repo.ReplaceCategories(prompt.ID, []uint{2, 3}))

	var links []models.PromptCategory
	require.NoError(t, db.Where("prompt_id = ?", prompt.ID).Order("category_id").Find(&links).Error)
	require.Len(t, links, 2)
	assert.Equal(t, uint(2), links[0].CategoryID)
	assert.Equal(t, uint(3), links[1].CategoryID)
}
