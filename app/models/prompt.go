package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	PromptStatusPending  = "pending"
	PromptStatusApproved = "approved"
	PromptStatusRejected = "rejected"
)

const (
	ContentTypePrompt = "prompt"
	ContentTypeVideo  = "video"
)

const (
	ResultTypeImage    = "image"
	ResultTypeVideo    = "video"
	ResultTypeAudio    = "audio"
	ResultTypeScenario = "scenario"
)

// ResultURL is one media sample attached to a prompt listing.
type ResultURL struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Prompt is a purchasable marketplace listing (AI prompt or video
// tutorial). PromptText is the gated content released only through the
// unlock endpoint after an entitlement check.
type Prompt struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UUID        string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	Slug        string         `gorm:"type:varchar(64);uniqueIndex" json:"slug" validate:"required,max=64"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=3,max=200"`
	Description string         `gorm:"type:text" json:"description" validate:"max=5000"`
	Model       string         `gorm:"type:varchar(100)" json:"model" validate:"max=100"`
	PromptText  string         `gorm:"type:longtext" json:"-"`
	ResultURLs  string         `gorm:"type:longtext" json:"result_urls"`
	Tags        string         `gorm:"type:longtext" json:"tags"`
	ContentType string         `gorm:"type:varchar(20);not null;default:'prompt';index" json:"content_type" validate:"oneof=prompt video"`
	IsPremium   bool           `gorm:"default:false;index" json:"is_premium"`
	Price       int64          `gorm:"not null;default:0" json:"price"`
	Currency    string         `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	CreatedBy   uint           `gorm:"not null;index" json:"created_by"`
	Creator     *User          `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Status      string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status" validate:"oneof=pending approved rejected"`
	IsFeatured  bool           `gorm:"default:false;index" json:"is_featured"`
	ViewCount   int64          `gorm:"default:0" json:"view_count"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Prompt) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// IsApproved reports whether the listing passed moderation.
func (p *Prompt) IsApproved() bool {
	return p.Status == PromptStatusApproved
}

// Purchasable reports whether an order may be created for this listing.
// Free listings are never orderable.
func (p *Prompt) Purchasable() bool {
	return p.IsPremium && p.IsApproved() && p.Price > 0
}

// SetResultURLs validates and serializes the media samples. The rules
// mirror the submission form: 1..5 entries, at least one image, at most
// one video, known types only.
func (p *Prompt) SetResultURLs(results []ResultURL) error {
	if err := ValidateResultURLs(results); err != nil {
		return err
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return err
	}
	p.ResultURLs = string(raw)
	return nil
}

// GetResultURLs deserializes the stored media samples.
func (p *Prompt) GetResultURLs() ([]ResultURL, error) {
	if p.ResultURLs == "" {
		return nil, nil
	}
	var results []ResultURL
	if err := json.Unmarshal([]byte(p.ResultURLs), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// SetTags normalizes and serializes the free-form labels. Blank entries
// are dropped; at most 10 tags of up to 50 characters each.
func (p *Prompt) SetTags(tags []string) error {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(tag) > 50 {
			return errors.New("tag too long: " + tag)
		}
		cleaned = append(cleaned, tag)
	}
	if len(cleaned) > 10 {
		return errors.New("at most 10 tags allowed")
	}
	if len(cleaned) == 0 {
		p.Tags = ""
		return nil
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return err
	}
	p.Tags = string(raw)
	return nil
}

// GetTags deserializes the stored labels.
func (p *Prompt) GetTags() ([]string, error) {
	if p.Tags == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(p.Tags), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// ValidateResultURLs enforces the media sample rules shared by create
// and update.
func ValidateResultURLs(results []ResultURL) error {
	if len(results) < 1 || len(results) > 5 {
		return errors.New("result_urls must contain 1 to 5 entries")
	}

	images := 0
	videos := 0
	for _, r := range results {
		if r.URL == "" {
			return errors.New("result url is required")
		}
		switch r.Type {
		case ResultTypeImage:
			images++
		case ResultTypeVideo:
			videos++
		case ResultTypeAudio, ResultTypeScenario:
			// allowed, no count limits
		default:
			return errors.New("invalid result url type: " + r.Type)
		}
	}
	if images < 1 {
		return errors.New("at least one image result is required")
	}
	if videos > 1 {
		return errors.New("only one video result is allowed")
	}
	return nil
}

// FindPromptBySlug loads a listing by its public share slug.
func FindPromptBySlug(db *gorm.DB, slug string) (*Prompt, error) {
	var prompt Prompt
	if err := db.Where("slug = ?", slug).First(&prompt).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}
