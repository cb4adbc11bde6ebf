package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Review is one rating per user per prompt. Premium listings accept
// reviews only from buyers with a completed purchase.
type Review struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	PromptID   uint           `gorm:"not null;index:ux_reviews_prompt_user,unique,priority:1" json:"prompt_id"`
	Prompt     *Prompt        `gorm:"foreignKey:PromptID" json:"prompt,omitempty"`
	UserID     uint           `gorm:"not null;index:ux_reviews_prompt_user,unique,priority:2" json:"user_id"`
	User       *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Rating     int            `gorm:"not null" json:"rating" validate:"required,min=1,max=5"`
	ReviewText string         `gorm:"type:text" json:"review_text" validate:"max=2000"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Review) Validate() error {
	v := validator.New()

	return v.Struct(r)
}

// ReviewStats is the aggregate shape returned alongside recent reviews.
type ReviewStats struct {
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int64   `json:"review_count"`
}
