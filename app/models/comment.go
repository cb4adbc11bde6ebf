package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a threaded discussion entry on a prompt. ParentID is nil
// for root comments; replies reference their parent.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PromptID  uint           `gorm:"index" json:"prompt_id"`
	Prompt    Prompt         `gorm:"foreignKey:PromptID" json:"prompt,omitempty"`
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`
	Content   string         `gorm:"type:text" json:"content" validate:"required,min=1"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
