package models

import "time"

// Favorite bookmarks a prompt for a user. Duplicate favorites are
// prevented by the unique natural key, mirroring the purchase ledger.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:ux_favorites_user_prompt,unique,priority:1" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PromptID  uint      `gorm:"not null;index:ux_favorites_user_prompt,unique,priority:2" json:"prompt_id"`
	Prompt    *Prompt   `gorm:"foreignKey:PromptID" json:"prompt,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
