package models

import "time"

// Category is one node of the marketplace taxonomy. The tree covers
// category, subcategory and sub-subcategory levels through ParentID.
type Category struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(100);not null;index" json:"name"`
	Slug      string     `gorm:"type:varchar(120);uniqueIndex" json:"slug"`
	ParentID  *uint      `gorm:"index" json:"parent_id,omitempty"`
	Parent    *Category  `gorm:"foreignKey:ParentID" json:"-"`
	Children  []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// PromptCategory links a prompt to up to three taxonomy nodes.
type PromptCategory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PromptID   uint      `gorm:"not null;index:ux_prompt_categories,unique,priority:1" json:"prompt_id"`
	CategoryID uint      `gorm:"not null;index:ux_prompt_categories,unique,priority:2" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
