package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReportStatusOpen      = "open"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// ReportReasons are the accepted abuse categories.
var ReportReasons = []string{"spam", "inappropriate", "copyrighted", "broken", "misleading", "other"}

// IsValidReportReason checks a submitted reason against the accepted set.
func IsValidReportReason(reason string) bool {
	for _, r := range ReportReasons {
		if r == reason {
			return true
		}
	}
	return false
}

type PromptReport struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	PromptID     uint           `gorm:"index;not null" json:"prompt_id"`
	Prompt       *Prompt        `gorm:"foreignKey:PromptID" json:"prompt,omitempty"`
	ReporterID   uint           `gorm:"index;not null" json:"reporter_id"`
	Reporter     *User          `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Reason       string         `gorm:"type:varchar(50);not null" json:"reason"`
	Details      string         `gorm:"type:text" json:"details"`
	Status       string         `gorm:"type:varchar(20);default:'open';index" json:"status"`
	ResolvedByID *uint          `gorm:"index" json:"resolved_by_id,omitempty"`
	ResolvedBy   *User          `gorm:"foreignKey:ResolvedByID" json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
