package models

import (
	"strings"
	"time"
)

type ChecklistType string

const (
	ChecklistDaily  ChecklistType = "daily"
	ChecklistWeekly ChecklistType = "weekly"
	ChecklistYearly ChecklistType = "yearly"
)

var checklistAliases = map[string]ChecklistType{
	"daily":    ChecklistDaily,
	"harian":   ChecklistDaily,
	"weekly":   ChecklistWeekly,
	"mingguan": ChecklistWeekly,
	"yearly":   ChecklistYearly,
	"tahunan":  ChecklistYearly,
}

func ParseChecklistType(s string) (ChecklistType, bool) {
	t, ok := checklistAliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// Checklist is a reference document grouped by cadence. Path is the storage locator.
type Checklist struct {
	ID         uint64        `gorm:"primarykey" json:"id"`
	Type       ChecklistType `gorm:"type:varchar(50);not null;index" json:"type"`
	FileName   string        `gorm:"type:text;not null" json:"file_name"`
	Path       string        `gorm:"type:text;not null" json:"path"`
	UploadedAt time.Time     `gorm:"autoCreateTime;index" json:"uploaded_at"`
}

// Material is a utility-section training document.
type Material struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Section      string    `gorm:"type:varchar(100);not null;index" json:"section"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	FileName     string    `gorm:"type:text;not null" json:"file_name"`
	Path         string    `gorm:"type:text;not null" json:"path"`
	UploadedByID *uint64   `gorm:"index" json:"uploaded_by_id"`
	UploadedAt   time.Time `gorm:"autoCreateTime;index" json:"uploaded_at"`

	UploadedBy *User `gorm:"foreignKey:UploadedByID;constraint:OnDelete:SET NULL" json:"-"`
}
