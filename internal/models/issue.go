package models

import (
	"strings"
	"time"
)

type IssueStatus string

const (
	IssueStatusOpen          IssueStatus = "open"
	IssueStatusInvestigating IssueStatus = "investigating"
	IssueStatusResolved      IssueStatus = "resolved"
	IssueStatusClosed        IssueStatus = "closed"
)

// ParseIssueStatus accepts the four known states, case-insensitively.
func ParseIssueStatus(s string) (IssueStatus, bool) {
	switch st := IssueStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case IssueStatusOpen, IssueStatusInvestigating, IssueStatusResolved, IssueStatusClosed:
		return st, true
	}
	return "", false
}

type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "low"
	IssuePriorityMedium IssuePriority = "medium"
	IssuePriorityHigh   IssuePriority = "high"
)

// ParseIssuePriority is the strict form, used for query filters.
func ParseIssuePriority(s string) (IssuePriority, bool) {
	switch p := IssuePriority(strings.ToLower(strings.TrimSpace(s))); p {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh:
		return p, true
	}
	return "", false
}

// NormalizePriority never fails: unknown input becomes medium.
func NormalizePriority(s string) IssuePriority {
	if p, ok := ParseIssuePriority(s); ok {
		return p
	}
	return IssuePriorityMedium
}

type Issue struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Title       string        `gorm:"type:text;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      IssueStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Priority    IssuePriority `gorm:"type:varchar(20);not null;index" json:"priority"`
	CreatedByID *uint64       `gorm:"index" json:"created_by_id"`
	Version     uint64        `gorm:"not null" json:"version"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Relations
	CreatedBy *User `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
}

// CreatorName is empty when the creator has been removed or was not loaded.
func (i *Issue) CreatorName() string {
	if i.CreatedBy == nil {
		return ""
	}
	return i.CreatedBy.DisplayName
}
