package models

import (
	"errors"
	"strings"
	"time"
)

type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "draft"
	ReportStatusCompleted ReportStatus = "selesai"
	ReportStatusApproved  ReportStatus = "disetujui"
)

// ErrIllegalTransition is returned when a report is not in the source state of a transition.
var ErrIllegalTransition = errors.New("illegal report status transition")

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusCompleted, ReportStatusApproved:
		return true
	}
	return false
}

// ParseReportStatus accepts the three known states, case-insensitively.
func ParseReportStatus(s string) (ReportStatus, bool) {
	st := ReportStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// ReportTransition is one edge of the report state machine. Its fields are
// unexported so the only transitions that exist are the ones declared below.
type ReportTransition struct {
	name string
	from ReportStatus
	to   ReportStatus
}

var (
	CompleteReport = ReportTransition{name: "complete", from: ReportStatusDraft, to: ReportStatusCompleted}
	ApproveReport  = ReportTransition{name: "approve", from: ReportStatusCompleted, to: ReportStatusApproved}
)

func (t ReportTransition) Name() string       { return t.name }
func (t ReportTransition) From() ReportStatus { return t.from }
func (t ReportTransition) To() ReportStatus   { return t.to }

type Report struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	UserID      uint64       `gorm:"not null;index" json:"user_id"`
	Date        time.Time    `gorm:"not null;index" json:"date"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	Status      ReportStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CompletedAt *time.Time   `json:"completed_at"`
	ApprovedAt  *time.Time   `json:"approved_at"`
	Version     uint64       `gorm:"not null" json:"version"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Apply moves the report along t, stamping the matching timestamp.
func (r *Report) Apply(t ReportTransition, at time.Time) error {
	if r.Status != t.from {
		return ErrIllegalTransition
	}
	r.Status = t.to
	switch t.to {
	case ReportStatusCompleted:
		r.CompletedAt = &at
	case ReportStatusApproved:
		r.ApprovedAt = &at
	}
	return nil
}

// Locked reports accept no further edits.
func (r *Report) Locked() bool {
	return r.Status == ReportStatusApproved
}

// AuthorName returns the owner's display name when the relation is loaded.
func (r *Report) AuthorName() string {
	if r.User == nil {
		return ""
	}
	return r.User.DisplayName
}
