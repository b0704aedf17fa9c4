package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/policy"
	"github.com/yukikurage/report-tracker-api/internal/utils"
)

// ErrStaleVersion is returned by compare-and-set updates when the row was
// changed (or deleted) after it was read.
var ErrStaleVersion = errors.New("repository: row was modified concurrently")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List returns users newest first
	List(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error)

	// Update saves profile, role and password hash
	Update(ctx context.Context, user *models.User) error

	// Delete removes the user and their reports, and detaches their issues
	// and materials, in one transaction.
	Delete(ctx context.Context, id uint64) error
}

// ReportFilter holds filtering options for listing reports
type ReportFilter struct {
	Scope  policy.Scope
	Status *models.ReportStatus
	UserID *uint64
	Page   utils.PaginationParams
}

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// Create inserts a report
	Create(ctx context.Context, report *models.Report) error

	// FindByID loads a report together with its owner
	FindByID(ctx context.Context, id uint64) (*models.Report, error)

	// List returns reports inside the filter scope, newest date first
	List(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error)

	// Update writes the report if its stored version still equals expectedVersion,
	// then advances report.Version.
	Update(ctx context.Context, report *models.Report, expectedVersion uint64) error

	// Delete hard-deletes a report
	Delete(ctx context.Context, id uint64) error
}

// IssueFilter holds filtering options for listing issues
type IssueFilter struct {
	Scope    policy.Scope
	Status   *models.IssueStatus
	Priority *models.IssuePriority
	Page     utils.PaginationParams
}

// IssueRepository defines the interface for issue data access
type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id uint64) (*models.Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]models.Issue, int64, error)
	Update(ctx context.Context, issue *models.Issue, expectedVersion uint64) error
	Delete(ctx context.Context, id uint64) error
}

// DocumentRepository stores metadata for uploaded checklists and materials.
type DocumentRepository interface {
	CreateChecklist(ctx context.Context, checklist *models.Checklist) error
	FindChecklist(ctx context.Context, id uint64) (*models.Checklist, error)
	ListChecklists(ctx context.Context, checklistType *models.ChecklistType) ([]models.Checklist, error)
	DeleteChecklist(ctx context.Context, id uint64) error

	CreateMaterial(ctx context.Context, material *models.Material) error
	FindMaterial(ctx context.Context, id uint64) (*models.Material, error)
	ListMaterials(ctx context.Context, section string) ([]models.Material, error)
	DeleteMaterial(ctx context.Context, id uint64) error
}

// MonthRange is a half-open interval [Start, End).
type MonthRange struct {
	Start time.Time
	End   time.Time
}

// DashboardQuery describes one dashboard read.
type DashboardQuery struct {
	Scope            policy.Scope
	Months           []MonthRange
	ThisMonth        MonthRange
	LastMonth        MonthRange
	LeaderboardLimit int
	HistoryLimit     int
	StaffLimit       int
}

type ReportCounts struct {
	Total     int64
	Completed int64
	Approved  int64
}

type ActivityRow struct {
	UserID      uint64
	DisplayName string
	ReportCount int64
}

type IssueCounts struct {
	Total              int64
	OpenCount          int64
	InvestigatingCount int64
	ResolvedCount      int64
	ClosedCount        int64
}

// DashboardSnapshot is every dashboard figure, read from one transaction.
type DashboardSnapshot struct {
	Reports   ReportCounts
	Monthly   []int64
	ThisMonth int64
	LastMonth int64
	Activity  []ActivityRow
	History   []models.Report
	Staff     []models.User
	Issues    IssueCounts
}

// DashboardRepository reads aggregate figures.
type DashboardRepository interface {
	Snapshot(ctx context.Context, q DashboardQuery) (*DashboardSnapshot, error)
}
