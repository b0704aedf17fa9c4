package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yukikurage/report-tracker-api/internal/metrics"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/patch"
	"github.com/yukikurage/report-tracker-api/internal/policy"
	"github.com/yukikurage/report-tracker-api/internal/repository"
	"github.com/yukikurage/report-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// ReportService owns the report lifecycle: draft → selesai → disetujui.
// Status only changes through Complete and Approve.
type ReportService struct {
	reportRepo repository.ReportRepository
	suggester  IssueSuggester
	loc        *time.Location
	now        func() time.Time
}

func NewReportService(reportRepo repository.ReportRepository, loc *time.Location, suggester IssueSuggester) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		reportRepo: reportRepo,
		suggester:  suggester,
		loc:        loc,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

type CreateReportInput struct {
	// Date defaults to today when nil.
	Date    *ReportDate
	Content string
}

// Create inserts a draft owned by the actor and reads it back with its author.
func (s *ReportService) Create(ctx context.Context, actor *policy.Actor, input CreateReportInput) (*models.Report, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, validationError("content is required")
	}

	now := s.now()
	date := calendarDate(now, s.loc)
	if input.Date != nil && !input.Date.IsZero() {
		date = input.Date.in(s.loc)
	}

	report := &models.Report{
		UserID:    actor.ID,
		Date:      date,
		Content:   content,
		Status:    models.ReportStatusDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, storageFailure("create report", err)
	}
	metrics.ReportTransition("create")

	// The row is committed; a failed read-back is still reported as a failure.
	created, err := s.reportRepo.FindByID(ctx, report.ID)
	if err != nil {
		return nil, storageFailure("read back report", err)
	}
	return created, nil
}

func (s *ReportService) Get(ctx context.Context, actor *policy.Actor, id uint64) (*models.Report, error) {
	return s.authorized(ctx, actor, id, policy.ActionReadReport)
}

type ListReportsInput struct {
	Status string
	// UserID narrows the list for admins; ignored for everyone else.
	UserID *uint64
	Page   utils.PaginationParams
}

func (s *ReportService) List(ctx context.Context, actor *policy.Actor, input ListReportsInput) ([]models.Report, int64, error) {
	if actor == nil {
		return nil, 0, ErrUnauthenticated
	}

	filter := repository.ReportFilter{
		Scope: policy.ScopeFor(*actor),
		Page:  input.Page,
	}
	if input.Status != "" {
		status, ok := models.ParseReportStatus(input.Status)
		if !ok {
			return nil, 0, validationError("unknown report status %q", input.Status)
		}
		filter.Status = &status
	}
	if actor.IsAdmin() {
		filter.UserID = input.UserID
	}

	reports, total, err := s.reportRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, storageFailure("list reports", err)
	}
	return reports, total, nil
}

// UpdateReportInput is a partial edit. Status may only repeat the current
// status; changing it is done with Complete or Approve.
type UpdateReportInput struct {
	Date    patch.Field[ReportDate]
	Content patch.Field[string]
	Status  patch.Field[string]
}

func (s *ReportService) Update(ctx context.Context, actor *policy.Actor, id uint64, input UpdateReportInput) (*models.Report, error) {
	report, err := s.authorized(ctx, actor, id, policy.ActionEditReport)
	if err != nil {
		return nil, err
	}
	if report.Locked() {
		return nil, ErrInvalidTransition
	}

	if input.Status.Set {
		if status, _ := models.ParseReportStatus(input.Status.Value); status != report.Status {
			return nil, validationError("status cannot be changed by editing; use complete or approve")
		}
	}
	if input.Content.Set {
		content := strings.TrimSpace(input.Content.Value)
		if content == "" {
			return nil, validationError("content cannot be empty")
		}
		report.Content = content
	}
	if input.Date.Set {
		if input.Date.Value.IsZero() {
			return nil, validationError("date cannot be empty")
		}
		report.Date = input.Date.Value.in(s.loc)
	}

	report.UpdatedAt = s.now()
	if err := s.save(ctx, report); err != nil {
		return nil, err
	}
	metrics.ReportTransition("edit")
	return report, nil
}

// Complete moves a draft to selesai. The owner or an admin may do this once.
func (s *ReportService) Complete(ctx context.Context, actor *policy.Actor, id uint64) (*models.Report, error) {
	return s.transition(ctx, actor, id, models.CompleteReport, policy.ActionCompleteReport)
}

// Approve moves a completed report to disetujui. Admin only.
func (s *ReportService) Approve(ctx context.Context, actor *policy.Actor, id uint64) (*models.Report, error) {
	return s.transition(ctx, actor, id, models.ApproveReport, policy.ActionApproveReport)
}

func (s *ReportService) Delete(ctx context.Context, actor *policy.Actor, id uint64) error {
	if _, err := s.authorized(ctx, actor, id, policy.ActionDeleteReport); err != nil {
		return err
	}
	if err := s.reportRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return storageFailure("delete report", err)
	}
	metrics.ReportTransition("delete")
	return nil
}

func (s *ReportService) transition(ctx context.Context, actor *policy.Actor, id uint64, t models.ReportTransition, action policy.Action) (*models.Report, error) {
	report, err := s.authorized(ctx, actor, id, action)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := report.Apply(t, now); err != nil {
		return nil, ErrInvalidTransition
	}
	report.UpdatedAt = now

	if err := s.save(ctx, report); err != nil {
		return nil, err
	}
	metrics.ReportTransition(t.Name())
	return report, nil
}

func (s *ReportService) save(ctx context.Context, report *models.Report) error {
	err := s.reportRepo.Update(ctx, report, report.Version)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStaleVersion):
		metrics.UpdateConflict("report")
		return ErrConflict
	default:
		return storageFailure("update report", err)
	}
}

// authorized loads the report and checks the policy, reporting absence before denial.
func (s *ReportService) authorized(ctx context.Context, actor *policy.Actor, id uint64, action policy.Action) (*models.Report, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	report, err := s.reportRepo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageFailure("find report", err)
	}

	var owner *uint64
	if report != nil {
		owner = &report.UserID
	}
	if err := policy.Authorize(actor, report != nil, owner, action); err != nil {
		return nil, err
	}
	return report, nil
}
