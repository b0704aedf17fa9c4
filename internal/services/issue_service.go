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

// IssueService owns issue status and priority. Any status may follow any other.
type IssueService struct {
	issueRepo repository.IssueRepository
	now       func() time.Time
}

func NewIssueService(issueRepo repository.IssueRepository) *IssueService {
	return &IssueService{issueRepo: issueRepo, now: time.Now}
}

func (s *IssueService) WithClock(now func() time.Time) *IssueService {
	s.now = now
	return s
}

type CreateIssueInput struct {
	Title       string
	Description string
	// Priority is coerced: anything unrecognised becomes medium.
	Priority string
}

func (s *IssueService) Create(ctx context.Context, actor *policy.Actor, input CreateIssueInput) (*models.Issue, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required")
	}

	now := s.now()
	creator := actor.ID
	issue := &models.Issue{
		Title:       title,
		Description: input.Description,
		Status:      models.IssueStatusOpen,
		Priority:    models.NormalizePriority(input.Priority),
		CreatedByID: &creator,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, storageFailure("create issue", err)
	}
	metrics.IssueWrite("create")

	created, err := s.issueRepo.FindByID(ctx, issue.ID)
	if err != nil {
		return nil, storageFailure("read back issue", err)
	}
	return created, nil
}

func (s *IssueService) Get(ctx context.Context, actor *policy.Actor, id uint64) (*models.Issue, error) {
	return s.authorized(ctx, actor, id, policy.ActionReadIssue)
}

type ListIssuesInput struct {
	Status   string
	Priority string
	Page     utils.PaginationParams
}

func (s *IssueService) List(ctx context.Context, actor *policy.Actor, input ListIssuesInput) ([]models.Issue, int64, error) {
	if actor == nil {
		return nil, 0, ErrUnauthenticated
	}

	filter := repository.IssueFilter{
		Scope: policy.ScopeFor(*actor),
		Page:  input.Page,
	}
	if input.Status != "" {
		status, ok := models.ParseIssueStatus(input.Status)
		if !ok {
			return nil, 0, validationError("unknown issue status %q", input.Status)
		}
		filter.Status = &status
	}
	if input.Priority != "" {
		priority, ok := models.ParseIssuePriority(input.Priority)
		if !ok {
			return nil, 0, validationError("unknown issue priority %q", input.Priority)
		}
		filter.Priority = &priority
	}

	issues, total, err := s.issueRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, storageFailure("list issues", err)
	}
	return issues, total, nil
}

func (s *IssueService) UpdateStatus(ctx context.Context, actor *policy.Actor, id uint64, status string) (*models.Issue, error) {
	issue, err := s.authorized(ctx, actor, id, policy.ActionUpdateIssueStatus)
	if err != nil {
		return nil, err
	}

	next, ok := models.ParseIssueStatus(status)
	if !ok {
		return nil, validationError("status must be one of open, investigating, resolved, closed")
	}
	issue.Status = next

	if err := s.save(ctx, issue); err != nil {
		return nil, err
	}
	metrics.IssueWrite("status")
	return issue, nil
}

// UpdateIssueInput is a partial update: absent keys keep their value, an
// explicit empty description clears it.
type UpdateIssueInput struct {
	Title       patch.Field[string]
	Description patch.Field[string]
	Status      patch.Field[string]
	Priority    patch.Field[string]
}

func (s *IssueService) UpdateFields(ctx context.Context, actor *policy.Actor, id uint64, input UpdateIssueInput) (*models.Issue, error) {
	issue, err := s.authorized(ctx, actor, id, policy.ActionEditIssue)
	if err != nil {
		return nil, err
	}

	if input.Title.Set {
		title := strings.TrimSpace(input.Title.Value)
		if title == "" {
			return nil, validationError("title cannot be empty")
		}
		issue.Title = title
	}
	if input.Description.Set {
		issue.Description = input.Description.Value
	}
	if input.Status.Set {
		status, ok := models.ParseIssueStatus(input.Status.Value)
		if !ok {
			return nil, validationError("status must be one of open, investigating, resolved, closed")
		}
		issue.Status = status
	}
	if input.Priority.Set {
		issue.Priority = models.NormalizePriority(input.Priority.Value)
	}

	if err := s.save(ctx, issue); err != nil {
		return nil, err
	}
	metrics.IssueWrite("fields")
	return issue, nil
}

func (s *IssueService) Delete(ctx context.Context, actor *policy.Actor, id uint64) error {
	if _, err := s.authorized(ctx, actor, id, policy.ActionDeleteIssue); err != nil {
		return err
	}
	if err := s.issueRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return storageFailure("delete issue", err)
	}
	metrics.IssueWrite("delete")
	return nil
}

func (s *IssueService) save(ctx context.Context, issue *models.Issue) error {
	issue.UpdatedAt = s.now()
	err := s.issueRepo.Update(ctx, issue, issue.Version)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStaleVersion):
		metrics.UpdateConflict("issue")
		return ErrConflict
	default:
		return storageFailure("update issue", err)
	}
}

func (s *IssueService) authorized(ctx context.Context, actor *policy.Actor, id uint64, action policy.Action) (*models.Issue, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	issue, err := s.issueRepo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageFailure("find issue", err)
	}

	var owner *uint64
	if issue != nil {
		owner = issue.CreatedByID
	}
	if err := policy.Authorize(actor, issue != nil, owner, action); err != nil {
		return nil, err
	}
	return issue, nil
}
