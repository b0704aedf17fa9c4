package repository

import (
	"context"

	"github.com/yukikurage/report-tracker-api/internal/database"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormIssueRepository is a GORM implementation of IssueRepository
type GormIssueRepository struct {
	db *gorm.DB
}

// NewIssueRepository creates a new IssueRepository
func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &GormIssueRepository{db: db}
}

func (r *GormIssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	return r.db.WithContext(ctx).Omit("CreatedBy").Create(issue).Error
}

func (r *GormIssueRepository) FindByID(ctx context.Context, id uint64) (*models.Issue, error) {
	var issue models.Issue
	if err := r.db.WithContext(ctx).Preload("CreatedBy").First(&issue, id).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

// List returns issues newest first. Non-admin scopes only match issues whose
// creator still exists and is the caller.
func (r *GormIssueRepository) List(ctx context.Context, filter IssueFilter) ([]models.Issue, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Scopes(database.OwnedBy(filter.Scope, "created_by_id"))

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var issues []models.Issue
	if err := query.
		Preload("CreatedBy").
		Order("created_at DESC, id DESC").
		Scopes(database.Paginate(filter.Page)).
		Find(&issues).Error; err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

// Update is a compare-and-set on version, like reports.
func (r *GormIssueRepository) Update(ctx context.Context, issue *models.Issue, expectedVersion uint64) error {
	next := expectedVersion + 1
	result := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("id = ? AND version = ?", issue.ID, expectedVersion).
		Updates(map[string]any{
			"title":       issue.Title,
			"description": issue.Description,
			"status":      issue.Status,
			"priority":    issue.Priority,
			"version":     next,
			"updated_at":  issue.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	issue.Version = next
	return nil
}

func (r *GormIssueRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Issue{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
