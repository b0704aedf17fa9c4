package repository

import (
	"context"

	"github.com/yukikurage/report-tracker-api/internal/database"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormReportRepository is a GORM implementation of ReportRepository
type GormReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &GormReportRepository{db: db}
}

func (r *GormReportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Omit("User").Create(report).Error
}

func (r *GormReportRepository) FindByID(ctx context.Context, id uint64) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).Preload("User").First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// List applies the owner scope in SQL so other users' rows never leave the database.
func (r *GormReportRepository) List(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Scopes(database.OwnedBy(filter.Scope, "user_id"))

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	if err := query.
		Preload("User").
		Order("date DESC, id DESC").
		Scopes(database.Paginate(filter.Page)).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// Update is a compare-and-set on version. Every write bumps the version, so a
// concurrent transition or edit makes the other writer fail with ErrStaleVersion.
func (r *GormReportRepository) Update(ctx context.Context, report *models.Report, expectedVersion uint64) error {
	next := expectedVersion + 1
	result := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ? AND version = ?", report.ID, expectedVersion).
		Updates(map[string]any{
			"date":         report.Date,
			"content":      report.Content,
			"status":       report.Status,
			"completed_at": report.CompletedAt,
			"approved_at":  report.ApprovedAt,
			"version":      next,
			"updated_at":   report.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	report.Version = next
	return nil
}

func (r *GormReportRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Report{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
