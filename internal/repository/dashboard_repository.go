package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yukikurage/report-tracker-api/internal/database"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormDashboardRepository is a GORM implementation of DashboardRepository
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &GormDashboardRepository{db: db}
}

// Snapshot runs every dashboard query inside one read transaction so the
// figures agree with each other under concurrent writes.
func (r *GormDashboardRepository) Snapshot(ctx context.Context, q DashboardQuery) (*DashboardSnapshot, error) {
	snap := &DashboardSnapshot{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name string
			run  func(*gorm.DB) error
		}{
			{"report counts", func(tx *gorm.DB) error { return reportCounts(tx, q, &snap.Reports) }},
			{"monthly series", func(tx *gorm.DB) error { return bucketCounts(tx, q, q.Months, &snap.Monthly) }},
			{"month comparison", func(tx *gorm.DB) error {
				var counts []int64
				if err := bucketCounts(tx, q, []MonthRange{q.ThisMonth, q.LastMonth}, &counts); err != nil {
					return err
				}
				snap.ThisMonth, snap.LastMonth = counts[0], counts[1]
				return nil
			}},
			{"activity", func(tx *gorm.DB) error { return activity(tx, q, &snap.Activity) }},
			{"history", func(tx *gorm.DB) error {
				return tx.Preload("User").
					Scopes(database.OwnedBy(q.Scope, "user_id")).
					Order("date DESC, id DESC").
					Limit(q.HistoryLimit).
					Find(&snap.History).Error
			}},
			{"staff", func(tx *gorm.DB) error {
				return tx.Order("created_at DESC, id DESC").Limit(q.StaffLimit).Find(&snap.Staff).Error
			}},
			{"issue counts", func(tx *gorm.DB) error { return issueCounts(tx, &snap.Issues) }},
		}

		for _, step := range steps {
			if err := step.run(tx); err != nil {
				return fmt.Errorf("dashboard %s: %w", step.name, err)
			}
		}
		return nil
	}, snapshotTxOptions(r.db)...)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// snapshotTxOptions asks for a repeatable-read snapshot where the driver
// supports it. SQLite transactions are already serializable.
func snapshotTxOptions(db *gorm.DB) []*sql.TxOptions {
	if db.Dialector.Name() == "sqlite" {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
}

func reportCounts(tx *gorm.DB, q DashboardQuery, out *ReportCounts) error {
	return tx.Model(&models.Report{}).
		Scopes(database.OwnedBy(q.Scope, "user_id")).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS approved",
			models.ReportStatusCompleted, models.ReportStatusApproved,
		).
		Scan(out).Error
}

// bucketCounts counts in-scope reports per range in a single row. Every range
// yields a column, so empty months come back as 0 instead of going missing.
func bucketCounts(tx *gorm.DB, q DashboardQuery, ranges []MonthRange, out *[]int64) error {
	exprs := make([]string, len(ranges))
	args := make([]any, 0, 2*len(ranges))
	for i, m := range ranges {
		exprs[i] = fmt.Sprintf("COALESCE(SUM(CASE WHEN date >= ? AND date < ? THEN 1 ELSE 0 END), 0) AS b%d", i)
		args = append(args, m.Start, m.End)
	}

	rows, err := tx.Model(&models.Report{}).
		Scopes(database.OwnedBy(q.Scope, "user_id")).
		Select(strings.Join(exprs, ", "), args...).
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	counts := make([]int64, len(ranges))
	if rows.Next() {
		dest := make([]any, len(counts))
		for i := range counts {
			dest[i] = &counts[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	*out = counts
	return nil
}

func activity(tx *gorm.DB, q DashboardQuery, out *[]ActivityRow) error {
	return tx.Table("reports").
		Select("users.id AS user_id, users.display_name AS display_name, COUNT(reports.id) AS report_count").
		Joins("JOIN users ON users.id = reports.user_id").
		Scopes(database.OwnedBy(q.Scope, "reports.user_id")).
		Group("users.id, users.display_name").
		Order("report_count DESC, users.display_name ASC, users.id ASC").
		Limit(q.LeaderboardLimit).
		Scan(out).Error
}

func issueCounts(tx *gorm.DB, out *IssueCounts) error {
	return tx.Model(&models.Issue{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS open_count, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS investigating_count, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS resolved_count, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS closed_count",
			models.IssueStatusOpen, models.IssueStatusInvestigating,
			models.IssueStatusResolved, models.IssueStatusClosed,
		).
		Scan(out).Error
}
