package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the list and dashboard queries rely on.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// History panel and report lists
		{"reports", "idx_reports_date_id", "date, id"},
		// Scoped dashboard counts
		{"reports", "idx_reports_user_date", "user_id, date"},
		{"reports", "idx_reports_user_status", "user_id, status"},

		{"issues", "idx_issues_creator_status", "created_by_id, status"},

		{"checklists", "idx_checklists_type_uploaded", "type, uploaded_at"},
		{"materials", "idx_materials_section_uploaded", "section, uploaded_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("Index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("Created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}
