package database

import (
	"github.com/yukikurage/report-tracker-api/internal/policy"
	"github.com/yukikurage/report-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OwnedBy restricts a query to rows whose ownerColumn matches the scope.
// Global scopes leave the query untouched.
func OwnedBy(scope policy.Scope, ownerColumn string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.Global() {
			return db
		}
		return db.Where(ownerColumn+" = ?", *scope.OwnerID)
	}
}
