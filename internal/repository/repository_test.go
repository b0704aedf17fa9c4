package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/policy"
	"github.com/yukikurage/report-tracker-api/internal/testutil"
	"github.com/yukikurage/report-tracker-api/internal/utils"
	"gorm.io/gorm"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUserRepository_DeleteDetachesAndCascades(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com", models.RoleUser)
	testutil.CreateReport(t, db, alice.ID, day(2024, 6, 1), models.ReportStatusDraft)
	testutil.CreateReport(t, db, bob.ID, day(2024, 6, 1), models.ReportStatusDraft)

	issue := &models.Issue{Title: "Pump leak", Status: models.IssueStatusOpen, Priority: models.IssuePriorityHigh, CreatedByID: &alice.ID, Version: 1}
	require.NoError(t, db.Create(issue).Error)
	material := &models.Material{Section: "Boiler", Title: "Manual", FileName: "m.pdf", Path: "/uploads/m.pdf", UploadedByID: &alice.ID}
	require.NoError(t, db.Create(material).Error)

	require.NoError(t, repo.Delete(ctx, alice.ID))

	var reports int64
	require.NoError(t, db.Model(&models.Report{}).Count(&reports).Error)
	assert.Equal(t, int64(1), reports, "only bob's report remains")

	var reloaded models.Issue
	require.NoError(t, db.First(&reloaded, issue.ID).Error)
	assert.Nil(t, reloaded.CreatedByID)

	var reloadedMaterial models.Material
	require.NoError(t, db.First(&reloadedMaterial, material.ID).Error)
	assert.Nil(t, reloadedMaterial.UploadedByID)

	assert.ErrorIs(t, repo.Delete(ctx, alice.ID), gorm.ErrRecordNotFound)
}

func TestUserRepository_FindAndList(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	testutil.CreateUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com", models.RoleAdmin)

	found, err := repo.FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	users, total, err := repo.List(ctx, utils.NewPaginationParams(1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 1)
	assert.Equal(t, bob.ID, users[0].ID)
}

func TestReportRepository_ListIsScoped(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewReportRepository(db)

	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com", models.RoleUser)
	older := testutil.CreateReport(t, db, alice.ID, day(2024, 6, 1), models.ReportStatusDraft)
	newer := testutil.CreateReport(t, db, alice.ID, day(2024, 6, 2), models.ReportStatusCompleted)
	testutil.CreateReport(t, db, bob.ID, day(2024, 6, 3), models.ReportStatusDraft)

	page := utils.NewPaginationParams(1, 50)

	own, total, err := repo.List(ctx, ReportFilter{Scope: policy.ScopeFor(policy.Actor{ID: alice.ID, Role: models.RoleUser}), Page: page})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, own, 2)
	assert.Equal(t, newer.ID, own[0].ID)
	assert.Equal(t, older.ID, own[1].ID)
	for _, r := range own {
		assert.Equal(t, alice.ID, r.UserID)
		assert.Equal(t, "Alice", r.AuthorName())
	}

	all, total, err := repo.List(ctx, ReportFilter{Scope: policy.Scope{}, Page: page})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	status := models.ReportStatusCompleted
	completed, _, err := repo.List(ctx, ReportFilter{Scope: policy.Scope{}, Status: &status, Page: page})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, newer.ID, completed[0].ID)
}

func TestReportRepository_UpdateCompareAndSet(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewReportRepository(db)

	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	created := testutil.CreateReport(t, db, alice.ID, day(2024, 6, 1), models.ReportStatusDraft)

	first, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)

	first.Content = "edited"
	require.NoError(t, repo.Update(ctx, first, first.Version))
	assert.Equal(t, uint64(2), first.Version)

	second.Content = "lost update"
	assert.ErrorIs(t, repo.Update(ctx, second, second.Version), ErrStaleVersion)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Content)
}

func TestIssueRepository_ScopeSkipsOrphans(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewIssueRepository(db)

	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	mine := &models.Issue{Title: "Mine", Status: models.IssueStatusOpen, Priority: models.IssuePriorityLow, CreatedByID: &alice.ID, Version: 1}
	orphan := &models.Issue{Title: "Orphan", Status: models.IssueStatusClosed, Priority: models.IssuePriorityMedium, Version: 1}
	require.NoError(t, repo.Create(ctx, mine))
	require.NoError(t, repo.Create(ctx, orphan))

	page := utils.NewPaginationParams(1, 50)
	own, total, err := repo.List(ctx, IssueFilter{Scope: policy.ScopeFor(policy.Actor{ID: alice.ID, Role: models.RoleUser}), Page: page})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, own, 1)
	assert.Equal(t, "Alice", own[0].CreatorName())

	closed := models.IssueStatusClosed
	all, _, err := repo.List(ctx, IssueFilter{Status: &closed, Page: page})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, orphan.ID, all[0].ID)
	assert.Equal(t, "", all[0].CreatorName())
}

func TestDocumentRepository(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewDocumentRepository(db)

	daily := &models.Checklist{Type: models.ChecklistDaily, FileName: "d.pdf", Path: "/uploads/d.pdf"}
	weekly := &models.Checklist{Type: models.ChecklistWeekly, FileName: "w.pdf", Path: "/uploads/w.pdf"}
	require.NoError(t, repo.CreateChecklist(ctx, daily))
	require.NoError(t, repo.CreateChecklist(ctx, weekly))

	kind := models.ChecklistDaily
	found, err := repo.ListChecklists(ctx, &kind)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, daily.ID, found[0].ID)

	require.NoError(t, repo.DeleteChecklist(ctx, daily.ID))
	assert.ErrorIs(t, repo.DeleteChecklist(ctx, daily.ID), gorm.ErrRecordNotFound)

	material := &models.Material{Section: "WWTP", Title: "SOP", FileName: "sop.pdf", Path: "/uploads/materials/sop.pdf"}
	require.NoError(t, repo.CreateMaterial(ctx, material))
	materials, err := repo.ListMaterials(ctx, "Boiler")
	require.NoError(t, err)
	assert.Empty(t, materials)
	materials, err = repo.ListMaterials(ctx, "")
	require.NoError(t, err)
	assert.Len(t, materials, 1)
}

func TestDashboardRepository_Snapshot(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewDashboardRepository(db)

	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com", models.RoleUser)

	testutil.CreateReport(t, db, alice.ID, day(2024, 6, 1), models.ReportStatusDraft)
	testutil.CreateReport(t, db, alice.ID, day(2024, 6, 10), models.ReportStatusCompleted)
	testutil.CreateReport(t, db, alice.ID, day(2024, 5, 31), models.ReportStatusApproved)
	testutil.CreateReport(t, db, bob.ID, day(2024, 6, 2), models.ReportStatusApproved)
	testutil.CreateReport(t, db, bob.ID, day(2023, 1, 1), models.ReportStatusDraft)

	require.NoError(t, db.Create(&models.Issue{Title: "a", Status: models.IssueStatusOpen, Priority: models.IssuePriorityLow, Version: 1}).Error)
	require.NoError(t, db.Create(&models.Issue{Title: "b", Status: models.IssueStatusInvestigating, Priority: models.IssuePriorityLow, Version: 1}).Error)
	require.NoError(t, db.Create(&models.Issue{Title: "c", Status: models.IssueStatusClosed, Priority: models.IssuePriorityLow, Version: 1}).Error)

	months := make([]MonthRange, 12)
	for i := range months {
		start := day(2023, 7, 1).AddDate(0, i, 0)
		months[i] = MonthRange{Start: start, End: start.AddDate(0, 1, 0)}
	}
	q := DashboardQuery{
		Months:           months,
		ThisMonth:        months[11],
		LastMonth:        months[10],
		LeaderboardLimit: 10,
		HistoryLimit:     20,
		StaffLimit:       20,
	}

	snap, err := repo.Snapshot(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, ReportCounts{Total: 5, Completed: 1, Approved: 2}, snap.Reports)
	require.Len(t, snap.Monthly, 12)
	assert.Equal(t, int64(1), snap.Monthly[10], "May")
	assert.Equal(t, int64(3), snap.Monthly[11], "June")
	assert.Equal(t, int64(0), snap.Monthly[0])
	assert.Equal(t, int64(3), snap.ThisMonth)
	assert.Equal(t, int64(1), snap.LastMonth)

	require.Len(t, snap.Activity, 2)
	assert.Equal(t, ActivityRow{UserID: alice.ID, DisplayName: "Alice", ReportCount: 3}, snap.Activity[0])
	assert.Equal(t, ActivityRow{UserID: bob.ID, DisplayName: "Bob", ReportCount: 2}, snap.Activity[1])

	require.Len(t, snap.History, 5)
	assert.Equal(t, day(2024, 6, 10), snap.History[0].Date.UTC())
	assert.Equal(t, "Alice", snap.History[0].AuthorName())

	require.Len(t, snap.Staff, 2)
	assert.Equal(t, IssueCounts{Total: 3, OpenCount: 1, InvestigatingCount: 1, ClosedCount: 1}, snap.Issues)

	q.Scope = policy.ScopeFor(policy.Actor{ID: bob.ID, Role: models.RoleUser})
	own, err := repo.Snapshot(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, ReportCounts{Total: 2, Approved: 1}, own.Reports)
	assert.Equal(t, int64(1), own.ThisMonth)
	require.Len(t, own.Activity, 1)
	assert.Equal(t, bob.ID, own.Activity[0].UserID)
	assert.Len(t, own.History, 2)
	assert.Len(t, own.Staff, 2, "staff roster is global")
	assert.Equal(t, int64(3), own.Issues.Total, "issue summary is global")
}
