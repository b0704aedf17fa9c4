package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/patch"
	"github.com/yukikurage/report-tracker-api/internal/policy"
	"github.com/yukikurage/report-tracker-api/internal/repository"
	"github.com/yukikurage/report-tracker-api/internal/testutil"
	"github.com/yukikurage/report-tracker-api/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestReportLifecycle_CompleteThenApprove(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()

	report, err := svc.Create(ctx, actorOf(f.alice), CreateReportInput{Content: "test"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusDraft, report.Status)
	assert.Equal(t, "Alice", report.AuthorName())
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), report.Date.UTC())

	report, err = svc.Complete(ctx, actorOf(f.alice), report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusCompleted, report.Status)
	require.NotNil(t, report.CompletedAt)
	assert.Nil(t, report.ApprovedAt)

	_, err = svc.Approve(ctx, actorOf(f.bob), report.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	report, err = svc.Approve(ctx, actorOf(f.admin), report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusApproved, report.Status)
	require.NotNil(t, report.ApprovedAt)
	require.NotNil(t, report.CompletedAt)
}

func TestReportLifecycle_IllegalTransitions(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()

	report, err := svc.Create(ctx, actorOf(f.alice), CreateReportInput{Content: "shift notes"})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, actorOf(f.admin), report.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "a draft cannot be approved")

	_, err = svc.Complete(ctx, actorOf(f.alice), report.ID)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, actorOf(f.alice), report.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "completing twice")

	_, err = svc.Approve(ctx, actorOf(f.admin), report.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, actorOf(f.admin), report.ID, UpdateReportInput{Content: patch.Some("late edit")})
	assert.ErrorIs(t, err, ErrInvalidTransition, "approved reports are locked")
}

func TestReportService_NotFoundBeforeForbidden(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()

	_, err := svc.Approve(ctx, actorOf(f.bob), 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	report, err := svc.Create(ctx, actorOf(f.alice), CreateReportInput{Content: "mine"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, actorOf(f.bob), report.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, actorOf(f.bob), report.ID), ErrForbidden)

	_, err = svc.Get(ctx, nil, report.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestReportService_Update(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()

	report, err := svc.Create(ctx, actorOf(f.alice), CreateReportInput{Content: "first"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, actorOf(f.alice), report.ID, UpdateReportInput{Status: patch.Some("disetujui")})
	assert.ErrorIs(t, err, ErrValidation, "status changes go through transitions")

	_, err = svc.Update(ctx, actorOf(f.alice), report.ID, UpdateReportInput{Content: patch.Some("  ")})
	assert.ErrorIs(t, err, ErrValidation)

	newDate := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC) // 2 June in Jakarta
	updated, err := svc.Update(ctx, actorOf(f.alice), report.ID, UpdateReportInput{
		Content: patch.Some("second"),
		Date:    patch.Some(At(newDate)),
		Status:  patch.Some("draft"),
	})
	require.NoError(t, err)
	assert.Equal(t, "second", updated.Content)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), updated.Date.UTC())
	assert.Equal(t, uint64(2), updated.Version)

	untouched, err := svc.Update(ctx, actorOf(f.admin), report.ID, UpdateReportInput{})
	require.NoError(t, err)
	assert.Equal(t, "second", untouched.Content)
}

func TestReportService_DatesAcrossZones(t *testing.T) {
	submitted, err := time.Parse("2006-01-02", "2026-10-01")
	require.NoError(t, err)
	// 30 Sep 22:00 in New York, 1 Oct 09:00 in Jakarta.
	instant := time.Date(2026, 10, 1, 2, 0, 0, 0, time.UTC)

	oct1 := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	sep30 := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		loc  *time.Location
		date ReportDate
		want time.Time
	}{
		{name: "day behind UTC", loc: newYork, date: Day(submitted), want: oct1},
		{name: "day ahead of UTC", loc: jakarta, date: Day(submitted), want: oct1},
		{name: "day in UTC", loc: time.UTC, date: Day(submitted), want: oct1},
		{name: "instant behind UTC", loc: newYork, date: At(instant), want: sep30},
		{name: "instant ahead of UTC", loc: jakarta, date: At(instant), want: oct1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			svc := NewReportService(repository.NewReportRepository(f.db), tt.loc, nil).WithClock(testutil.FixedClock(f.now))

			date := tt.date
			created, err := svc.Create(ctx, actorOf(f.alice), CreateReportInput{Content: "x", Date: &date})
			require.NoError(t, err)
			assert.Equal(t, tt.want, created.Date.UTC())

			other, err := svc.Create(ctx, actorOf(f.alice), CreateReportInput{Content: "y"})
			require.NoError(t, err)
			updated, err := svc.Update(ctx, actorOf(f.alice), other.ID, UpdateReportInput{Date: patch.Some(tt.date)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, updated.Date.UTC())
		})
	}
}

func TestReportService_DefaultDateIsTodayInZone(t *testing.T) {
	// 02:00 UTC on 15 June is still 14 June in New York.
	now := time.Date(2024, 6, 15, 2, 0, 0, 0, time.UTC)

	tests := []struct {
		loc  *time.Location
		want time.Time
	}{
		{loc: newYork, want: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)},
		{loc: jakarta, want: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.loc.String(), func(t *testing.T) {
			f := newFixture(t)
			svc := NewReportService(repository.NewReportRepository(f.db), tt.loc, nil).WithClock(testutil.FixedClock(now))

			report, err := svc.Create(context.Background(), actorOf(f.alice), CreateReportInput{Content: "x"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Date.UTC())
		})
	}
}

func TestReportService_UpdateAcceptsCurrentStatusInAnyCase(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()

	report, err := svc.Create(ctx, actorOf(f.alice), CreateReportInput{Content: "x"})
	require.NoError(t, err)

	for _, status := range []string{"Draft", " DRAFT ", "draft"} {
		_, err := svc.Update(ctx, actorOf(f.alice), report.ID, UpdateReportInput{Status: patch.Some(status)})
		assert.NoError(t, err, status)
	}

	_, err = svc.Update(ctx, actorOf(f.alice), report.ID, UpdateReportInput{Status: patch.Some("Selesai")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReportService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()

	_, err := svc.Create(context.Background(), actorOf(f.alice), CreateReportInput{Content: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), nil, CreateReportInput{Content: "x"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestReportService_ListScoping(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()

	for _, u := range []*models.User{f.alice, f.alice, f.bob} {
		_, err := svc.Create(ctx, actorOf(u), CreateReportInput{Content: "daily"})
		require.NoError(t, err)
	}
	page := utils.NewPaginationParams(1, 50)

	own, total, err := svc.List(ctx, actorOf(f.bob), ListReportsInput{Page: page, UserID: &f.alice.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "non-admins cannot widen their scope")
	for _, r := range own {
		assert.Equal(t, f.bob.ID, r.UserID)
	}

	all, total, err := svc.List(ctx, actorOf(f.admin), ListReportsInput{Page: page})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	filtered, _, err := svc.List(ctx, actorOf(f.admin), ListReportsInput{Page: page, UserID: &f.alice.ID})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	_, _, err = svc.List(ctx, actorOf(f.admin), ListReportsInput{Page: page, Status: "bogus"})
	assert.ErrorIs(t, err, ErrValidation)
}

type staleReportRepo struct {
	repository.ReportRepository
}

func (staleReportRepo) Update(context.Context, *models.Report, uint64) error {
	return repository.ErrStaleVersion
}

func TestReportService_ConcurrentUpdateConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.reportService().Create(ctx, actorOf(f.alice), CreateReportInput{Content: "x"})
	require.NoError(t, err)

	svc := NewReportService(staleReportRepo{repository.NewReportRepository(f.db)}, jakarta, nil)
	_, err = svc.Complete(ctx, actorOf(f.alice), report.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReportService_FailedReadBackIsStorageFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO "reports"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT \* FROM "reports"`).WillReturnError(errors.New("connection reset by peer"))

	svc := NewReportService(repository.NewReportRepository(db), time.UTC, nil)
	_, err = svc.Create(context.Background(), &policy.Actor{ID: 1, Role: models.RoleUser}, CreateReportInput{Content: "x"})

	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fakeSuggester struct {
	text string
}

func (f *fakeSuggester) SuggestIssues(_ context.Context, text string) ([]SuggestedIssue, error) {
	f.text = text
	return []SuggestedIssue{{Title: "Pump vibration", Priority: models.IssuePriorityHigh}}, nil
}

func TestReportService_SuggestIssues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.reportService().Create(ctx, actorOf(f.alice), CreateReportInput{Content: "Pump 2 vibrating"})
	require.NoError(t, err)

	_, err = f.reportService().SuggestIssues(ctx, actorOf(f.alice), report.ID)
	assert.ErrorIs(t, err, ErrAIUnavailable)

	suggester := &fakeSuggester{}
	svc := NewReportService(repository.NewReportRepository(f.db), jakarta, suggester)

	_, err = svc.SuggestIssues(ctx, actorOf(f.bob), report.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	suggestions, err := svc.SuggestIssues(ctx, actorOf(f.alice), report.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Pump 2 vibrating", suggester.text)
}
