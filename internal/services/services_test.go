package services

import (
	"testing"
	"time"

	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/policy"
	"github.com/yukikurage/report-tracker-api/internal/repository"
	"github.com/yukikurage/report-tracker-api/internal/testutil"
	"gorm.io/gorm"
)

var (
	jakarta = mustLoad("Asia/Jakarta")
	newYork = mustLoad("America/New_York")
)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type fixture struct {
	db    *gorm.DB
	admin *models.User
	alice *models.User
	bob   *models.User
	now   time.Time
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	return fixture{
		db:    db,
		admin: testutil.CreateUser(t, db, "Admin", "admin@example.com", models.RoleAdmin),
		alice: testutil.CreateUser(t, db, "Alice", "alice@example.com", models.RoleUser),
		bob:   testutil.CreateUser(t, db, "Bob", "bob@example.com", models.RoleUser),
		now:   time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC),
	}
}

func (f fixture) reportService() *ReportService {
	return NewReportService(repository.NewReportRepository(f.db), jakarta, nil).WithClock(testutil.FixedClock(f.now))
}

func (f fixture) issueService() *IssueService {
	return NewIssueService(repository.NewIssueRepository(f.db)).WithClock(testutil.FixedClock(f.now))
}

func actorOf(u *models.User) *policy.Actor {
	return &policy.Actor{ID: u.ID, Role: u.Role}
}
