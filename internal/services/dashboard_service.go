package services

import (
	"context"
	"time"

	"github.com/yukikurage/report-tracker-api/internal/constants"
	"github.com/yukikurage/report-tracker-api/internal/metrics"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/policy"
	"github.com/yukikurage/report-tracker-api/internal/repository"
)

// DashboardService builds the read-only dashboard. Admins see every report,
// everyone else only their own; the staff roster and issue summary are global.
type DashboardService struct {
	dashboardRepo repository.DashboardRepository
	loc           *time.Location
	now           func() time.Time
}

func NewDashboardService(dashboardRepo repository.DashboardRepository, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{dashboardRepo: dashboardRepo, loc: loc, now: time.Now}
}

func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

type MonthCount struct {
	// Label is the short month name, e.g. "Jan".
	Label string
	Start time.Time
	Count int64
}

type Dashboard struct {
	Reports   repository.ReportCounts
	Monthly   []MonthCount
	ThisMonth int64
	LastMonth int64
	Activity  []repository.ActivityRow
	History   []models.Report
	Staff     []models.User
	Issues    repository.IssueCounts
}

func (s *DashboardService) Build(ctx context.Context, actor *policy.Actor) (*Dashboard, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	started := time.Now()

	months := trailingMonths(s.now(), s.loc, constants.DashboardMonths)
	scope := policy.ScopeFor(*actor)
	snap, err := s.dashboardRepo.Snapshot(ctx, repository.DashboardQuery{
		Scope:            scope,
		Months:           months,
		ThisMonth:        months[len(months)-1],
		LastMonth:        months[len(months)-2],
		LeaderboardLimit: constants.LeaderboardLimit,
		HistoryLimit:     constants.RecentHistoryLimit,
		StaffLimit:       constants.StaffRosterLimit,
	})
	if err != nil {
		return nil, storageFailure("build dashboard", err)
	}

	monthly := make([]MonthCount, len(months))
	for i, m := range months {
		monthly[i] = MonthCount{Label: m.Start.Format("Jan"), Start: m.Start}
		if i < len(snap.Monthly) {
			monthly[i].Count = snap.Monthly[i]
		}
	}

	metrics.DashboardBuilt(scope.Global(), time.Since(started).Seconds())

	return &Dashboard{
		Reports:   snap.Reports,
		Monthly:   monthly,
		ThisMonth: snap.ThisMonth,
		LastMonth: snap.LastMonth,
		Activity:  snap.Activity,
		History:   snap.History,
		Staff:     snap.Staff,
		Issues:    snap.Issues,
	}, nil
}
