package services

import (
	"time"

	"github.com/yukikurage/report-tracker-api/internal/repository"
)

// calendarDate returns the calendar day of t as seen in loc, stored as UTC
// midnight. Report dates are days, not instants.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ReportDate is a requested report date. A bare calendar day is kept as
// given; an Instant is read as the day it falls on in the configured zone.
type ReportDate struct {
	time.Time
	Instant bool
}

// Day marks t's year, month and day as the report date.
func Day(t time.Time) ReportDate {
	return ReportDate{Time: t}
}

// At marks t as a point in time.
func At(t time.Time) ReportDate {
	return ReportDate{Time: t, Instant: true}
}

func (d ReportDate) in(loc *time.Location) time.Time {
	if d.Instant {
		return calendarDate(d.Time, loc)
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// trailingMonths returns n consecutive half-open month ranges ending with the
// month containing now (in loc), oldest first.
func trailingMonths(now time.Time, loc *time.Location, n int) []repository.MonthRange {
	y, m, _ := now.In(loc).Date()
	current := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)

	ranges := make([]repository.MonthRange, n)
	for i := range ranges {
		start := current.AddDate(0, i-(n-1), 0)
		ranges[i] = repository.MonthRange{Start: start, End: start.AddDate(0, 1, 0)}
	}
	return ranges
}
