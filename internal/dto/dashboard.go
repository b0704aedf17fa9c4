package dto

import (
	"github.com/yukikurage/report-tracker-api/internal/constants"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/services"
)

// historyDateLayout matches the id-ID short date the dashboard client renders.
const historyDateLayout = "2/1/2006"

var (
	activitySizes  = []string{"large", "medium", "small"}
	activityColors = []string{"bg-blue-500", "bg-blue-400", "bg-blue-300"}
)

// DashboardResponse keeps the key names the dashboard client already reads.
type DashboardResponse struct {
	Cards      DashboardCards  `json:"cards"`
	Monthly    []MonthlyBucket `json:"monthly"`
	Comparison MonthComparison `json:"comparison"`
	Activity   []ActivityEntry `json:"activity"`
	History    []HistoryEntry  `json:"history"`
	Staff      []StaffEntry    `json:"staff"`
	Issues     IssueSummary    `json:"issues"`
}

type DashboardCards struct {
	Total     int64 `json:"total"`
	Selesai   int64 `json:"selesai"`
	Disetujui int64 `json:"disetujui"`
}

type MonthlyBucket struct {
	Name   string `json:"name"`
	Jumlah int64  `json:"jumlah"`
}

type MonthComparison struct {
	ThisMonth int64 `json:"this_month"`
	LastMonth int64 `json:"last_month"`
}

type ActivityEntry struct {
	ID    uint64 `json:"id"`
	User  string `json:"user"`
	Count int64  `json:"count"`
	Size  string `json:"size"`
	Color string `json:"color"`
}

type HistoryEntry struct {
	ID        uint64              `json:"id"`
	User      string              `json:"user"`
	Deskripsi string              `json:"deskripsi"`
	Tanggal   string              `json:"tanggal"`
	Status    models.ReportStatus `json:"status"`
}

type StaffEntry struct {
	ID     uint64      `json:"id"`
	Nama   string      `json:"nama"`
	Detail models.Role `json:"detail"`
}

type IssueSummary struct {
	Total         int64 `json:"total"`
	Open          int64 `json:"open"`
	Investigating int64 `json:"investigating"`
	Resolved      int64 `json:"resolved"`
	Closed        int64 `json:"closed"`
}

func ToDashboardResponse(d *services.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Cards: DashboardCards{
			Total:     d.Reports.Total,
			Selesai:   d.Reports.Completed,
			Disetujui: d.Reports.Approved,
		},
		Monthly:    make([]MonthlyBucket, len(d.Monthly)),
		Comparison: MonthComparison{ThisMonth: d.ThisMonth, LastMonth: d.LastMonth},
		Activity:   make([]ActivityEntry, len(d.Activity)),
		History:    make([]HistoryEntry, len(d.History)),
		Staff:      make([]StaffEntry, len(d.Staff)),
		Issues: IssueSummary{
			Total:         d.Issues.Total,
			Open:          d.Issues.OpenCount,
			Investigating: d.Issues.InvestigatingCount,
			Resolved:      d.Issues.ResolvedCount,
			Closed:        d.Issues.ClosedCount,
		},
	}

	for i, m := range d.Monthly {
		resp.Monthly[i] = MonthlyBucket{Name: m.Label, Jumlah: m.Count}
	}
	for i, a := range d.Activity {
		tier := min(i, len(activitySizes)-1)
		resp.Activity[i] = ActivityEntry{
			ID:    a.UserID,
			User:  displayNameOr(a.DisplayName),
			Count: a.ReportCount,
			Size:  activitySizes[tier],
			Color: activityColors[tier],
		}
	}
	for i, r := range d.History {
		resp.History[i] = HistoryEntry{
			ID:        r.ID,
			User:      displayNameOr(r.AuthorName()),
			Deskripsi: r.Content,
			Tanggal:   r.Date.UTC().Format(historyDateLayout),
			Status:    r.Status,
		}
	}
	for i, u := range d.Staff {
		resp.Staff[i] = StaffEntry{ID: u.ID, Nama: u.DisplayName, Detail: u.Role}
	}
	return resp
}

func displayNameOr(name string) string {
	if name == "" {
		return constants.UnknownUserName
	}
	return name
}
