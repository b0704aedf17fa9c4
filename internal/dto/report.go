package dto

import (
	"time"

	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/utils"
)

// ReportDTO represents a report in API responses
type ReportDTO struct {
	ID            uint64              `json:"id"`
	UserID        uint64              `json:"user_id"`
	CreatedByName string              `json:"created_by_name"`
	Date          Date                `json:"date"`
	Content       string              `json:"content"`
	Status        models.ReportStatus `json:"status"`
	CompletedAt   *time.Time          `json:"completed_at"`
	ApprovedAt    *time.Time          `json:"approved_at"`
	Version       uint64              `json:"version"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ReportListResponse represents a paginated list of reports
type ReportListResponse struct {
	Reports    []ReportDTO              `json:"reports"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

func ToReportDTO(report models.Report) ReportDTO {
	return ReportDTO{
		ID:            report.ID,
		UserID:        report.UserID,
		CreatedByName: report.AuthorName(),
		Date:          Date{Time: report.Date},
		Content:       report.Content,
		Status:        report.Status,
		CompletedAt:   report.CompletedAt,
		ApprovedAt:    report.ApprovedAt,
		Version:       report.Version,
		CreatedAt:     report.CreatedAt,
		UpdatedAt:     report.UpdatedAt,
	}
}

func ToReportListResponse(reports []models.Report, page utils.PaginationParams, total int64) ReportListResponse {
	items := make([]ReportDTO, len(reports))
	for i, r := range reports {
		items[i] = ToReportDTO(r)
	}
	return ReportListResponse{Reports: items, Pagination: page.Response(total)}
}
