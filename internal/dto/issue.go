package dto

import (
	"time"

	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/services"
	"github.com/yukikurage/report-tracker-api/internal/utils"
)

// IssueDTO represents an issue in API responses. CreatedByName is empty once
// the creator has been deleted.
type IssueDTO struct {
	ID            uint64               `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Status        models.IssueStatus   `json:"status"`
	Priority      models.IssuePriority `json:"priority"`
	CreatedByID   *uint64              `json:"created_by_id"`
	CreatedByName string               `json:"created_by_name"`
	Version       uint64               `json:"version"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// IssueListResponse represents a paginated list of issues
type IssueListResponse struct {
	Issues     []IssueDTO               `json:"issues"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// SuggestedIssuesResponse wraps AI proposals; nothing is persisted.
type SuggestedIssuesResponse struct {
	Suggestions []services.SuggestedIssue `json:"suggestions"`
}

func ToIssueDTO(issue models.Issue) IssueDTO {
	return IssueDTO{
		ID:            issue.ID,
		Title:         issue.Title,
		Description:   issue.Description,
		Status:        issue.Status,
		Priority:      issue.Priority,
		CreatedByID:   issue.CreatedByID,
		CreatedByName: issue.CreatorName(),
		Version:       issue.Version,
		CreatedAt:     issue.CreatedAt,
		UpdatedAt:     issue.UpdatedAt,
	}
}

func ToIssueListResponse(issues []models.Issue, page utils.PaginationParams, total int64) IssueListResponse {
	items := make([]IssueDTO, len(issues))
	for i, issue := range issues {
		items[i] = ToIssueDTO(issue)
	}
	return IssueListResponse{Issues: items, Pagination: page.Response(total)}
}
