package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/report-tracker-api/internal/dto"
	"github.com/yukikurage/report-tracker-api/internal/middleware"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/patch"
	"github.com/yukikurage/report-tracker-api/internal/services"
	"github.com/yukikurage/report-tracker-api/internal/utils"
	"go.uber.org/zap"
)

type IssueHandler struct {
	issueService *services.IssueService
	log          *zap.Logger
}

func NewIssueHandler(issueService *services.IssueService, log *zap.Logger) *IssueHandler {
	return &IssueHandler{issueService: issueService, log: log}
}

// ListIssues supports ?status= and ?priority= filters.
func (h *IssueHandler) ListIssues(c *gin.Context) {
	input := services.ListIssuesInput{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Page:     utils.GetPaginationParams(c),
	}
	issues, total, err := h.issueService.List(c.Request.Context(), middleware.GetActor(c), input)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToIssueListResponse(issues, input.Page, total))
}

func (h *IssueHandler) GetIssue(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	issue, err := h.issueService.Get(c.Request.Context(), middleware.GetActor(c), id)
	h.respondIssue(c, http.StatusOK, issue, err)
}

// CreateIssue opens an issue. Unknown priorities become medium.
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	type CreateIssueRequest struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
	}

	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	issue, err := h.issueService.Create(c.Request.Context(), middleware.GetActor(c), services.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	h.respondIssue(c, http.StatusCreated, issue, err)
}

// UpdateIssue applies only the keys present in the body.
func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title       patch.Field[string] `json:"title"`
		Description patch.Field[string] `json:"description"`
		Status      patch.Field[string] `json:"status"`
		Priority    patch.Field[string] `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	issue, err := h.issueService.UpdateFields(c.Request.Context(), middleware.GetActor(c), id, services.UpdateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	h.respondIssue(c, http.StatusOK, issue, err)
}

func (h *IssueHandler) UpdateIssueStatus(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	issue, err := h.issueService.UpdateStatus(c.Request.Context(), middleware.GetActor(c), id, req.Status)
	h.respondIssue(c, http.StatusOK, issue, err)
}

func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.issueService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

func (h *IssueHandler) respondIssue(c *gin.Context, status int, issue *models.Issue, err error) {
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(status, dto.ToIssueDTO(*issue))
}
