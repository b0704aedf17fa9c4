package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/report-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/report-tracker-api/internal/errors"
	"github.com/yukikurage/report-tracker-api/internal/middleware"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/patch"
	"github.com/yukikurage/report-tracker-api/internal/services"
	"github.com/yukikurage/report-tracker-api/internal/utils"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *services.ReportService
	log           *zap.Logger
}

func NewReportHandler(reportService *services.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, log: log}
}

// ListReports returns the caller's reports, or everyone's for admins.
// Supports ?status=, ?user_id= (admin only), ?page= and ?limit=.
func (h *ReportHandler) ListReports(c *gin.Context) {
	input := services.ListReportsInput{
		Status: c.Query("status"),
		Page:   utils.GetPaginationParams(c),
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid user_id")
			return
		}
		input.UserID = &userID
	}

	reports, total, err := h.reportService.List(c.Request.Context(), middleware.GetActor(c), input)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToReportListResponse(reports, input.Page, total))
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	report, err := h.reportService.Get(c.Request.Context(), middleware.GetActor(c), id)
	h.respondReport(c, http.StatusOK, report, err)
}

// CreateReport starts a draft. The date defaults to today.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	type CreateReportRequest struct {
		Date    *dto.Date `json:"date"`
		Content string    `json:"content"`
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	input := services.CreateReportInput{Content: req.Content}
	if req.Date != nil && !req.Date.IsZero() {
		input.Date = reportDate(*req.Date)
	}

	report, err := h.reportService.Create(c.Request.Context(), middleware.GetActor(c), input)
	h.respondReport(c, http.StatusCreated, report, err)
}

// UpdateReport edits date or content. A status key is accepted only when it
// repeats the current status.
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Date    patch.Field[dto.Date] `json:"date"`
		Content patch.Field[string]   `json:"content"`
		Status  patch.Field[string]   `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	input := services.UpdateReportInput{Content: req.Content, Status: req.Status}
	if req.Date.Set {
		input.Date = patch.Some(*reportDate(req.Date.Value))
	}

	report, err := h.reportService.Update(c.Request.Context(), middleware.GetActor(c), id, input)
	h.respondReport(c, http.StatusOK, report, err)
}

func (h *ReportHandler) CompleteReport(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	report, err := h.reportService.Complete(c.Request.Context(), middleware.GetActor(c), id)
	h.respondReport(c, http.StatusOK, report, err)
}

func (h *ReportHandler) ApproveReport(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	report, err := h.reportService.Approve(c.Request.Context(), middleware.GetActor(c), id)
	h.respondReport(c, http.StatusOK, report, err)
}

func (h *ReportHandler) DeleteReport(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.reportService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully"})
}

// SuggestIssues proposes issues from the report text. Nothing is saved.
func (h *ReportHandler) SuggestIssues(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	suggestions, err := h.reportService.SuggestIssues(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if suggestions == nil {
		suggestions = []services.SuggestedIssue{}
	}
	c.JSON(http.StatusOK, dto.SuggestedIssuesResponse{Suggestions: suggestions})
}

func (h *ReportHandler) respondReport(c *gin.Context, status int, report *models.Report, err error) {
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(status, dto.ToReportDTO(*report))
}

func reportDate(d dto.Date) *services.ReportDate {
	return &services.ReportDate{Time: d.Time, Instant: d.Instant}
}
