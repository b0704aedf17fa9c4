package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/report-tracker-api/internal/dto"
	"github.com/yukikurage/report-tracker-api/internal/middleware"
	"github.com/yukikurage/report-tracker-api/internal/services"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	log              *zap.Logger
}

func NewDashboardHandler(dashboardService *services.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, log: log}
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.Build(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDashboardResponse(dashboard))
}
