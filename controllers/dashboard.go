package controllers

import (
	"net/http"
	"time"

	"studiocrm-backend/services"
	"studiocrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardController struct {
	reports *services.ReportService
	log     *zap.Logger
	now     func() time.Time
}

func NewDashboardController(reports *services.ReportService, log *zap.Logger) *DashboardController {
	return &DashboardController{reports: reports, log: log, now: time.Now}
}

// GetDashboardOverview returns headline totals, status counts and recent orders.
func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := dc.reports.Dashboard(c.Request.Context(), userID, dc.now())
	if err != nil {
		respondWithServiceError(c, dc.log, err, "Failed to load dashboard")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", stats)
}
