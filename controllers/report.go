package controllers

import (
	"net/http"

	"studiocrm-backend/services"
	"studiocrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportController handles all reporting functions
type ReportController struct {
	reports *services.ReportService
	log     *zap.Logger
}

func NewReportController(reports *services.ReportService, log *zap.Logger) *ReportController {
	return &ReportController{reports: reports, log: log}
}

// @Summary Revenue report
// @Description Per-customer, per-month, per-year, per-service and per-order views plus totals.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response{data=services.RevenueReport}
// @Router /api/reports [get]
func (rc *ReportController) GetRevenueReport(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	report, err := rc.reports.Revenue(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, rc.log, err, "Failed to build revenue report")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", report)
}
