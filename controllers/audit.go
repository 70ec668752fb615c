package controllers

import (
	"net/http"

	"studiocrm-backend/services"
	"studiocrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuditController struct {
	audit *services.AuditService
	log   *zap.Logger
}

func NewAuditController(audit *services.AuditService, log *zap.Logger) *AuditController {
	return &AuditController{audit: audit, log: log}
}

// GetAuditLogs pages the tenant's audit trail, optionally filtered by ?entityType=.
func (ac *AuditController) GetAuditLogs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	p := utils.GetPagination(c)
	entries, total, err := ac.audit.List(c.Request.Context(), userID, c.Query("entityType"), p)
	if err != nil {
		respondWithServiceError(c, ac.log, err, "Failed to retrieve audit logs")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", pagedResult{Items: entries, Meta: p.Meta(total)})
}
