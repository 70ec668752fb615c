package controllers

import (
	"net/http"
	"strconv"
	"time"

	"studiocrm-backend/services"
	"studiocrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultUpcomingDays = 7
	maxUpcomingDays     = 90
)

type ReminderController struct {
	reminders *services.ReminderService
	log       *zap.Logger
}

func NewReminderController(reminders *services.ReminderService, log *zap.Logger) *ReminderController {
	return &ReminderController{reminders: reminders, log: log}
}

// GetUpcomingEvents lists orders with an event in the next ?days= days (default 7).
func (rc *ReminderController) GetUpcomingEvents(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultUpcomingDays)))
	if err != nil || days < 0 || days > maxUpcomingDays {
		utils.RespondWithError(c, http.StatusBadRequest, "days must be between 0 and 90")
		return
	}

	orders, err := rc.reminders.Upcoming(c.Request.Context(), userID, time.Now(), days)
	if err != nil {
		respondWithServiceError(c, rc.log, err, "Failed to retrieve upcoming events")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", orders)
}

func (rc *ReminderController) GetReminderLogs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	p := utils.GetPagination(c)
	logs, total, err := rc.reminders.Logs(c.Request.Context(), userID, p)
	if err != nil {
		respondWithServiceError(c, rc.log, err, "Failed to retrieve reminder logs")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", pagedResult{Items: logs, Meta: p.Meta(total)})
}
