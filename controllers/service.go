package controllers

import (
	"net/http"

	"studiocrm-backend/services"
	"studiocrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceController manages the studio's service catalog.
type ServiceController struct {
	catalog *services.CatalogService
	log     *zap.Logger
}

func NewServiceController(catalog *services.CatalogService, log *zap.Logger) *ServiceController {
	return &ServiceController{catalog: catalog, log: log}
}

// @Summary Add a catalog service
// @Tags services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ServiceInput true "service"
// @Success 201 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /api/services [post]
func (sc *ServiceController) CreateService(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service, err := sc.catalog.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondWithServiceError(c, sc.log, err, "Failed to create service")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Service created successfully", service)
}

func (sc *ServiceController) GetServices(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	p := utils.GetPagination(c)
	list, total, err := sc.catalog.List(c.Request.Context(), userID, c.Query("search"), p)
	if err != nil {
		respondWithServiceError(c, sc.log, err, "Failed to retrieve services")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", pagedResult{Items: list, Meta: p.Meta(total)})
}

func (sc *ServiceController) GetService(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	service, err := sc.catalog.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondWithServiceError(c, sc.log, err, "Failed to retrieve service")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", service)
}

func (sc *ServiceController) UpdateService(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input services.ServiceUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service, err := sc.catalog.Update(c.Request.Context(), userID, id, input)
	if err != nil {
		respondWithServiceError(c, sc.log, err, "Failed to update service")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Service updated successfully", service)
}

// DeleteService leaves existing orders untouched.
func (sc *ServiceController) DeleteService(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := sc.catalog.Delete(c.Request.Context(), userID, id); err != nil {
		respondWithServiceError(c, sc.log, err, "Failed to delete service")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Service deleted successfully", nil)
}
