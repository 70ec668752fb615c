package controllers

import (
	"errors"
	"net/http"

	"studiocrm-backend/services"
	"studiocrm-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusFor maps service errors to HTTP status codes. Anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidPhone),
		errors.Is(err, services.ErrInvalidService),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrCustomerMissing),
		errors.Is(err, services.ErrInvalidDocumentType):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrCannotDeleteSelf):
		return http.StatusForbidden
	case errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrServiceNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateCustomer),
		errors.Is(err, services.ErrDuplicateService),
		errors.Is(err, services.ErrDuplicateUser):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError writes the envelope for err. Unexpected errors are
// logged and replaced with fallback so internals never reach the client.
func respondWithServiceError(c *gin.Context, log *zap.Logger, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(fallback,
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		utils.RespondWithError(c, status, fallback)
		return
	}
	utils.RespondWithError(c, status, err.Error())
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

type idsInput struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

type pagedResult struct {
	Items interface{}    `json:"items"`
	Meta  utils.PageMeta `json:"meta"`
}
