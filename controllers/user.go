package controllers

import (
	"net/http"

	"studiocrm-backend/services"
	"studiocrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserController serves the signed-in profile and the admin account list.
type UserController struct {
	accounts *services.AccountService
	log      *zap.Logger
}

func NewUserController(accounts *services.AccountService, log *zap.Logger) *UserController {
	return &UserController{accounts: accounts, log: log}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := uc.accounts.Get(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, uc.log, err, "Failed to load profile")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", user)
}

// @Summary Update studio profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ProfileUpdate true "fields to change"
// @Success 200 {object} utils.Response
// @Router /api/profile [put]
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.ProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, err := uc.accounts.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		respondWithServiceError(c, uc.log, err, "Failed to update profile")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Profile updated successfully", user)
}

func (uc *UserController) ListUsers(c *gin.Context) {
	p := utils.GetPagination(c)
	users, total, err := uc.accounts.List(c.Request.Context(), p)
	if err != nil {
		respondWithServiceError(c, uc.log, err, "Failed to retrieve users")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", pagedResult{Items: users, Meta: p.Meta(total)})
}

// @Summary Delete an account and its data
// @Tags users
// @Security BearerAuth
// @Param id path string true "user id"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /api/users/{id} [delete]
func (uc *UserController) DeleteUser(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := uc.accounts.Delete(c.Request.Context(), actorID, id); err != nil {
		respondWithServiceError(c, uc.log, err, "Failed to delete user")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "User deleted successfully", nil)
}
