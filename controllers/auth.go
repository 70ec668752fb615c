package controllers

import (
	"net/http"

	"studiocrm-backend/services"
	"studiocrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	accounts    *services.AccountService
	log         *zap.Logger
	tokenMaxAge int
}

// NewAuthController sets the auth cookie lifetime to match the token expiry.
func NewAuthController(accounts *services.AccountService, tokenExpiryHours int, log *zap.Logger) *AuthController {
	return &AuthController{accounts: accounts, log: log, tokenMaxAge: tokenExpiryHours * 3600}
}

// @Summary Register a studio account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "register"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	result, err := ac.accounts.Register(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, ac.log, err, "Failed to create user")
		return
	}

	ac.setTokenCookie(c, result.Token)
	utils.RespondWithSuccess(c, http.StatusCreated, "Registration successful", result)
}

// @Summary Sign in with email or mobile
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "login"
// @Success 200 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	result, err := ac.accounts.Login(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, ac.log, err, "Failed to sign in")
		return
	}

	ac.setTokenCookie(c, result.Token)
	utils.RespondWithSuccess(c, http.StatusOK, "Login successful", result)
}

// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := ac.accounts.Get(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, ac.log, err, "Failed to load user")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", user)
}

func (ac *AuthController) setTokenCookie(c *gin.Context, token string) {
	c.SetCookie(
		"token",
		token,
		ac.tokenMaxAge,
		"/",
		"",
		true,
		true,
	)
}
