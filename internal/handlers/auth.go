package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photovault-backend/internal/models"
	"photovault-backend/internal/supabase"
)

type AuthHandler struct {
	auth *supabase.AuthClient
	db   *supabase.DatabaseClient
}

func NewAuthHandler(auth *supabase.AuthClient, db *supabase.DatabaseClient) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		db:   db,
	}
}

// Register godoc
// @Summary     Register a new user
// @Description Creates the identity in Supabase Auth and the profile row with the default storage quota.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.RegisterRequest true "Credentials"
// @Success     201 {object} models.SuccessResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	session, err := h.auth.SignUp(req.Email, req.Password)
	if err != nil {
		respondError(c, http.StatusBadRequest, "AUTH_ERROR", "failed to register user")
		return
	}

	user, err := h.db.UpsertUser(session.UserID, session.Email)
	if err != nil || user == nil {
		respondError(c, http.StatusInternalServerError, "PROFILE_NOT_CREATED", "user profile was not created")
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Success: true,
		Data: models.AuthResponse{
			User:        models.NewUserResponse(user),
			AccessToken: session.AccessToken,
		},
	})
}

// Login godoc
// @Summary     Login
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.LoginRequest true "Credentials"
// @Success     200 {object} models.SuccessResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	session, err := h.auth.SignIn(req.Email, req.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}

	user, err := h.db.UpsertUser(session.UserID, session.Email)
	if err != nil || user == nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load user profile")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data: models.AuthResponse{
			User:        models.NewUserResponse(user),
			AccessToken: session.AccessToken,
		},
	})
}

// Me godoc
// @Summary     Current user profile with storage usage
// @Tags        auth
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SuccessResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.db.GetUser(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load user profile")
		return
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "user profile not found")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    models.NewUserResponse(user),
	})
}
