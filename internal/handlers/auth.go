package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"doctrack-be/config"
	"doctrack-be/internal/models"
	"doctrack-be/internal/repository"
	"doctrack-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthHandler struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

func NewAuthHandler(cfg *config.Config, userRepo *repository.UserRepository) *AuthHandler {
	return &AuthHandler{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// Signup godoc
// @Summary Register with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body models.SignupRequest true "Signup data"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Check if user already exists
	existingUser, err := h.userRepo.FindByEmail(ctx, req.Email)
	if err == nil && existingUser != nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "user_exists",
			Message: "User with this email already exists",
		})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to process password",
		})
		return
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    req.Email,
		Password: hashedPassword,
		Name:     req.Name,
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to create user",
		})
		return
	}

	// Every account starts as a plain user; admin is assigned explicitly.
	if err := h.userRepo.GrantDefaultRole(ctx, user.ID); err != nil {
		log.Println("signup: failed to assign default role:", err)
	}

	h.issueTokens(c, ctx, user, http.StatusCreated)
}

// Login godoc
// @Summary Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid email or password",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to find user",
		})
		return
	}

	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
		return
	}

	h.issueTokens(c, ctx, user, http.StatusOK)
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	claims, err := utils.ValidateToken(req.RefreshToken, h.cfg.JWTSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_refresh_token",
			Message: "Invalid or expired refresh token",
		})
		return
	}
	if claims.TokenType != "refresh" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_token_type",
			Message: "Token is not a refresh token",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_refresh_token",
			Message: "User not found",
		})
		return
	}
	if user.RefreshToken != req.RefreshToken {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_refresh_token",
			Message: "Refresh token not found or revoked",
		})
		return
	}

	h.issueTokens(c, ctx, user, http.StatusOK)
}

// Logout godoc
// @Summary Revoke the caller's refresh token
// @Tags auth
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.userRepo.UpdateRefreshToken(ctx, userID.(string), ""); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to logout",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetMe godoc
// @Summary Get the current user's profile
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.FindByID(ctx, userID.(string))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "user_not_found",
			Message: "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdatePassword godoc
// @Summary Change the caller's password
// @Tags auth
// @Security ApiKeyAuth
// @Accept json
// @Param payload body models.UpdatePasswordRequest true "Password change"
// @Success 200 {object} map[string]string
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/password [put]
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return
	}

	var req models.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.FindByID(ctx, userID.(string))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "user_not_found",
			Message: "User not found",
		})
		return
	}

	if err := utils.CheckPassword(user.Password, req.CurrentPassword); err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Current password is incorrect",
		})
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to process password",
		})
		return
	}
	if err := h.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to update password",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// ResetRequest godoc
// @Summary Request a password reset token
// @Tags auth
// @Accept json
// @Param payload body models.ResetRequestRequest true "Account email"
// @Success 200 {object} map[string]string
// @Router /auth/reset-request [post]
func (h *AuthHandler) ResetRequest(c *gin.Context) {
	var req models.ResetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Respond identically whether or not the account exists.
	if user, err := h.userRepo.FindByEmail(ctx, req.Email); err == nil {
		token := uuid.New().String()
		if err := h.userRepo.SetResetToken(ctx, user.ID, token); err != nil {
			log.Println("reset request: failed to store token:", err)
		} else {
			// Delivery is handled by the operations mail relay; the token is
			// never returned over this endpoint.
			log.Println("reset request: token issued for user", user.ID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset link has been sent"})
}

// ResetConfirm godoc
// @Summary Set a new password using a reset token
// @Tags auth
// @Accept json
// @Param payload body models.ResetConfirmRequest true "Reset token and new password"
// @Success 200 {object} map[string]string
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/reset-confirm [post]
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req models.ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.FindByResetToken(ctx, req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_reset_token",
			Message: "Invalid or expired reset token",
		})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to process password",
		})
		return
	}
	if err := h.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to update password",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// issueTokens generates and stores a fresh token pair for the user.
func (h *AuthHandler) issueTokens(c *gin.Context, ctx context.Context, user *models.User, status int) {
	role := h.userRepo.GetRole(ctx, user.ID)

	accessToken, expiresAt, err := utils.GenerateAccessToken(user.ID, user.Email, role, h.cfg.JWTSecret, h.cfg.JWTAccessExpiration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate access token",
		})
		return
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, user.Email, h.cfg.JWTSecret, h.cfg.JWTRefreshExpiration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate refresh token",
		})
		return
	}

	// Rotation: the stored token is the only valid one
	if err := h.userRepo.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to store refresh token",
		})
		return
	}

	c.JSON(status, models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user,
	})
}
