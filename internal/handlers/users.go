package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"doctrack-be/internal/models"
	"doctrack-be/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler serves the user management view and role assignments.
type UserHandler struct {
	userRepo *repository.UserRepository
}

func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// ListUsers godoc
// @Summary List all users with their roles
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.UserWithRole
// @Failure 500 {object} models.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	actorID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, err := h.userRepo.ListWithRoles(ctx, actorID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to list users",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, users)
}

// AssignRole godoc
// @Summary Assign a role to a user
// @Description Replaces the user's current role. Admins cannot demote themselves.
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body models.AssignRoleRequest true "Role"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/role [put]
func (h *UserHandler) AssignRole(c *gin.Context) {
	actorID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targetID := c.Param("id")
	if targetID == actorID.(string) && req.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Cannot remove your own admin role"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.userRepo.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to look up user",
			Message: err.Error(),
		})
		return
	}

	if err := h.userRepo.AssignRole(ctx, actorID.(string), targetID, req.Role); err != nil {
		if errors.Is(err, repository.ErrNotAuthorized) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "Admin role required"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to assign role",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated", "role": req.Role})
}

// GetMyRole godoc
// @Summary Get the calling user's role
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /users/me/role [get]
func (h *UserHandler) GetMyRole(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	role := h.userRepo.GetRole(ctx, userID.(string))
	c.JSON(http.StatusOK, gin.H{"role": role})
}
