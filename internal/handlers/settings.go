package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"doctrack-be/internal/models"
	"doctrack-be/internal/notify"
	"doctrack-be/internal/repository"

	"github.com/gin-gonic/gin"
)

// SettingsHandler manages the singleton application settings row.
type SettingsHandler struct {
	settingsRepo *repository.SettingsRepository
	notifier     Notifier
}

func NewSettingsHandler(settingsRepo *repository.SettingsRepository, notifier Notifier) *SettingsHandler {
	return &SettingsHandler{settingsRepo: settingsRepo, notifier: notifier}
}

// GetSettings godoc
// @Summary Get the application settings
// @Description A missing settings row is an operational failure, never silently defaulted
// @Tags settings
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.AppSettings
// @Failure 500 {object} models.ErrorResponse
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.settingsRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsMissing) {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "settings_missing",
				Message: "Application settings are not configured",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load settings",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary Update the application settings
// @Description Absent fields keep their value; Clear* flags remove a target
// @Tags settings
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param payload body models.UpdateSettingsRequest true "Changed fields"
// @Success 200 {object} models.AppSettings
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	actorID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.ClearTargetTotal {
		updates["target_total"] = nil
	} else if req.TargetTotal != nil {
		updates["target_total"] = *req.TargetTotal
	}
	if req.ClearTargetTop {
		updates["target_top"] = nil
	} else if req.TargetTop != nil {
		updates["target_top"] = *req.TargetTop
	}
	if req.ClearTargetInProc {
		updates["target_in_process"] = nil
	} else if req.TargetInProcess != nil {
		updates["target_in_process"] = *req.TargetInProcess
	}
	if req.HistoryWindow != nil {
		if *req.HistoryWindow < models.MinHistoryWindow || *req.HistoryWindow > models.MaxHistoryWindow {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: fmt.Sprintf("History window must be between %d and %d", models.MinHistoryWindow, models.MaxHistoryWindow),
			})
			return
		}
		updates["history_window"] = *req.HistoryWindow
	}
	if req.TopN != nil {
		if *req.TopN < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "topN must be at least 1"})
			return
		}
		updates["top_n"] = *req.TopN
	}
	if req.AutomationEndpoint != nil {
		updates["automation_endpoint"] = *req.AutomationEndpoint
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No fields to update"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.settingsRepo.Update(ctx, actorID.(string), updates); err != nil {
		if errors.Is(err, repository.ErrNotAuthorized) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "Admin role required"})
			return
		}
		if errors.Is(err, repository.ErrSettingsMissing) {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "settings_missing",
				Message: "Application settings are not configured",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to update settings",
			Message: err.Error(),
		})
		return
	}

	h.notifier.Notify(ctx, notify.TopicSettings)

	settings, err := h.settingsRepo.Get(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to reload settings",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, settings)
}
