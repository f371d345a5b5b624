package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"doctrack-be/internal/models"
	"doctrack-be/internal/notify"
	"doctrack-be/internal/repository"
	"doctrack-be/internal/services"

	"github.com/gin-gonic/gin"
)

// AutomationHandler triggers the configured external automation run and
// records when it last succeeded.
type AutomationHandler struct {
	automation   *services.AutomationService
	settingsRepo *repository.SettingsRepository
	notifier     Notifier
}

func NewAutomationHandler(automation *services.AutomationService, settingsRepo *repository.SettingsRepository, notifier Notifier) *AutomationHandler {
	return &AutomationHandler{automation: automation, settingsRepo: settingsRepo, notifier: notifier}
}

// Trigger godoc
// @Summary Trigger the external automation run
// @Description Calls the configured endpoint. Distinct errors for a missing endpoint, a refused URL and an upstream rejection.
// @Tags automation
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /automation/trigger [post]
func (h *AutomationHandler) Trigger(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
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

	err = h.automation.Trigger(ctx, settings.AutomationEndpoint)
	if err != nil {
		var upstream *services.UpstreamError
		switch {
		case errors.Is(err, services.ErrNoEndpoint):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: "No automation endpoint configured",
			})
		case errors.Is(err, services.ErrURLNotAllowed):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: "Automation endpoint URL is not allowed",
			})
		case errors.As(err, &upstream):
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "Automation endpoint rejected the request",
				Message: upstream.Error(),
			})
		default:
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "Failed to reach automation endpoint",
				Message: err.Error(),
			})
		}
		return
	}

	now := time.Now().UTC()
	if err := h.settingsRepo.SetLastAutomationRun(ctx, now); err != nil {
		// The run itself succeeded; report that but flag the bookkeeping.
		c.JSON(http.StatusOK, gin.H{
			"triggered": true,
			"warning":   "Triggered, but failed to record the run time",
		})
		return
	}

	h.notifier.Notify(ctx, notify.TopicSettings)
	c.JSON(http.StatusOK, gin.H{"triggered": true, "lastAutomationRun": now})
}
