package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"doctrack-be/internal/metrics"
	"doctrack-be/internal/models"
	"doctrack-be/internal/repository"
	"doctrack-be/internal/view"

	"github.com/gin-gonic/gin"
)

// StatsHandler serves the dashboard trend payload derived from the snapshot
// history and the configured targets.
type StatsHandler struct {
	statsRepo *repository.StatsRepository
	settings  *view.SettingsState
}

func NewStatsHandler(statsRepo *repository.StatsRepository, settings *view.SettingsState) *StatsHandler {
	return &StatsHandler{statsRepo: statsRepo, settings: settings}
}

// GetLatest godoc
// @Summary Get the most recent stats snapshot
// @Tags stats
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.StatsSnapshot
// @Failure 404 {object} models.ErrorResponse
// @Router /stats/latest [get]
func (h *StatsHandler) GetLatest(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	snapshot, err := h.statsRepo.GetLatest(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to fetch stats",
			Message: err.Error(),
		})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "No stats recorded yet"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetHistory godoc
// @Summary Get the recent stats history in chronological order
// @Tags stats
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.StatsSnapshot
// @Failure 500 {object} models.ErrorResponse
// @Router /stats/history [get]
func (h *StatsHandler) GetHistory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.settings.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsMissing) {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "settings_missing",
				Message: "Application settings are not configured",
			})
			return
		}
		// Transient load failure: fall back to the last known window so the
		// chart stays usable, defaulting only when nothing was ever loaded.
		settings = h.settings.Current()
	}

	window := models.DefaultHistoryWindow
	if settings != nil {
		window = settings.EffectiveHistoryWindow()
	}

	recent, err := h.statsRepo.GetRecent(ctx, window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load stats history",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, metrics.Reverse(recent))
}

// GetTrend godoc
// @Summary Get trend metrics with history and target classification
// @Description Requires the settings row; a missing row is a blocking failure, not a defaulted response
// @Tags stats
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.TrendResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /stats/trend [get]
func (h *StatsHandler) GetTrend(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.settings.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsMissing) {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "settings_missing",
				Message: "Application settings are not configured; metrics cannot be classified",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load settings",
			Message: err.Error(),
		})
		return
	}

	window := settings.EffectiveHistoryWindow()
	recent, err := h.statsRepo.GetRecent(ctx, window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load stats history",
			Message: err.Error(),
		})
		return
	}
	history := metrics.Reverse(recent)

	response := models.TrendResponse{
		Metrics: []models.TrendMetric{
			buildMetric(history, models.StatsFieldTotal, settings.TargetTotal, window),
			buildMetric(history, models.StatsFieldTotalTop, settings.TargetTop, window),
			buildMetric(history, models.StatsFieldTotalInProcess, settings.TargetInProcess, window),
		},
		History: history,
		Window:  window,
	}
	c.JSON(http.StatusOK, response)
}

// buildMetric assembles one trend metric over a chronological history. An
// empty history produces a flat placeholder series that is still marked as
// such, so the dashboard can render the chart frame without pretending the
// zeros are measurements.
func buildMetric(history []models.StatsSnapshot, field string, target *float64, window int) models.TrendMetric {
	metric := models.TrendMetric{
		Field:  field,
		Target: target,
	}
	if len(history) == 0 {
		metric.Series = metrics.PlaceholderSeries(window)
		metric.Placeholder = true
		metric.OnTarget = metrics.OnTarget(0, target)
		return metric
	}
	metric.Series = metrics.Series(history, field)
	metric.Current = metrics.FieldValue(&history[len(history)-1], field)
	metric.PercentChange = metrics.PercentChange(history, field)
	metric.OnTarget = metrics.OnTarget(metric.Current, target)
	return metric
}
