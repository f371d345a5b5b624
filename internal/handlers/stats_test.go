package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"doctrack-be/internal/models"
	"doctrack-be/internal/repository"
	"doctrack-be/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newStatsRouter(t *testing.T, fetch view.SettingsFetch) (*gin.Engine, *view.SettingsState) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.StatsSnapshot{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	settings := view.NewSettingsState(fetch)
	h := NewStatsHandler(repository.NewStatsRepository(db), settings)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", "u-1") })
	r.GET("/stats/history", h.GetHistory)
	return r, settings
}

func TestHistoryFailsWhenSettingsRowMissing(t *testing.T) {
	r, _ := newStatsRouter(t, func(ctx context.Context) (*models.AppSettings, error) {
		return nil, repository.ErrSettingsMissing
	})

	w := doJSON(t, r, http.MethodGet, "/stats/history", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error != "settings_missing" {
		t.Fatalf("error = %q, want settings_missing", resp.Error)
	}
}

func TestHistoryKeepsLastWindowOnTransientFailure(t *testing.T) {
	fail := false
	r, settings := newStatsRouter(t, func(ctx context.Context) (*models.AppSettings, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return &models.AppSettings{ID: models.SettingsID, HistoryWindow: 15}, nil
	})

	if _, err := settings.Load(context.Background()); err != nil {
		t.Fatalf("prime settings: %v", err)
	}

	fail = true
	w := doJSON(t, r, http.MethodGet, "/stats/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var history []models.StatsSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
}
