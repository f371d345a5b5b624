package repository

import (
	"context"
	"errors"
	"time"

	"doctrack-be/internal/models"

	"gorm.io/gorm"
)

// ErrSettingsMissing reports that the singleton settings row does not exist.
// This is fatal for the affected views: the loader never substitutes a
// default-filled record, because silently defaulted targets would misreport
// every metric as unconfigured rather than broken.
var ErrSettingsMissing = errors.New("settings row missing")

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get loads the singleton settings row. Unlike the other repositories this
// one propagates absence as an explicit failure.
func (r *SettingsRepository) Get(ctx context.Context) (*models.AppSettings, error) {
	var settings models.AppSettings
	err := r.db.WithContext(ctx).First(&settings, "id = ?", models.SettingsID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrSettingsMissing
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update applies changes to the singleton row on behalf of an admin actor.
// It refuses to create the row: a missing row stays a visible failure.
func (r *SettingsRepository) Update(ctx context.Context, actorID string, updates map[string]interface{}) error {
	if !hasAdminRole(ctx, r.db, actorID) {
		return ErrNotAuthorized
	}
	return r.apply(ctx, updates)
}

func (r *SettingsRepository) apply(ctx context.Context, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.AppSettings{}).Where("id = ?", models.SettingsID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSettingsMissing
	}
	return nil
}

// SetLastAutomationRun stamps a successful automation trigger. Triggering is
// open to every signed-in user, so this path skips the admin check that
// Update enforces.
func (r *SettingsRepository) SetLastAutomationRun(ctx context.Context, at time.Time) error {
	return r.apply(ctx, map[string]interface{}{"last_automation_run": at.UTC()})
}
