package repository

import (
	"context"
	"time"

	"doctrack-be/internal/models"

	"gorm.io/gorm"
)

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetLatest returns the most recent snapshot, or nil when history is empty.
func (r *StatsRepository) GetLatest(ctx context.Context) (*models.StatsSnapshot, error) {
	var snapshot models.StatsSnapshot
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&snapshot).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// GetRecent returns the n most recent snapshots, newest first. Callers that
// chart the history must reverse it to chronological order.
func (r *StatsRepository) GetRecent(ctx context.Context, n int) ([]models.StatsSnapshot, error) {
	if n <= 0 {
		n = models.DefaultHistoryWindow
	}
	var snapshots []models.StatsSnapshot
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(n).Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Insert records a new snapshot.
func (r *StatsRepository) Insert(ctx context.Context, snapshot *models.StatsSnapshot) error {
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(snapshot).Error
}
