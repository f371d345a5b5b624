package services

import (
	"context"
	"log"
	"time"

	"doctrack-be/internal/models"
	"doctrack-be/internal/notify"
	"doctrack-be/internal/repository"
)

// Notifier publishes a change signal to every listening view.
type Notifier interface {
	Notify(ctx context.Context, topic string)
}

// StartSnapshotWorker starts a background goroutine that periodically rolls
// the current customer counters into a stats snapshot and signals listeners.
// The worker stops when ctx is done.
func StartSnapshotWorker(
	ctx context.Context,
	interval time.Duration,
	customers *repository.CustomerRepository,
	stats *repository.StatsRepository,
	settings *repository.SettingsRepository,
	notifier Notifier,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("snapshot worker: shutting down")
				return
			case <-ticker.C:
				if err := recordSnapshot(ctx, customers, stats, settings); err != nil {
					log.Println("snapshot worker: error recording snapshot:", err)
					continue
				}
				notifier.Notify(ctx, notify.TopicStatsHistory)
				notifier.Notify(ctx, notify.TopicStatsUpdate)
			}
		}
	}()
}

func recordSnapshot(
	ctx context.Context,
	customers *repository.CustomerRepository,
	stats *repository.StatsRepository,
	settings *repository.SettingsRepository,
) error {
	topN := models.DefaultTopN
	if cfg, err := settings.Get(ctx); err == nil {
		topN = cfg.EffectiveTopN()
	}

	inProcess, other, inbox, err := customers.CounterSums(ctx)
	if err != nil {
		return err
	}
	topTotal, err := customers.TopTotals(ctx, topN)
	if err != nil {
		return err
	}

	return stats.Insert(ctx, &models.StatsSnapshot{
		Total:          float64(inProcess + other + inbox),
		TotalTop:       float64(topTotal),
		TotalInProcess: float64(inProcess),
	})
}
