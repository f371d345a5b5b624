// Package metrics derives trend figures from a stats history window.
package metrics

import (
	"math"

	"doctrack-be/internal/models"
)

// FieldValue extracts the named metric from a snapshot.
func FieldValue(s *models.StatsSnapshot, field string) float64 {
	switch field {
	case models.StatsFieldTotalTop:
		return s.TotalTop
	case models.StatsFieldTotalInProcess:
		return s.TotalInProcess
	default:
		return s.Total
	}
}

// PercentChange computes the change between the two most recent points of a
// chronologically ordered history, rounded to two decimal places. Fewer than
// two points yield 0. A previous value of exactly zero cannot be divided by:
// a move away from zero reports 100, staying at zero reports 0.
func PercentChange(history []models.StatsSnapshot, field string) float64 {
	if len(history) < 2 {
		return 0
	}
	latest := FieldValue(&history[len(history)-1], field)
	previous := FieldValue(&history[len(history)-2], field)
	if previous == 0 {
		if latest > 0 {
			return 100
		}
		return 0
	}
	return round2((latest - previous) / previous * 100)
}

// OnTarget classifies a metric value against its configured target. A nil
// target is always off-track: the absence of a target never counts as
// meeting it.
func OnTarget(current float64, target *float64) bool {
	return target != nil && current <= *target
}

// Series returns the raw values of the history, oldest first. The input is
// expected to already be in chronological order.
func Series(history []models.StatsSnapshot, field string) []float64 {
	values := make([]float64, len(history))
	for i := range history {
		values[i] = FieldValue(&history[i], field)
	}
	return values
}

// PlaceholderSeries substitutes for a chart when no history exists yet.
func PlaceholderSeries(n int) []float64 {
	if n <= 0 {
		n = models.DefaultHistoryWindow
	}
	return make([]float64, n)
}

// Reverse flips a newest-first history into chronological order.
func Reverse(history []models.StatsSnapshot) []models.StatsSnapshot {
	out := make([]models.StatsSnapshot, len(history))
	for i := range history {
		out[len(history)-1-i] = history[i]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
