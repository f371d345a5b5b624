package models

import "time"

// StatsSnapshot is a point-in-time aggregate over all active customers.
type StatsSnapshot struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	Total          float64   `json:"total" gorm:"not null"`
	TotalTop       float64   `json:"totalTop" gorm:"column:total_top;not null"`
	TotalInProcess float64   `json:"totalInProcess" gorm:"column:total_in_process;not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"not null;index"`
}

// StatsSnapshot metric field names, used to select a series from history.
const (
	StatsFieldTotal          = "total"
	StatsFieldTotalTop       = "total_top"
	StatsFieldTotalInProcess = "total_in_process"
)

// TrendMetric is one dashboard metric with its chart series and
// target classification.
type TrendMetric struct {
	Field         string    `json:"field"`
	Current       float64   `json:"current"`
	PercentChange float64   `json:"percentChange"`
	Target        *float64  `json:"target"`
	OnTarget      bool      `json:"onTarget"`
	Series        []float64 `json:"series"`
	Placeholder   bool      `json:"placeholder"`
}

// TrendResponse is the complete trend payload for the dashboard.
type TrendResponse struct {
	Metrics []TrendMetric   `json:"metrics"`
	History []StatsSnapshot `json:"history"` // oldest first
	Window  int             `json:"window"`
}
