package models

import "time"

// SettingsID is the fixed primary key of the singleton settings row.
const SettingsID = "app"

// History window and top-N bounds. Unlike the settings row itself, these
// fall back to safe defaults when unset.
const (
	DefaultHistoryWindow = 10
	MinHistoryWindow     = 5
	MaxHistoryWindow     = 50
	DefaultTopN          = 5
)

// AppSettings is the singleton configuration record. Exactly one row with
// id "app" must exist; its absence is a fatal condition, not a default.
// Nil targets mean "no target configured".
type AppSettings struct {
	ID                 string     `json:"-" gorm:"primaryKey;size:16"`
	TargetTotal        *float64   `json:"targetTotal"`
	TargetTop          *float64   `json:"targetTop" gorm:"column:target_top"`
	TargetInProcess    *float64   `json:"targetInProcess" gorm:"column:target_in_process"`
	HistoryWindow      int        `json:"historyWindow"`
	TopN               int        `json:"topN" gorm:"column:top_n"`
	LastAutomationRun  *time.Time `json:"lastAutomationRun"`
	AutomationEndpoint string     `json:"automationEndpoint"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// EffectiveHistoryWindow clamps the stored window into [MinHistoryWindow,
// MaxHistoryWindow], defaulting when unset. Legacy rows may hold values
// outside the range.
func (s *AppSettings) EffectiveHistoryWindow() int {
	w := s.HistoryWindow
	if w == 0 {
		return DefaultHistoryWindow
	}
	if w < MinHistoryWindow {
		return MinHistoryWindow
	}
	if w > MaxHistoryWindow {
		return MaxHistoryWindow
	}
	return w
}

// EffectiveTopN returns the configured top-N size or its default.
func (s *AppSettings) EffectiveTopN() int {
	if s.TopN <= 0 {
		return DefaultTopN
	}
	return s.TopN
}

// UpdateSettingsRequest is the payload for updating the singleton row.
// Pointer-to-pointer is avoided by treating absent fields as "leave as is"
// and explicit nulls inside Targets as "clear the target".
type UpdateSettingsRequest struct {
	TargetTotal        *float64 `json:"targetTotal"`
	ClearTargetTotal   bool     `json:"clearTargetTotal"`
	TargetTop          *float64 `json:"targetTop"`
	ClearTargetTop     bool     `json:"clearTargetTop"`
	TargetInProcess    *float64 `json:"targetInProcess"`
	ClearTargetInProc  bool     `json:"clearTargetInProcess"`
	HistoryWindow      *int     `json:"historyWindow"`
	TopN               *int     `json:"topN"`
	AutomationEndpoint *string  `json:"automationEndpoint"`
}
