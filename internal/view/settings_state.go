package view

import (
	"context"
	"errors"
	"sync"

	"doctrack-be/internal/models"
	"doctrack-be/internal/repository"
)

// SettingsLoadState distinguishes "not fetched yet" from "fetched" from
// "the singleton row does not exist". The last one is a blocking condition:
// views must refuse to render defaults in its place.
type SettingsLoadState int

const (
	SettingsNotLoaded SettingsLoadState = iota
	SettingsLoaded
	SettingsMissing
)

// SettingsFetch loads the singleton settings row.
type SettingsFetch func(ctx context.Context) (*models.AppSettings, error)

// SettingsState tracks the required-configuration load for a view.
type SettingsState struct {
	fetch SettingsFetch

	mu       sync.Mutex
	state    SettingsLoadState
	settings *models.AppSettings
	lastErr  error
}

func NewSettingsState(fetch SettingsFetch) *SettingsState {
	return &SettingsState{fetch: fetch}
}

// Load fetches the settings row. A missing row moves the state to
// SettingsMissing permanently until a later load finds the row again; a
// transient failure keeps the previous state and records the error.
func (s *SettingsState) Load(ctx context.Context) (*models.AppSettings, error) {
	settings, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(err, repository.ErrSettingsMissing) {
		s.state = SettingsMissing
		s.settings = nil
		s.lastErr = err
		return nil, err
	}
	if err != nil {
		s.lastErr = err
		return nil, err
	}
	s.state = SettingsLoaded
	s.settings = settings
	s.lastErr = nil
	return settings, nil
}

// State returns the current load state.
func (s *SettingsState) State() SettingsLoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the loaded settings, or nil unless state is SettingsLoaded.
func (s *SettingsState) Current() *models.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SettingsLoaded {
		return nil
	}
	return s.settings
}
