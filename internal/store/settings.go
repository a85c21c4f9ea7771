package store

import (
	"sync"

	"stationeye/internal/model"
)

type SettingsStore struct {
	mu       sync.RWMutex
	settings model.Settings
}

func NewSettingsStore(initial model.Settings) *SettingsStore {
	return &SettingsStore{settings: initial}
}

func (s *SettingsStore) Get() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *SettingsStore) Confidence() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Confidence
}

// Update applies the patch and returns the resulting settings. Range checks are the
// caller's job.
func (s *SettingsStore) Update(patch model.SettingsPatch) model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = s.settings.Apply(patch)
	return s.settings
}
