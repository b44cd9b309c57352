package localstore

import (
	"context"

	"github.com/calculadrink/platform/internal/domain"
)

// SettingsRepository exposes the store as a domain.SettingsRepository.
type SettingsRepository struct {
	store *Store
}

// Settings returns the settings repository view of the store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{store: s}
}

// Get reads the stored configuration singleton.
func (r *SettingsRepository) Get(_ context.Context) (*domain.Settings, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.Settings == nil {
		return nil, domain.ErrNotFound
	}
	cp := *s.data.Settings
	return &cp, nil
}

// Save replaces the configuration singleton wholesale.
func (r *SettingsRepository) Save(_ context.Context, settings *domain.Settings) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *settings
	s.data.Settings = &cp
	return s.flush()
}
