// Package localstore is the single-device fallback used when the database is
// disabled: one JSON file holding the company list, each company's team and
// the platform settings. It implements the same repository interfaces as the
// Postgres stack, so the services above it cannot tell the difference.
//
// Duplicate checks here compare only document and email inside the local
// file; online mode relies entirely on the database's unique constraints.
package localstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/calculadrink/platform/internal/domain"
)

type companyRecord struct {
	domain.Company
	PasswordHash string `json:"passwordHash"`
}

type teamRecord struct {
	domain.TeamUser
	PasswordHash string `json:"passwordHash"`
}

type fileData struct {
	Companies []companyRecord  `json:"companies"`
	Team      []teamRecord     `json:"team"`
	Settings  *domain.Settings `json:"settings,omitempty"`
}

// Store is a file-backed key-value store for offline single-device mode.
type Store struct {
	mu     sync.Mutex
	path   string
	data   fileData
	logger *slog.Logger
}

// Open loads (or initializes) the store file at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{path: path, logger: logger}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local store: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse local store: %w", err)
	}

	logger.Info("local store loaded",
		slog.String("path", path),
		slog.Int("companies", len(s.data.Companies)),
	)
	return s, nil
}

// flush writes the file atomically. Callers must hold the lock.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode local store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write local store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace local store: %w", err)
	}
	return nil
}
