package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/tradedge/tradedge/internal/domain"
)

// LicenseStore persists the administrative license list as one JSON array.
type LicenseStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewLicenseStore creates a LicenseStore backed by the document at path,
// initializing it to an empty list if it does not exist yet.
func NewLicenseStore(path string, logger *slog.Logger) (*LicenseStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty license store path", domain.ErrStorage)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve license store path: %v", domain.ErrStorage, err)
	}
	s := &LicenseStore{
		path:   abs,
		logger: logger.With(slog.String("component", "license_store")),
	}
	if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
		if err := writeDocument(abs, []domain.License{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load returns the current license list.
func (s *LicenseStore) Load(ctx context.Context) ([]domain.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.License{}, nil
		}
		return nil, fmt.Errorf("%w: read license document: %v", domain.ErrStorage, err)
	}

	var licenses []domain.License
	if err := json.Unmarshal(data, &licenses); err != nil {
		if json.Valid(data) {
			s.logger.WarnContext(ctx, "license document is not a list, treating as empty",
				slog.String("path", s.path),
			)
			return []domain.License{}, nil
		}
		return nil, fmt.Errorf("%w: decode license document: %v", domain.ErrStorage, err)
	}
	if licenses == nil {
		licenses = []domain.License{}
	}
	return licenses, nil
}

// Save atomically overwrites the license list.
func (s *LicenseStore) Save(ctx context.Context, licenses []domain.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeDocument(s.path, licenses)
}
