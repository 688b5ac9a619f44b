// Package jsonfile implements the domain store contracts over single JSON
// documents on disk. The event document is a mapping from instrument name to
// its ordered event array; the license document is a flat array. Writes go
// through a temp file plus rename so a crash mid-write never leaves a
// half-written document behind.
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

// EventStore persists the instrument-log mapping as one JSON document. The
// mutex serializes every load/save cycle, so concurrent ingestions cannot
// overwrite each other's appends.
type EventStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewEventStore creates an EventStore backed by the document at path,
// initializing it to an empty mapping if it does not exist yet.
func NewEventStore(path string, logger *slog.Logger) (*EventStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty event store path", domain.ErrStorage)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve event store path: %v", domain.ErrStorage, err)
	}
	s := &EventStore{
		path:   abs,
		logger: logger.With(slog.String("component", "event_store")),
	}
	if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
		if err := writeDocument(abs, map[string][]domain.TradeEvent{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadAll returns the full instrument-log mapping.
func (s *EventStore) LoadAll(ctx context.Context) (map[string][]domain.TradeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// SaveAll atomically overwrites the persisted mapping.
func (s *EventStore) SaveAll(ctx context.Context, logs map[string][]domain.TradeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeDocument(s.path, logs)
}

// Update runs fn over the current mapping and persists the result if fn
// returns nil. The lock is held across the whole read-modify-write cycle. A
// failure between load and save leaves the document unchanged; nothing is
// retried or rolled back.
func (s *EventStore) Update(ctx context.Context, fn func(logs map[string][]domain.TradeEvent) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	if err := fn(logs); err != nil {
		return err
	}
	return writeDocument(s.path, logs)
}

// loadLocked reads and decodes the document. A missing file or a valid JSON
// payload that is not a mapping yields an empty mapping; invalid JSON or an
// unreadable file is a storage failure.
func (s *EventStore) loadLocked(ctx context.Context) (map[string][]domain.TradeEvent, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string][]domain.TradeEvent{}, nil
		}
		return nil, fmt.Errorf("%w: read event document: %v", domain.ErrStorage, err)
	}

	var logs map[string][]domain.TradeEvent
	if err := json.Unmarshal(data, &logs); err != nil {
		if json.Valid(data) {
			// Legacy or corrupt-but-parsable state: start over from an
			// empty mapping instead of wedging every request.
			s.logger.WarnContext(ctx, "event document is not an instrument mapping, treating as empty",
				slog.String("path", s.path),
			)
			return map[string][]domain.TradeEvent{}, nil
		}
		return nil, fmt.Errorf("%w: decode event document: %v", domain.ErrStorage, err)
	}
	if logs == nil {
		logs = map[string][]domain.TradeEvent{}
	}
	return logs, nil
}

// writeDocument marshals v and atomically replaces the file at path.
func writeDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", domain.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp document: %v", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write document: %v", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close document: %v", domain.ErrStorage, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace document: %v", domain.ErrStorage, err)
	}
	return nil
}
