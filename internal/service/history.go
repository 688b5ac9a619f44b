package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tradedge/tradedge/internal/domain"
	"github.com/tradedge/tradedge/internal/engine"
)

// HistoryService serves the read path: prune an instrument's log to the
// retention horizon, persist the pruned log, and return the recent-activity
// window.
type HistoryService struct {
	store         domain.EventStore
	retentionDays int
	windowDays    int
	logger        *slog.Logger
}

// NewHistoryService creates a HistoryService with the given windows in days.
func NewHistoryService(store domain.EventStore, retentionDays, windowDays int, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		store:         store,
		retentionDays: retentionDays,
		windowDays:    windowDays,
		logger:        logger.With(slog.String("component", "history_service")),
	}
}

// History returns the recent-window slice of the named instrument's log.
//
// Reading is destructive: events past the retention horizon are removed and
// the pruned log is written back before the window is computed. An empty name
// returns an empty list rather than the full mapping; that mirrors the
// upstream contract and is likely a defect there, kept here for
// compatibility.
func (s *HistoryService) History(ctx context.Context, name string, now time.Time) ([]domain.TradeEvent, error) {
	if name == "" {
		return []domain.TradeEvent{}, nil
	}

	var window []domain.TradeEvent
	err := s.store.Update(ctx, func(logs map[string][]domain.TradeEvent) error {
		log, ok := logs[name]
		if !ok {
			return fmt.Errorf("%w: no data for instrument %q", domain.ErrNotFound, name)
		}

		pruned, err := engine.Prune(log, now, s.retentionDays)
		if err != nil {
			return err
		}
		logs[name] = pruned

		window, err = engine.RecentWindow(pruned, now, s.windowDays)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "history_service: served read",
		slog.String("name", name),
		slog.Int("events", len(window)),
	)
	return window, nil
}
