// Package service orchestrates the domain stores and the rule engine behind
// the HTTP surface: webhook ingestion, history reads, and license
// administration.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tradedge/tradedge/internal/domain"
	"github.com/tradedge/tradedge/internal/engine"
)

// EventsChannel is the signal-bus channel carrying ingested-event payloads.
const EventsChannel = "events"

// IngestService handles one incoming webhook signal: validate, normalize,
// resolve the append-set against the instrument's current log, persist.
type IngestService struct {
	store  domain.EventStore
	bus    domain.SignalBus
	logger *slog.Logger
}

// NewIngestService creates an IngestService. The bus may be nil when no live
// stream consumer is wired.
func NewIngestService(store domain.EventStore, bus domain.SignalBus, logger *slog.Logger) *IngestService {
	return &IngestService{
		store:  store,
		bus:    bus,
		logger: logger.With(slog.String("component", "ingest_service")),
	}
}

// Ingest validates and records one trade signal. The returned event is the
// canonical filtered record that was received, not any derived PnL entry.
// The whole read-modify-write cycle runs under the store's lock, so two
// simultaneous ingestions cannot lose each other's appends.
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (domain.TradeEvent, error) {
	if err := validateRequest(req); err != nil {
		return domain.TradeEvent{}, err
	}

	req.Action = strings.ToUpper(req.Action)
	ev := req.Event()

	var appended []domain.TradeEvent
	err := s.store.Update(ctx, func(logs map[string][]domain.TradeEvent) error {
		set, err := engine.Resolve(ev, req.Counter, logs[req.Name])
		if err != nil {
			return err
		}
		logs[req.Name] = append(logs[req.Name], set...)
		appended = set
		return nil
	})
	if err != nil {
		return domain.TradeEvent{}, fmt.Errorf("ingest_service: record %q: %w", req.Name, err)
	}

	s.publish(ctx, req.Name, appended)

	s.logger.InfoContext(ctx, "ingest_service: recorded signal",
		slog.String("name", req.Name),
		slog.String("action", ev.Action),
		slog.Int("appended", len(appended)),
	)

	return ev, nil
}

// streamEvent is the wire form of one appended event on the signal bus. The
// pnl flag lets stream consumers separate derived records from raw signals.
type streamEvent struct {
	Name   string       `json:"name"`
	Price  domain.Price `json:"price"`
	Action string       `json:"action"`
	Time   string       `json:"time"`
	PnL    bool         `json:"pnl"`
}

// publish pushes each appended event onto the signal bus for live stream
// consumers. Publish failures are logged, never surfaced to the caller.
func (s *IngestService) publish(ctx context.Context, name string, appended []domain.TradeEvent) {
	if s.bus == nil {
		return
	}
	for _, ev := range appended {
		payload, _ := json.Marshal(streamEvent{
			Name:   name,
			Price:  ev.Price,
			Action: ev.Action,
			Time:   ev.Time,
			PnL:    ev.IsPnL(),
		})
		if err := s.bus.Publish(ctx, EventsChannel, payload); err != nil {
			s.logger.WarnContext(ctx, "ingest_service: publish event failed",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
		}
	}
}

// validateRequest checks that every required field is present. Missing any
// field fails the whole request before anything is written.
func validateRequest(req domain.IngestRequest) error {
	missing := func(field string) error {
		return fmt.Errorf("%w: missing required field %q", domain.ErrValidation, field)
	}
	switch {
	case req.Name == "":
		return missing("name")
	case req.Price == "":
		return missing("price")
	case req.Action == "":
		return missing("action")
	case req.Time == "":
		return missing("time")
	case req.Counter == "":
		return missing("counter")
	}
	return nil
}
