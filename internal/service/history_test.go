package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedge/tradedge/internal/domain"
	"github.com/tradedge/tradedge/internal/engine"
)

func stamped(action, price string, now time.Time, age time.Duration) domain.TradeEvent {
	return domain.TradeEvent{
		Price:  domain.Price(price),
		Action: action,
		Time:   now.Add(-age).Format(engine.TimeLayout),
	}
}

func TestHistoryUnknownInstrument(t *testing.T) {
	t.Parallel()

	svc := NewHistoryService(newMemStore(), 60, 31, testLogger())

	_, err := svc.History(context.Background(), "GME", time.Now().UTC())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryEmptyNameReturnsNothing(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.logs["AAPL"] = []domain.TradeEvent{{Price: "100", Action: "BUY", Time: "2026-01-01T10:00:00Z"}}
	svc := NewHistoryService(store, 60, 31, testLogger())

	events, err := svc.History(context.Background(), "", time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, events, "reading without a name yields an empty list, never the full mapping")
	assert.Zero(t, store.saves, "the quirk path does not touch the store")
}

func TestHistoryPrunesAndPersists(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	stale := stamped("BUY", "90", now, 70*day)
	old := stamped("BUY", "100", now, 40*day)
	recent := stamped("EXIT", "120", now, 2*day)

	store := newMemStore()
	store.logs["AAPL"] = []domain.TradeEvent{stale, old, recent}
	svc := NewHistoryService(store, 60, 31, testLogger())

	events, err := svc.History(context.Background(), "AAPL", now)
	require.NoError(t, err)

	assert.Equal(t, []domain.TradeEvent{recent}, events,
		"only the recent window is returned")
	assert.Equal(t, []domain.TradeEvent{old, recent}, store.logs["AAPL"],
		"the read persists the 60-day prune but keeps events outside the 31-day window")
	assert.Equal(t, 1, store.saves)
}

func TestHistoryFailsOnBadTimestamp(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.logs["AAPL"] = []domain.TradeEvent{{Price: "100", Action: "BUY", Time: "not-a-time"}}
	svc := NewHistoryService(store, 60, 31, testLogger())

	_, err := svc.History(context.Background(), "AAPL", time.Now().UTC())
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, store.saves, "a failed prune persists nothing")
}
