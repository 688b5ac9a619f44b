package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedge/tradedge/internal/domain"
)

func req(name, price, action, ts, counter string) domain.IngestRequest {
	return domain.IngestRequest{Name: name, Price: domain.Price(price), Action: action, Time: ts, Counter: counter}
}

func TestIngestValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  domain.IngestRequest
	}{
		{"missing_name", req("", "100", "BUY", "2026-01-01T10:00:00Z", "1")},
		{"missing_price", req("AAPL", "", "BUY", "2026-01-01T10:00:00Z", "1")},
		{"missing_action", req("AAPL", "100", "", "2026-01-01T10:00:00Z", "1")},
		{"missing_time", req("AAPL", "100", "BUY", "", "1")},
		{"missing_counter", req("AAPL", "100", "BUY", "2026-01-01T10:00:00Z", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newMemStore()
			svc := NewIngestService(store, nil, testLogger())

			_, err := svc.Ingest(context.Background(), tt.req)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Zero(t, store.saves, "validation failure must not touch the store")
		})
	}
}

func TestIngestNormalizesAction(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := NewIngestService(store, nil, testLogger())

	ack, err := svc.Ingest(context.Background(), req("AAPL", "100", "buy", "2026-01-01T10:00:00Z", "1"))
	require.NoError(t, err)
	assert.Equal(t, "BUY", ack.Action)
	assert.Equal(t, "BUY", store.logs["AAPL"][0].Action)
}

func TestIngestExitDerivesPnL(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.logs["AAPL"] = []domain.TradeEvent{
		{Price: "100", Action: "BUY", Time: "t1"},
	}
	svc := NewIngestService(store, nil, testLogger())

	ack, err := svc.Ingest(context.Background(), req("AAPL", "120", "EXIT", "t2", "1"))
	require.NoError(t, err)
	assert.Equal(t, domain.TradeEvent{Price: "120", Action: "EXIT", Time: "t2"}, ack,
		"the ack is the filtered record, not the derived PnL")

	assert.Equal(t, []domain.TradeEvent{
		{Price: "100", Action: "BUY", Time: "t1"},
		{Price: "120", Action: "EXIT", Time: "t2"},
		{Price: "20", Action: "PnL", Time: "t2"},
	}, store.logs["AAPL"])
}

func TestIngestShortOnEmptyLog(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := NewIngestService(store, nil, testLogger())

	_, err := svc.Ingest(context.Background(), req("TSLA", "50", "SHORT", "t1", "-2"))
	require.NoError(t, err)

	assert.Equal(t, []domain.TradeEvent{
		{Price: "50", Action: "SHORT", Time: "t1"},
	}, store.logs["TSLA"], "no prior BUY means no PnL")
}

func TestIngestBuyReversalOrdering(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.logs["TSLA"] = []domain.TradeEvent{
		{Price: "50", Action: "SHORT", Time: "t1"},
	}
	svc := NewIngestService(store, nil, testLogger())

	_, err := svc.Ingest(context.Background(), req("TSLA", "40", "BUY", "t2", "2"))
	require.NoError(t, err)

	assert.Equal(t, []domain.TradeEvent{
		{Price: "50", Action: "SHORT", Time: "t1"},
		{Price: "10", Action: "PnL", Time: "t2"},
		{Price: "40", Action: "BUY", Time: "t2"},
	}, store.logs["TSLA"], "PnL lands between the prior SHORT and the new BUY")
}

func TestIngestPublishesAppendedEvents(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.logs["AAPL"] = []domain.TradeEvent{
		{Price: "100", Action: "BUY", Time: "t1"},
	}
	b := newMemBus()
	svc := NewIngestService(store, b, testLogger())

	_, err := svc.Ingest(context.Background(), req("AAPL", "120", "EXIT", "t2", "1"))
	require.NoError(t, err)

	require.Len(t, b.published[EventsChannel], 2, "the EXIT and its PnL are both published")

	var first, second streamEvent
	require.NoError(t, json.Unmarshal(b.published[EventsChannel][0], &first))
	require.NoError(t, json.Unmarshal(b.published[EventsChannel][1], &second))
	assert.False(t, first.PnL)
	assert.True(t, second.PnL)
	assert.Equal(t, domain.Price("20"), second.Price)
}
