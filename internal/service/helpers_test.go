package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/tradedge/tradedge/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory domain.EventStore for service tests.
type memStore struct {
	logs  map[string][]domain.TradeEvent
	saves int
}

func newMemStore() *memStore {
	return &memStore{logs: map[string][]domain.TradeEvent{}}
}

func (m *memStore) LoadAll(ctx context.Context) (map[string][]domain.TradeEvent, error) {
	return m.logs, nil
}

func (m *memStore) SaveAll(ctx context.Context, logs map[string][]domain.TradeEvent) error {
	m.logs = logs
	m.saves++
	return nil
}

func (m *memStore) Update(ctx context.Context, fn func(logs map[string][]domain.TradeEvent) error) error {
	if err := fn(m.logs); err != nil {
		return err
	}
	m.saves++
	return nil
}

// memLicenseStore is an in-memory domain.LicenseStore.
type memLicenseStore struct {
	licenses []domain.License
}

func (m *memLicenseStore) Load(ctx context.Context) ([]domain.License, error) {
	return append([]domain.License(nil), m.licenses...), nil
}

func (m *memLicenseStore) Save(ctx context.Context, licenses []domain.License) error {
	m.licenses = licenses
	return nil
}

// memBus records published payloads.
type memBus struct {
	published map[string][][]byte
}

func newMemBus() *memBus {
	return &memBus{published: map[string][][]byte{}}
}

func (m *memBus) Publish(ctx context.Context, channel string, payload []byte) error {
	m.published[channel] = append(m.published[channel], payload)
	return nil
}

func (m *memBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

// fakeSender records broadcast payloads and optionally fails.
type fakeSender struct {
	payloads []string
	fail     error
}

func (f *fakeSender) Send(ctx context.Context, payload string) error {
	if f.fail != nil {
		return f.fail
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeSender) Name() string { return "fake" }
