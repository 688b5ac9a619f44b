package domain

import (
	"context"
	"time"
)

// EventStore persists the single shared document mapping instrument name to
// its ordered event log. A name absent from the mapping has an implicitly
// empty log. All components that touch persisted events go through this
// contract; nothing reads or writes the document directly.
type EventStore interface {
	// LoadAll returns the full mapping. A missing or structurally wrong
	// document yields an empty mapping; an unreadable one yields ErrStorage.
	LoadAll(ctx context.Context) (map[string][]TradeEvent, error)

	// SaveAll atomically overwrites the persisted document.
	SaveAll(ctx context.Context, logs map[string][]TradeEvent) error

	// Update runs fn over the current mapping under the store's write lock
	// and persists the mutated mapping if fn returns nil. This serializes
	// the read-modify-write cycle so concurrent ingestions cannot overwrite
	// each other's appends.
	Update(ctx context.Context, fn func(logs map[string][]TradeEvent) error) error
}

// LicenseStore persists the administrative license list.
type LicenseStore interface {
	Load(ctx context.Context) ([]License, error)
	Save(ctx context.Context, licenses []License) error
}

// RateLimiter limits requests per key within a time window.
type RateLimiter interface {
	// Allow reports whether a request for key is permitted and counts it.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus is a publish/subscribe channel for ingested-event notifications.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
