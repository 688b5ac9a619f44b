// Package bus provides an in-process implementation of domain.SignalBus.
// Tradedge runs as a single process, so ingested-event notifications fan out
// over channels rather than an external broker.
package bus

import (
	"context"
	"log/slog"
	"sync"
)

// subscriberBuffer is the per-subscriber channel depth. Publish never blocks;
// a subscriber that falls this far behind starts losing messages.
const subscriberBuffer = 64

// Bus fans published payloads out to every subscriber of a channel.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[int]chan []byte
	nextID int
	logger *slog.Logger
}

// New creates an empty Bus.
func New(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[string]map[int]chan []byte),
		logger: logger.With(slog.String("component", "bus")),
	}
}

// Publish delivers payload to every current subscriber of channel. Delivery
// is best-effort: a full subscriber buffer drops the message for that
// subscriber only.
func (b *Bus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
			b.logger.WarnContext(ctx, "dropping message for slow subscriber",
				slog.String("channel", channel),
			)
		}
	}
	return nil
}

// Subscribe registers a new subscriber for channel. The returned channel is
// closed and deregistered when ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, subscriberBuffer)

	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]chan []byte)
	}
	id := b.nextID
	b.nextID++
	b.subs[channel][id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[channel], id)
		b.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}
