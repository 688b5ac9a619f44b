package bus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	b := New(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub1, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)
	sub2, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)
	other, err := b.Subscribe(ctx, "other")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "events", []byte("hello")))

	assert.Equal(t, []byte("hello"), <-sub1)
	assert.Equal(t, []byte("hello"), <-sub2)
	select {
	case msg := <-other:
		t.Fatalf("unexpected message on other channel: %s", msg)
	default:
	}
}

func TestSubscribeClosesOnCancel(t *testing.T) {
	t.Parallel()

	b := New(testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-sub:
		assert.False(t, ok, "channel is closed after cancel")
	case <-time.After(time.Second):
		t.Fatal("subscriber channel was not closed")
	}

	// Publishing after the subscriber is gone must not panic or block.
	require.NoError(t, b.Publish(context.Background(), "events", []byte("late")))
}

func TestPublishDropsWhenSubscriberIsFull(t *testing.T) {
	t.Parallel()

	b := New(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)

	for i := 0; i < subscriberBuffer+10; i++ {
		require.NoError(t, b.Publish(ctx, "events", []byte("x")))
	}

	assert.Len(t, sub, subscriberBuffer, "overflow is dropped, not queued")
}
