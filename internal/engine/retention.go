package engine

import (
	"fmt"
	"time"

	"github.com/tradedge/tradedge/internal/domain"
)

// TimeLayout is the required event timestamp format: UTC ISO-8601 with a
// literal Z suffix. Anything else fails the read that touches it.
const TimeLayout = "2006-01-02T15:04:05Z"

// Default retention windows, in days.
const (
	DefaultRetentionDays    = 60
	DefaultRecentWindowDays = 31
)

// ParseEventTime parses an event timestamp in TimeLayout.
func ParseEventTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unparsable event time %q", domain.ErrValidation, s)
	}
	return t, nil
}

// Prune returns the log without events older than days before now. The
// caller persists the result; pruning is the only way events leave the log.
// It is idempotent for a fixed now.
func Prune(log []domain.TradeEvent, now time.Time, days int) ([]domain.TradeEvent, error) {
	return keepSince(log, now.Add(-time.Duration(days)*24*time.Hour))
}

// RecentWindow returns the slice of log within the last days before now. It
// is non-destructive and is computed from the already-pruned log, so it can
// never exceed the persisted set.
func RecentWindow(log []domain.TradeEvent, now time.Time, days int) ([]domain.TradeEvent, error) {
	return keepSince(log, now.Add(-time.Duration(days)*24*time.Hour))
}

// keepSince keeps events at or after cutoff. An unparsable timestamp fails
// the whole operation; there is no partial tolerance.
func keepSince(log []domain.TradeEvent, cutoff time.Time) ([]domain.TradeEvent, error) {
	kept := make([]domain.TradeEvent, 0, len(log))
	for _, ev := range log {
		t, err := ParseEventTime(ev.Time)
		if err != nil {
			return nil, err
		}
		if !t.Before(cutoff) {
			kept = append(kept, ev)
		}
	}
	return kept, nil
}
