// Package engine holds the stateful rules of the event log: classifying an
// incoming trade action against an instrument's existing sequence, deriving
// realized-PnL records when an opposing position closes, and applying the
// retention windows on the read path.
package engine

import (
	"fmt"
	"strconv"

	"github.com/tradedge/tradedge/internal/domain"
)

// Resolve classifies one normalized incoming event against the instrument's
// current log and returns the ordered list of events to append (one or two
// entries). It is pure: matching runs only against the supplied snapshot,
// never against anything appended by this same call.
//
// Matching rules:
//   - EXIT/SELL pairs with the most recent BUY; PnL = exit - buy.
//   - COVER pairs with the most recent SHORT; PnL = short - cover.
//   - SHORT with counter "-2" pairs with the most recent BUY; PnL =
//     buy - short, appended before the SHORT itself.
//   - BUY with counter "2" pairs with the most recent SHORT; PnL =
//     short - buy, appended before the BUY itself.
//   - Any other action appends verbatim with no derivation.
//
// The scan is strictly backward, exact action label, first hit wins; multiple
// opens since the last close are not aggregated.
func Resolve(ev domain.TradeEvent, counter string, log []domain.TradeEvent) ([]domain.TradeEvent, error) {
	switch ev.Action {
	case domain.ActionExit, domain.ActionSell:
		buy, ok := lastByAction(log, domain.ActionBuy)
		if !ok {
			return []domain.TradeEvent{ev}, nil
		}
		pnl, err := realized(ev.Price, buy.Price, ev.Time)
		if err != nil {
			return nil, err
		}
		return []domain.TradeEvent{ev, pnl}, nil

	case domain.ActionCover:
		short, ok := lastByAction(log, domain.ActionShort)
		if !ok {
			return []domain.TradeEvent{ev}, nil
		}
		pnl, err := realized(short.Price, ev.Price, ev.Time)
		if err != nil {
			return nil, err
		}
		return []domain.TradeEvent{ev, pnl}, nil

	case domain.ActionShort:
		if counter != domain.CounterReverseShort {
			return []domain.TradeEvent{ev}, nil
		}
		buy, ok := lastByAction(log, domain.ActionBuy)
		if !ok {
			return []domain.TradeEvent{ev}, nil
		}
		pnl, err := realized(buy.Price, ev.Price, ev.Time)
		if err != nil {
			return nil, err
		}
		// The realized record lands ahead of the reversal itself.
		return []domain.TradeEvent{pnl, ev}, nil

	case domain.ActionBuy:
		if counter != domain.CounterReverseLong {
			return []domain.TradeEvent{ev}, nil
		}
		short, ok := lastByAction(log, domain.ActionShort)
		if !ok {
			return []domain.TradeEvent{ev}, nil
		}
		pnl, err := realized(short.Price, ev.Price, ev.Time)
		if err != nil {
			return nil, err
		}
		return []domain.TradeEvent{pnl, ev}, nil

	default:
		// Unknown actions pass through untouched so new upstream signal
		// types are recorded rather than rejected.
		return []domain.TradeEvent{ev}, nil
	}
}

// realized builds a PnL event whose price is minuend - subtrahend. Prices are
// string-typed on the wire; the delta is computed in float64 and formatted
// back, so precision drift on awkward decimals is accepted rather than hidden
// behind rounding.
func realized(minuend, subtrahend domain.Price, ts string) (domain.TradeEvent, error) {
	a, err := strconv.ParseFloat(string(minuend), 64)
	if err != nil {
		return domain.TradeEvent{}, fmt.Errorf("%w: price %q is not numeric", domain.ErrValidation, minuend)
	}
	b, err := strconv.ParseFloat(string(subtrahend), 64)
	if err != nil {
		return domain.TradeEvent{}, fmt.Errorf("%w: price %q is not numeric", domain.ErrValidation, subtrahend)
	}
	return domain.TradeEvent{
		Price:  domain.Price(strconv.FormatFloat(a-b, 'f', -1, 64)),
		Action: domain.ActionPnL,
		Time:   ts,
	}, nil
}

// lastByAction scans the log from the end toward the start and returns the
// first event with the exact action label. Insertion order is the matching
// order; out-of-order timestamps do not override sequence position.
func lastByAction(log []domain.TradeEvent, action string) (domain.TradeEvent, bool) {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Action == action {
			return log[i], true
		}
	}
	return domain.TradeEvent{}, false
}
