// Package domain defines the core types and store contracts shared by the
// tradedge services: trade events, instrument logs, licenses, and the error
// kinds surfaced at the request boundary.
package domain

import "encoding/json"

// Trade action labels. BUY and SHORT open positions, EXIT and COVER close
// them. SELL is accepted as a synonym for EXIT when closing a long. ActionPnL
// marks a derived realized profit-and-loss record, never an ingested one.
const (
	ActionBuy   = "BUY"
	ActionSell  = "SELL"
	ActionExit  = "EXIT"
	ActionShort = "SHORT"
	ActionCover = "COVER"
	ActionPnL   = "PnL"
)

// Counter values that arm opposing-position matching on SHORT and BUY
// signals. Only these two values are significant; anything else disables
// PnL derivation for the reversal actions.
const (
	CounterReverseShort = "-2" // SHORT closing out a prior BUY
	CounterReverseLong  = "2"  // BUY closing out a prior SHORT
)

// Price is a decimal value carried as text. Webhook senders emit it as
// either a JSON string or a JSON number; both decode to the raw digits
// unchanged, and it always marshals back as a string. Arithmetic parses it
// to float64 and formats the result back.
type Price string

// UnmarshalJSON accepts a JSON string or a JSON number, keeping the exact
// textual form of the value in both cases.
func (p *Price) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = Price(n)
	return nil
}

// TradeEvent is one persisted entry in an instrument's log. Events are
// immutable once written; the only removal path is the retention prune.
type TradeEvent struct {
	Price  Price  `json:"price"`
	Action string `json:"action"`
	Time   string `json:"time"`
}

// IsPnL reports whether the event is a derived PnL record.
func (e TradeEvent) IsPnL() bool {
	return e.Action == ActionPnL
}

// IngestRequest is the payload of one incoming webhook signal. Counter is a
// string-encoded signed integer used only as a secondary gate for SHORT/BUY
// reversal matching; it is not persisted.
type IngestRequest struct {
	Name    string `json:"name"`
	Price   Price  `json:"price"`
	Action  string `json:"action"`
	Time    string `json:"time"`
	Counter string `json:"counter"`
}

// Event returns the persistable projection of the request: price, action,
// and time only. The caller is expected to have normalized Action first.
func (r IngestRequest) Event() TradeEvent {
	return TradeEvent{
		Price:  r.Price,
		Action: r.Action,
		Time:   r.Time,
	}
}
