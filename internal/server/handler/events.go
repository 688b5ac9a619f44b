package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tradedge/tradedge/internal/domain"
)

// HistoryReader defines what the events handler requires from the service
// layer.
type HistoryReader interface {
	History(ctx context.Context, name string, now time.Time) ([]domain.TradeEvent, error)
}

// EventsHandler serves the instrument history query interface.
type EventsHandler struct {
	history HistoryReader
	logger  *slog.Logger
}

// NewEventsHandler creates an EventsHandler with the given service and logger.
func NewEventsHandler(history HistoryReader, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		history: history,
		logger:  logger,
	}
}

// List returns the recent-window event list for the named instrument. A
// request without a name returns an empty list, never the full mapping.
// GET /api/events?name=AAPL
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	events, err := h.history.History(r.Context(), name, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no data found for instrument: %s", name))
			return
		}
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: history failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if events == nil {
		events = []domain.TradeEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}
