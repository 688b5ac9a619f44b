package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tradedge/tradedge/internal/domain"
)

// Ingester defines what the webhook handler requires from the service layer.
type Ingester interface {
	Ingest(ctx context.Context, req domain.IngestRequest) (domain.TradeEvent, error)
}

// WebhookHandler serves the trading-webhook ingress. The route carries a
// secret path segment instead of auth headers because the upstream signal
// source can only be pointed at a URL.
type WebhookHandler struct {
	ingester    Ingester
	webhookPath string
	logger      *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler gated by the configured secret
// path segment.
func NewWebhookHandler(ingester Ingester, webhookPath string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		ingester:    ingester,
		webhookPath: webhookPath,
		logger:      logger,
	}
}

// webhookBody is the envelope posted by the signal source.
type webhookBody struct {
	DataSet domain.IngestRequest `json:"dataSet"`
}

// Receive ingests one trading signal.
// POST /hook/{path}
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if pathParam(r, "path") != h.webhookPath {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var body webhookBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON format or missing fields")
		return
	}

	ev, err := h.ingester.Ingest(r.Context(), body.DataSet)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, "invalid JSON format or missing fields")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: ingest failed",
			slog.String("name", body.DataSet.Name),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Data received successfully.",
		"receivedData": ev,
	})
}
