package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedge/tradedge/internal/domain"
	"github.com/tradedge/tradedge/internal/service"
	"github.com/tradedge/tradedge/internal/store/jsonfile"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newWebhookMux wires a real ingest service over a temp file store so the
// handler test exercises the full ingestion path.
func newWebhookMux(t *testing.T) (*http.ServeMux, *jsonfile.EventStore) {
	t.Helper()

	store, err := jsonfile.NewEventStore(t.TempDir()+"/data.json", testLogger())
	require.NoError(t, err)

	svc := service.NewIngestService(store, nil, testLogger())
	h := NewWebhookHandler(svc, "s3cret-path", testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /hook/{path}", h.Receive)
	return mux, store
}

func postJSON(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestWebhookWrongPathSegment(t *testing.T) {
	t.Parallel()

	mux, _ := newWebhookMux(t)
	rec := postJSON(mux, "/hook/guess", `{"dataSet":{"name":"AAPL","price":"100","action":"BUY","time":"t1","counter":"1"}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookMissingFieldIsBadRequest(t *testing.T) {
	t.Parallel()

	mux, store := newWebhookMux(t)
	rec := postJSON(mux, "/hook/s3cret-path", `{"dataSet":{"name":"AAPL","price":"100","action":"BUY","counter":"1"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	logs, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, logs, "a rejected request writes nothing")
}

func TestWebhookMalformedBodyIsBadRequest(t *testing.T) {
	t.Parallel()

	mux, _ := newWebhookMux(t)
	rec := postJSON(mux, "/hook/s3cret-path", `{"dataSet":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookAcceptsNumericPrice(t *testing.T) {
	t.Parallel()

	mux, store := newWebhookMux(t)

	rec := postJSON(mux, "/hook/s3cret-path", `{"dataSet":{"name":"TSLA","price":262.5,"action":"BUY","time":"2026-01-01T10:00:00Z","counter":"1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	logs, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, logs["TSLA"], 1)
	assert.Equal(t, domain.Price("262.5"), logs["TSLA"][0].Price)

	// A numeric close pairs with the stored open like any other.
	rec = postJSON(mux, "/hook/s3cret-path", `{"dataSet":{"name":"TSLA","price":300,"action":"EXIT","time":"2026-01-02T10:00:00Z","counter":"1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	logs, err = store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, logs["TSLA"], 3)
	assert.Equal(t, domain.TradeEvent{Price: "37.5", Action: "PnL", Time: "2026-01-02T10:00:00Z"}, logs["TSLA"][2])
}

func TestWebhookIngestAcknowledgesFilteredRecord(t *testing.T) {
	t.Parallel()

	mux, store := newWebhookMux(t)

	rec := postJSON(mux, "/hook/s3cret-path", `{"dataSet":{"name":"AAPL","price":"100","action":"buy","time":"2026-01-01T10:00:00Z","counter":"1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message      string            `json:"message"`
		ReceivedData domain.TradeEvent `json:"receivedData"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Data received successfully.", resp.Message)
	assert.Equal(t, domain.TradeEvent{Price: "100", Action: "BUY", Time: "2026-01-01T10:00:00Z"}, resp.ReceivedData)

	rec = postJSON(mux, "/hook/s3cret-path", `{"dataSet":{"name":"AAPL","price":"120","action":"EXIT","time":"2026-01-02T10:00:00Z","counter":"1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	logs, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, logs["AAPL"], 3, "BUY, EXIT, and the derived PnL")
	assert.Equal(t, domain.TradeEvent{Price: "20", Action: "PnL", Time: "2026-01-02T10:00:00Z"}, logs["AAPL"][2])
}
