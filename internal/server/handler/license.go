package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tradedge/tradedge/internal/domain"
	"github.com/tradedge/tradedge/internal/service"
)

// LicenseAdmin defines what the license handler requires from the service
// layer.
type LicenseAdmin interface {
	List(ctx context.Context) ([]domain.License, error)
	Add(ctx context.Context, name, key string) (domain.License, error)
	Delete(ctx context.Context, id string) error
	Broadcast(ctx context.Context, template string) (service.BroadcastResult, error)
}

// LicenseHandler serves the administrative license CRUD surface.
type LicenseHandler struct {
	licenses LicenseAdmin
	logger   *slog.Logger
}

// NewLicenseHandler creates a LicenseHandler with the given service and logger.
func NewLicenseHandler(licenses LicenseAdmin, logger *slog.Logger) *LicenseHandler {
	return &LicenseHandler{
		licenses: licenses,
		logger:   logger,
	}
}

// listLicensesResponse wraps the license list response.
type listLicensesResponse struct {
	Licenses []domain.License `json:"licenses"`
}

// List returns all licenses.
// GET /admin/licenses
func (h *LicenseHandler) List(w http.ResponseWriter, r *http.Request) {
	licenses, err := h.licenses.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list licenses failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list licenses")
		return
	}
	if licenses == nil {
		licenses = []domain.License{}
	}
	writeJSON(w, http.StatusOK, listLicensesResponse{Licenses: licenses})
}

// addLicenseRequest is the body for adding a license.
type addLicenseRequest struct {
	Name       string `json:"name"`
	LicenseKey string `json:"license_key"`
}

// Add appends a new license.
// POST /admin/licenses
func (h *LicenseHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addLicenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	lic, err := h.licenses.Add(r.Context(), req.Name, req.LicenseKey)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: add license failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to add license")
		return
	}

	writeJSON(w, http.StatusCreated, lic)
}

// Delete removes a license by its ID.
// DELETE /admin/licenses/{id}
func (h *LicenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing license id")
		return
	}

	if err := h.licenses.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "license not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete license failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete license")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// broadcastRequest is the body for a license broadcast.
type broadcastRequest struct {
	Data string `json:"data"`
}

// Broadcast renders the template per license and forwards it to the
// connector (when broadcasting is enabled).
// POST /admin/licenses/broadcast
func (h *LicenseHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.licenses.Broadcast(r.Context(), req.Data)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: broadcast failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to broadcast")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
