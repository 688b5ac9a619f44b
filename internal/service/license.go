package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tradedge/tradedge/internal/domain"
	"github.com/tradedge/tradedge/internal/notify"
)

// licensePlaceholder is replaced by each license key when a broadcast
// template is rendered.
const licensePlaceholder = "{license}"

// BroadcastOutcome records the result of sending one rendered payload.
type BroadcastOutcome struct {
	License string `json:"license"`
	Name    string `json:"name"`
	Status  string `json:"status"`
}

// BroadcastResult summarizes a broadcast run.
type BroadcastResult struct {
	Status  string             `json:"status"`
	Success []BroadcastOutcome `json:"success,omitempty"`
	Errors  []BroadcastOutcome `json:"errors,omitempty"`
}

// LicenseService manages the administrative license list and the webhook
// broadcast to license holders.
type LicenseService struct {
	store            domain.LicenseStore
	sender           notify.Sender
	broadcastEnabled bool
	logger           *slog.Logger
}

// NewLicenseService creates a LicenseService. Broadcasting stays inert unless
// broadcastEnabled is set and a sender is provided; by default a broadcast
// request only acknowledges the template, matching the upstream behavior
// where the send loop is unreachable.
func NewLicenseService(store domain.LicenseStore, sender notify.Sender, broadcastEnabled bool, logger *slog.Logger) *LicenseService {
	return &LicenseService{
		store:            store,
		sender:           sender,
		broadcastEnabled: broadcastEnabled,
		logger:           logger.With(slog.String("component", "license_service")),
	}
}

// List returns all licenses.
func (s *LicenseService) List(ctx context.Context) ([]domain.License, error) {
	licenses, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("license_service: list: %w", err)
	}
	return licenses, nil
}

// Add appends a new license with a generated ID and returns it.
func (s *LicenseService) Add(ctx context.Context, name, key string) (domain.License, error) {
	if name == "" || key == "" {
		return domain.License{}, fmt.Errorf("%w: name and license_key are required", domain.ErrValidation)
	}

	licenses, err := s.store.Load(ctx)
	if err != nil {
		return domain.License{}, fmt.Errorf("license_service: add: %w", err)
	}

	lic := domain.License{
		ID:         uuid.NewString(),
		Name:       name,
		LicenseKey: key,
	}
	licenses = append(licenses, lic)

	if err := s.store.Save(ctx, licenses); err != nil {
		return domain.License{}, fmt.Errorf("license_service: add: %w", err)
	}

	s.logger.InfoContext(ctx, "license_service: added license",
		slog.String("id", lic.ID),
		slog.String("name", lic.Name),
	)
	return lic, nil
}

// Delete removes the license with the given ID.
func (s *LicenseService) Delete(ctx context.Context, id string) error {
	licenses, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("license_service: delete: %w", err)
	}

	kept := licenses[:0]
	found := false
	for _, lic := range licenses {
		if lic.ID == id {
			found = true
			continue
		}
		kept = append(kept, lic)
	}
	if !found {
		return fmt.Errorf("%w: license %q", domain.ErrNotFound, id)
	}

	if err := s.store.Save(ctx, kept); err != nil {
		return fmt.Errorf("license_service: delete: %w", err)
	}

	s.logger.InfoContext(ctx, "license_service: deleted license",
		slog.String("id", id),
	)
	return nil
}

// Broadcast renders the template once per license and posts it to the
// connector. When broadcasting is disabled (the default) the template is
// only logged and acknowledged; nothing leaves the process.
func (s *LicenseService) Broadcast(ctx context.Context, template string) (BroadcastResult, error) {
	s.logger.InfoContext(ctx, "license_service: broadcast template received",
		slog.Int("template_len", len(template)),
	)

	if !s.broadcastEnabled || s.sender == nil {
		return BroadcastResult{Status: "Data template received."}, nil
	}

	licenses, err := s.store.Load(ctx)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("license_service: broadcast: %w", err)
	}

	var result BroadcastResult
	for _, lic := range licenses {
		payload := strings.ReplaceAll(template, licensePlaceholder, lic.LicenseKey)
		outcome := BroadcastOutcome{License: lic.LicenseKey, Name: lic.Name}

		if err := s.sender.Send(ctx, payload); err != nil {
			outcome.Status = err.Error()
			result.Errors = append(result.Errors, outcome)
			s.logger.WarnContext(ctx, "license_service: broadcast send failed",
				slog.String("name", lic.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		outcome.Status = "OK"
		result.Success = append(result.Success, outcome)
	}

	result.Status = fmt.Sprintf("Sent %d requests successfully.", len(result.Success))
	if len(result.Errors) > 0 {
		result.Status += fmt.Sprintf(" %d errors occurred.", len(result.Errors))
	}
	return result, nil
}
