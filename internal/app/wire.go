package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tradedge/tradedge/internal/auth"
	"github.com/tradedge/tradedge/internal/bus"
	redisc "github.com/tradedge/tradedge/internal/cache/redis"
	"github.com/tradedge/tradedge/internal/config"
	"github.com/tradedge/tradedge/internal/domain"
	"github.com/tradedge/tradedge/internal/notify"
	"github.com/tradedge/tradedge/internal/server"
	"github.com/tradedge/tradedge/internal/server/handler"
	"github.com/tradedge/tradedge/internal/server/ws"
	"github.com/tradedge/tradedge/internal/service"
	"github.com/tradedge/tradedge/internal/store/jsonfile"
)

// Dependencies bundles everything App.Run needs to serve.
type Dependencies struct {
	Server *server.Server
	Hub    *ws.Hub
}

// Wire constructs all concrete dependencies from the given configuration and
// returns them together with a cleanup function that should be called on
// shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// Stores.
	eventStore, err := jsonfile.NewEventStore(cfg.Store.DataPath, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: event store: %w", err)
	}
	licenseStore, err := jsonfile.NewLicenseStore(cfg.Store.LicensesPath, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: license store: %w", err)
	}

	// In-process signal bus feeding the WebSocket hub.
	signalBus := bus.New(logger)

	// Optional Redis-backed rate limiter.
	var limiter domain.RateLimiter
	if cfg.RateLimit.Enabled && cfg.Redis.Addr != "" {
		client, err := redisc.New(ctx, redisc.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		limiter = redisc.NewRateLimiter(client)
	}

	// Broadcast sender.
	var sender notify.Sender
	if cfg.Broadcast.ConnectorURL != "" {
		sender = notify.NewConnectorSender(cfg.Broadcast.ConnectorURL, cfg.Broadcast.Timeout.Duration)
	}

	// Services.
	ingestSvc := service.NewIngestService(eventStore, signalBus, logger)
	historySvc := service.NewHistoryService(
		eventStore,
		cfg.Retention.RetentionDays,
		cfg.Retention.RecentWindowDays,
		logger,
	)
	licenseSvc := service.NewLicenseService(licenseStore, sender, cfg.Broadcast.Enabled, logger)

	// Auth + HTTP surface.
	authn := auth.New(
		cfg.Auth.Username,
		cfg.Auth.Password,
		cfg.Auth.PasswordHash,
		cfg.Auth.SessionSecret,
	)
	hub := ws.NewHub(signalBus, service.EventsChannel, logger)

	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(logger),
		Webhook:  handler.NewWebhookHandler(ingestSvc, cfg.Auth.WebhookPath, logger),
		Events:   handler.NewEventsHandler(historySvc, logger),
		Licenses: handler.NewLicenseHandler(licenseSvc, logger),
		Session:  handler.NewSessionHandler(authn, logger),
	}

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimiter:     limiter,
		RateLimit:       cfg.RateLimit.Limit,
		RateLimitWindow: cfg.RateLimit.Window.Duration,
	}, handlers, authn, hub, logger)

	return &Dependencies{
		Server: srv,
		Hub:    hub,
	}, cleanup, nil
}
