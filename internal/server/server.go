// Package server assembles the HTTP surface: webhook ingress, history query,
// WebSocket stream, and the administrative license endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tradedge/tradedge/internal/auth"
	"github.com/tradedge/tradedge/internal/domain"
	"github.com/tradedge/tradedge/internal/server/handler"
	"github.com/tradedge/tradedge/internal/server/middleware"
	"github.com/tradedge/tradedge/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string

	// RateLimiter, when non-nil, enables per-client-IP limiting across the
	// whole surface.
	RateLimiter     domain.RateLimiter
	RateLimit       int
	RateLimitWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health   *handler.HealthHandler
	Webhook  *handler.WebhookHandler
	Events   *handler.EventsHandler
	Licenses *handler.LicenseHandler
	Session  *handler.SessionHandler
}

// Server is the HTTP + WebSocket API server for tradedge.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes registered. The webhook ingress and
// health check are open; the query, stream, and admin routes require basic
// auth or a session cookie.
func New(cfg Config, handlers Handlers, authn *auth.Authenticator, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(authn)

	// Health check (no auth).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Webhook ingress, gated by its secret path segment.
	mux.HandleFunc("POST /hook/{path}", handlers.Webhook.Receive)

	// History query.
	mux.Handle("GET /api/events", requireAuth(http.HandlerFunc(handlers.Events.List)))

	// Live event stream.
	if wsHub != nil {
		mux.Handle("GET /ws", requireAuth(http.HandlerFunc(wsHub.HandleWS)))
	}

	// Admin session.
	mux.HandleFunc("POST /admin/login", handlers.Session.Login)
	mux.HandleFunc("POST /admin/logout", handlers.Session.Logout)

	// License administration.
	mux.Handle("GET /admin/licenses", requireAuth(http.HandlerFunc(handlers.Licenses.List)))
	mux.Handle("POST /admin/licenses", requireAuth(http.HandlerFunc(handlers.Licenses.Add)))
	mux.Handle("DELETE /admin/licenses/{id}", requireAuth(http.HandlerFunc(handlers.Licenses.Delete)))
	mux.Handle("POST /admin/licenses/broadcast", requireAuth(http.HandlerFunc(handlers.Licenses.Broadcast)))

	// Build the middleware chain.
	var h http.Handler = mux

	if cfg.RateLimiter != nil {
		h = middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit, cfg.RateLimitWindow)(h)
	}
	h = middleware.Logging(logger)(h)
	h = corsMiddleware(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// corsMiddleware returns middleware that sets CORS headers for the allowed
// origins. If no origins are specified, it defaults to allowing all origins.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				allowed := len(allowedOrigins) == 0
				for _, o := range allowedOrigins {
					if strings.EqualFold(o, "*") || strings.EqualFold(o, origin) {
						allowed = true
						break
					}
				}

				if allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
