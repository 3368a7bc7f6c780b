package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vkarpovich/docvault/internal/server/handlers"
	"github.com/vkarpovich/docvault/internal/server/middleware"
	"github.com/vkarpovich/docvault/internal/session"
	"github.com/vkarpovich/docvault/internal/storage"
)

// Login attempts allowed per client IP per window.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// NewRouter assembles the route table and middleware chain. Every
// document route sits behind the session guard; login is additionally
// rate limited.
func NewRouter(
	logger *slog.Logger,
	authHandler *handlers.AuthHandler,
	docHandler *handlers.DocumentHandler,
	healthHandler *handlers.HealthHandler,
	sessions session.Store,
	users storage.UserStorage,
) http.Handler {
	requireSession := middleware.SessionMiddleware(logger, sessions, users)
	loginLimit := middleware.RateLimitMiddleware(loginRateLimit, loginRateWindow, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", authHandler.Index)
	mux.HandleFunc("GET /login", authHandler.LoginPage)
	mux.Handle("POST /login", loginLimit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("GET /logout", authHandler.Logout)
	mux.Handle("GET /profile", requireSession(http.HandlerFunc(authHandler.Profile)))

	mux.Handle("GET /dashboard", requireSession(http.HandlerFunc(docHandler.Dashboard)))
	mux.Handle("POST /upload", requireSession(http.HandlerFunc(docHandler.Upload)))
	mux.Handle("GET /edit/{docID}", requireSession(http.HandlerFunc(docHandler.EditForm)))
	mux.Handle("POST /edit/{docID}", requireSession(http.HandlerFunc(docHandler.Edit)))
	mux.Handle("POST /delete/{docID}", requireSession(http.HandlerFunc(docHandler.Delete)))
	mux.Handle("GET /view/{filename}", requireSession(http.HandlerFunc(docHandler.View)))

	mux.HandleFunc("GET /healthz", healthHandler.Health)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger)(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return handler
}

// Server wraps the HTTP server with graceful shutdown.
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a new server listening on addr
func New(logger *slog.Logger, addr string, handler http.Handler) *Server {
	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the server until it is shut down
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
