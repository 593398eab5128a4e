package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/orangutan-api/internal/http/api"
	"github.com/janisto/orangutan-api/internal/http/health"
	"github.com/janisto/orangutan-api/internal/http/v1/routes"
	"github.com/janisto/orangutan-api/internal/platform/config"
	applog "github.com/janisto/orangutan-api/internal/platform/logging"
	appmiddleware "github.com/janisto/orangutan-api/internal/platform/middleware"
	"github.com/janisto/orangutan-api/internal/platform/metrics"
	"github.com/janisto/orangutan-api/internal/platform/respond"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		applog.LogFatal(context.Background(), "config load failed", err)
	}
	version := cfg.Version
	if version == "" {
		version = Version
	}
	applog.Sugar().Infow("config loaded",
		"port", cfg.Port,
		"version", version,
		"shutdownTimeout", cfg.ShutdownTimeout.String(),
		"traceProject", cfg.ProjectID,
	)

	srv := newServer(cfg.Addr(), newRouter(version, cfg.ProjectID, metrics.New()))

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		applog.LogError(context.Background(), "listen failed", err, zap.String("addr", srv.Addr))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, srv, ln, cfg.ShutdownTimeout); err != nil {
		applog.LogError(context.Background(), "server failed", err, zap.String("addr", srv.Addr))
		stop()
		os.Exit(1)
	}
	applog.LogInfo(context.Background(), "server exited")
}

func newRouter(version, projectID string, m *metrics.Metrics) chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security(api.DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP and X-Forwarded-For; only run behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(projectID),
		applog.AccessLogger(),
		m.Middleware(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler)
	router.Head("/health", health.Handler)
	router.Method(http.MethodGet, "/metrics", m.Handler())

	routes.Register(api.New(router, version))
	return router
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
}

// serve runs srv on ln until ctx is done, then shuts down gracefully within
// shutdownTimeout. A failure to serve is returned immediately.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(context.Background(), "server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
		return err
	}
	return nil
}
