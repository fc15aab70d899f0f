package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/immor75/MeetingsDecisions/internal/wopi/http"
	"github.com/immor75/MeetingsDecisions/internal/wopi/service"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store/drivers/fsdir"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store/drivers/sqlite"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store/memory"
	"github.com/immor75/MeetingsDecisions/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the WOPI host with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	artifacts store.Artifacts
	sessions  *memory.SessionStore
	locks     *service.LockManager

	// Services
	tokens              *service.AccessTokenService
	discovery           *service.DiscoveryResolver
	dispatcher          *service.Dispatcher
	sessionFactory      *service.SessionFactory
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the service logger for cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "wopihost",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewLogger(cfg)
	}

	app := &Application{cfg: cfg, logger: logger}

	artifacts, err := OpenArtifacts(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.artifacts = artifacts

	if err := app.initServices(); err != nil {
		_ = artifacts.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// OpenArtifacts opens the configured artifact catalogue, applying
// migrations for the sqlite source.
func OpenArtifacts(cfg Config, logger *slog.Logger) (store.Artifacts, error) {
	switch cfg.ArtifactSource {
	case ArtifactSourceDir:
		st, err := fsdir.NewStore(cfg.ArtifactDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open artifact directory: %w", err)
		}
		logger.Info("artifact source ready", "source", ArtifactSourceDir, "dir", cfg.ArtifactDir)
		return st, nil
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.ArtifactDBFile)
		st, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := st.ApplyMigrations(); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to apply database migrations: %w", err)
		}
		logger.Info("artifact source ready", "source", ArtifactSourceSQLite, "file", cfg.ArtifactDBFile)
		return st, nil
	}
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("wopi host starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"wopi_host_url", app.cfg.WopiHostURL,
		"collabora_url", app.cfg.CollaboraURL,
	)
	if app.cfg.AdminAPIKey == "" {
		app.logger.Warn("ADMIN_API_KEY not set, the management API is unauthenticated")
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			app.housekeepingService.Stop()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application. Open sessions are
// dropped; their content only ever lived in memory.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down wopi host...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if n := app.sessions.Len(); n > 0 {
		app.logger.Warn("discarding open sessions", "count", n)
	}
	_ = app.sessions.Close()

	if err := app.artifacts.Close(); err != nil {
		app.logger.Error("error closing artifact store", "error", err)
		return err
	}

	app.logger.Info("wopi host stopped")
	return nil
}

func (app *Application) initServices() error {
	tokens, err := NewTokenService(app.cfg, app.logger, false)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokens = tokens

	policy, err := service.ParseUnlockedWritePolicy(app.cfg.UnlockedWrites)
	if err != nil {
		return err
	}

	app.sessions = memory.NewSessionStore(app.artifacts, memory.Options{MaxSessions: app.cfg.MaxSessions})
	app.locks = service.NewLockManager(app.cfg.LockTTL, nil)
	app.discovery = service.NewDiscoveryResolver(app.cfg.CollaboraURL, app.cfg.DiscoveryTTL)

	app.dispatcher = &service.Dispatcher{
		Tokens:            app.tokens,
		Sessions:          app.sessions,
		Locks:             app.locks,
		UnlockedWrites:    policy,
		PostMessageOrigin: app.cfg.PostMessageOrigin,
	}

	app.sessionFactory = &service.SessionFactory{
		Sessions:     app.sessions,
		Locks:        app.locks,
		Tokens:       app.tokens,
		Discovery:    app.discovery,
		WopiHostURL:  app.cfg.WopiHostURL,
		CollaboraURL: app.cfg.CollaboraURL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.sessions,
		app.locks,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.SessionIdleTTL,
	)

	app.logger.Info("wopi services initialized",
		"unlocked_writes", policy,
		"lock_ttl", app.cfg.LockTTL,
		"max_sessions", app.cfg.MaxSessions,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.artifacts,
		app.sessions,
		app.cfg.AdminAPIKey,
		BuildVersion,
		app.cfg.MaxFileSize,
		app.logger,
	)

	// Wire services to router
	router.Dispatcher = app.dispatcher
	router.SessionFactory = app.sessionFactory
	router.Locks = app.locks
	router.MaxSessions = app.cfg.MaxSessions
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
