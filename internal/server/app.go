// Package server wires configuration, storage, authentication, and the HTTP
// API into a runnable application.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jobdeck/jobdeck/internal/logging"
	"github.com/jobdeck/jobdeck/internal/server/auth"
	"github.com/jobdeck/jobdeck/internal/server/config"
	"github.com/jobdeck/jobdeck/internal/server/httpapi"
	"github.com/jobdeck/jobdeck/internal/server/middleware"
	"github.com/jobdeck/jobdeck/internal/server/repositories/repomanager"
	"github.com/jobdeck/jobdeck/internal/server/services"
	"github.com/jobdeck/jobdeck/internal/server/storage"
)

// App is the assembled server application.
type App struct {
	cfg    *config.Config
	logger logging.Logger
}

func NewApp(cfg *config.Config) *App {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})
	return &App{
		cfg:    cfg,
		logger: logging.NewSlogLogger(slog.New(handler)),
	}
}

// Run starts the server and blocks until ctx is cancelled or a termination
// signal arrives, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode, err := a.cfg.Mode()
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "starting server", "auth_mode", mode.String(), "port", a.cfg.AppPort)

	db, err := sql.Open("pgx", a.cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	store, err := storage.NewClient(ctx, storage.Config{
		Bucket:          a.cfg.S3Bucket,
		Region:          a.cfg.S3Region,
		AccessKeyID:     a.cfg.S3AccessKeyID,
		SecretAccessKey: a.cfg.S3SecretAccessKey,
		BaseEndpoint:    a.cfg.S3BaseEndpoint,
		CDNDomain:       a.cfg.CDNDomain,
	})
	if err != nil {
		return err
	}

	params := auth.VerifierParams{Secret: []byte(a.cfg.SecretKey)}
	if mode == auth.ModeCognito {
		params.Issuer = a.cfg.Issuer()
		params.ClientID = a.cfg.AppClientID
		params.Keys = auth.NewKeySetCache(a.cfg.JWKSURL(), &http.Client{Timeout: 10 * time.Second})
	}
	verifier, err := auth.NewVerifier(mode, params)
	if err != nil {
		return err
	}
	resolver := auth.NewResolver(mode, repos.Identities(db))

	fileSvc := services.NewFileService(db, repos, store, a.logger)
	appSvc := services.NewApplicationService(db, repos)
	noteSvc := services.NewNoteService(db, repos)

	handlers := httpapi.NewHandlers(fileSvc, appSvc, noteSvc, a.logger)
	authMW := middleware.NewAuth(verifier, resolver, a.logger)
	router := httpapi.NewRouter(handlers, authMW.Handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.AppPort),
		Handler:      router,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
