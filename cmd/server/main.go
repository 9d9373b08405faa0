package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daap14/teamboard/internal/api"
	"github.com/daap14/teamboard/internal/api/handler"
	"github.com/daap14/teamboard/internal/auth"
	"github.com/daap14/teamboard/internal/authz"
	"github.com/daap14/teamboard/internal/config"
	"github.com/daap14/teamboard/internal/database"
	"github.com/daap14/teamboard/internal/invitation"
	"github.com/daap14/teamboard/internal/membership"
	"github.com/daap14/teamboard/internal/project"
	"github.com/daap14/teamboard/internal/realtime"
	"github.com/daap14/teamboard/internal/task"
	"github.com/daap14/teamboard/internal/team"
	"github.com/daap14/teamboard/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func run(cfg *config.Config) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(startCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(startCtx); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	openapi, err := handler.NewOpenAPIHandler(api.OpenAPISpec)
	if err != nil {
		return err
	}

	pool := db.Pool()
	users := user.NewRepository(pool)
	members := membership.NewStore(pool)
	projects := project.NewRepository(pool)

	hub := realtime.NewHub(cfg.CORSOrigins)
	defer hub.Close()

	tokens := auth.NewTokenService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	router := api.NewRouter(api.RouterDeps{
		DBPinger:    db,
		Version:     cfg.Version,
		CORSOrigins: cfg.CORSOrigins,
		Cookies: handler.CookieConfig{
			Secure:     cfg.CookieSecure,
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		},
		OpenAPI:     openapi,
		Tokens:      tokens,
		Auth:        auth.NewService(users, tokens, cfg.BcryptCost),
		Users:       users,
		Teams:       team.NewRepository(pool),
		Members:     members,
		Projects:    projects,
		Authorizer:  authz.NewAuthorizer(members),
		Invitations: invitation.NewManager(invitation.NewRepository(pool), members, users, invitation.WithTTL(cfg.InvitationTTL)),
		Tasks:       task.NewService(task.NewRepository(pool), hub),
		Realtime:    hub,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting teamboard server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	// Hijacked websocket connections are not tracked by Shutdown.
	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return nil
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(logHandler))
}
