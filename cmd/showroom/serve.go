package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arawak/showroom/internal/auth"
	"github.com/arawak/showroom/internal/config"
	"github.com/arawak/showroom/internal/httpapi"
	"github.com/arawak/showroom/internal/media"
	"github.com/arawak/showroom/internal/publish"
	"github.com/arawak/showroom/internal/store"
	"github.com/arawak/showroom/migrations"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	logger.Info("database target", "source", string(cfg.Database.Source), "addr", cfg.Database.Addr, "name", cfg.Database.Name)

	db, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()

	if err := migrations.Up(cfg.Database.DSN); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	st := store.New(db)
	if err := seedAdmin(ctx, st, cfg); err != nil {
		return err
	}
	if cfg.AdminPassword == config.DefaultAdminPassword {
		logger.Warn("admin account uses the default password; rotate it with hash-password")
	}

	assets := media.NewStore(cfg.UploadsDir, config.APIPrefix+"/uploads")
	if err := assets.EnsureDirs(); err != nil {
		return fmt.Errorf("prepare uploads directory: %w", err)
	}

	publisher := publish.FromConfig(ctx, cfg.YouTube, logger)
	router := httpapi.NewRouter(cfg, st, assets, publisher, logger)

	srv := &http.Server{
		Addr:              cfg.Bind,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Bind, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sig:
	case <-ctx.Done():
	}

	logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	return nil
}

// seedAdmin creates the configured admin once. An existing row keeps its
// password.
func seedAdmin(ctx context.Context, st *store.Store, cfg *config.Config) error {
	if _, err := st.AdminByUsername(ctx, cfg.AdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := st.EnsureAdmin(ctx, cfg.AdminUsername, hash); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
