package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fuel-backend/internal/app"
	"fuel-backend/internal/auth"
	"fuel-backend/internal/cache"
	"fuel-backend/internal/config"
	"fuel-backend/internal/health"
	"fuel-backend/internal/jobs"
	"fuel-backend/internal/logger"
	"fuel-backend/internal/middleware"
	"fuel-backend/internal/storage"
	"fuel-backend/internal/timeutil"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the staff API or, with --mode client, the client portal API.

Migrations are applied on start when the Postgres store is used.`,
	Example: `  # Staff API on the configured port
  fuel-backend serve

  # Client portal on port 8081
  fuel-backend serve --mode client --port 8081`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("mode", "", "server mode: staff or client (default from config)")
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		cfg.Server.Mode = mode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	log := logger.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, pool, err := openStores(ctx, cfg, true)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	checks := health.NewHealthChecker()
	if pool != nil {
		checks.Require("database", pool.Ping)
	}
	deps := app.Deps{Health: checks, Now: timeutil.Now}

	if cfg.Redis.Enabled {
		rc, err := cache.New(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr()).Msg("redis unavailable, product cache disabled")
		} else {
			defer rc.Close()
			deps.Cache = rc
			checks.Optional("redis", func(ctx context.Context) error {
				if !rc.IsHealthy(ctx) {
					return errors.New("redis ping failed")
				}
				return nil
			})
		}
	}

	if cfg.StorageEnabled() {
		proofs, err := storage.NewProofStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to set up proof storage: %w", err)
		}
		deps.Proofs = proofs
		checks.Optional("storage", proofs.Ping)
	} else {
		log.Warn().Msg("proof storage not configured, file uploads are disabled")
	}

	svc := app.NewServices(cfg, stores, deps)
	router := app.Router(cfg, app.NewHandlers(svc, deps), auth.NewJWTManager(cfg))

	if schedule := cfg.Business.OverdueSweepCron; schedule != "" && cfg.Server.Mode == config.ModeStaff {
		sched, err := jobs.StartOverdueSweep(ctx, schedule, svc.Clients)
		if err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           middleware.NewCORS(cfg)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", cfg.Server.Mode).Str("store", cfg.Server.Store).Msg("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
