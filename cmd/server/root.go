package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"fuel-backend/internal/app"
	"fuel-backend/internal/config"
	"fuel-backend/internal/database"
	"fuel-backend/internal/db"
	"fuel-backend/internal/logger"
	"fuel-backend/internal/repositories/memstore"
	"fuel-backend/internal/services"
	"fuel-backend/internal/timeutil"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "fuel-backend",
	Short: "Fuel trading back office",
	Long: `fuel-backend runs the staff and client portal APIs of the fuel trading
back office, and offers maintenance commands for migrations, statements,
the overdue sweep and API tokens.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "path to the YAML config file")
}

// loadConfig reads and validates the configuration, then sets up logging
// and the business timezone from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if err := timeutil.SetLocation(cfg.Business.Timezone); err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", cfg.Business.Timezone, err)
	}
	return cfg, nil
}

// openStores returns the configured backend. The Postgres pool is returned
// so callers can close it; it is nil for the memory store.
func openStores(ctx context.Context, cfg *config.Config, migrate bool) (services.Stores, *pgxpool.Pool, error) {
	log := logger.WithComponent("store")
	if cfg.Server.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return app.MemoryStores(memstore.New()), nil, nil
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return services.Stores{}, nil, err
	}
	if migrate {
		n, err := database.NewMigrator(pool).RunMigrations(ctx)
		if err != nil {
			pool.Close()
			return services.Stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Int("applied", n).Msg("migrations up to date")
	}
	return app.PostgresStores(pool), pool, nil
}
