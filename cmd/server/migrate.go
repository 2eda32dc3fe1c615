package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fuel-backend/internal/database"
	"fuel-backend/internal/db"
	"fuel-backend/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Example: `  # Show what would run
  fuel-backend migrate --status

  # Apply everything pending
  fuel-backend migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Bool("status", false, "list pending migrations without applying them")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.WithComponent("migrate")
	ctx := cmd.Context()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	m := database.NewMigrator(pool)
	if status, _ := cmd.Flags().GetBool("status"); status {
		pending, err := m.Pending(ctx)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
			return nil
		}
		for _, name := range pending {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	n, err := m.RunMigrations(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("applied", n).Msg("migrations complete")
	return nil
}
