package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"fuel-backend/internal/app"
	"fuel-backend/internal/jobs"
	"fuel-backend/internal/timeutil"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the overdue client sweep once",
	Long: `Flag active clients holding an unpaid order past its due date as overdue,
and return overdue clients with nothing past due to active.`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	stores, pool, err := openStores(ctx, cfg, false)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}
	svc := app.NewServices(cfg, stores, app.Deps{Now: timeutil.Now})

	res, err := jobs.RunOverdueSweep(ctx, svc.Clients)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
