package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fuel-backend/internal/app"
	"fuel-backend/internal/handlers"
	"fuel-backend/internal/ledger"
	"fuel-backend/internal/logger"
	"fuel-backend/internal/services"
	"fuel-backend/internal/timeutil"
)

var statementCmd = &cobra.Command{
	Use:   "statement <client>",
	Short: "Write a client's statement of account to a file",
	Long: `Build the statement of account for a client, given by id, client code or
name fragment, and write it as pdf, xlsx or json.

Without a window the current month is used.`,
	Example: `  # March 2024 as PDF
  fuel-backend statement TT244560001 --month 3 --year 2024

  # A custom range as a spreadsheet
  fuel-backend statement "Ama" --from 2024-01-01 --to 2024-06-30 --format xlsx -o ama.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runStatement,
}

func init() {
	rootCmd.AddCommand(statementCmd)

	statementCmd.Flags().String("from", "", "window start (YYYY-MM-DD)")
	statementCmd.Flags().String("to", "", "window end (YYYY-MM-DD)")
	statementCmd.Flags().String("month", "", "month number or name")
	statementCmd.Flags().String("year", "", "four-digit year")
	statementCmd.Flags().String("range", "", "week, month or year")
	statementCmd.Flags().String("format", "pdf", "output format: pdf, xlsx or json")
	statementCmd.Flags().StringP("output", "o", "", "output file (default statement-<code>-<month>.<format>)")
}

func runStatement(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.WithComponent("statement")
	ctx := cmd.Context()

	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "pdf", "xlsx", "json":
	default:
		return fmt.Errorf("unknown format %q, want pdf, xlsx or json", format)
	}

	stores, pool, err := openStores(ctx, cfg, false)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}
	svc := app.NewServices(cfg, stores, app.Deps{Now: timeutil.Now})

	out, _ := cmd.Flags().GetString("output")
	st, out, err := exportStatement(ctx, svc.Statements, args[0], statementWindow(cmd), format, out, timeutil.Now())
	if err != nil {
		return err
	}
	log.Info().
		Str("client", st.ClientCode).
		Str("period", st.Period).
		Float64("closing", st.Totals.Closing).
		Str("file", out).
		Msg("statement written")
	return nil
}

// statementWindow reads the window flags
func statementWindow(cmd *cobra.Command) timeutil.WindowArgs {
	var w timeutil.WindowArgs
	w.From, _ = cmd.Flags().GetString("from")
	w.To, _ = cmd.Flags().GetString("to")
	w.Month, _ = cmd.Flags().GetString("month")
	w.Year, _ = cmd.Flags().GetString("year")
	w.Range, _ = cmd.Flags().GetString("range")
	return w
}

// exportStatement builds the statement and writes it to out, or to the
// default statement file name when out is empty. It returns the path
// written.
func exportStatement(ctx context.Context, svc *services.StatementService, client string, w timeutil.WindowArgs, format, out string, now time.Time) (*ledger.Statement, string, error) {
	st, err := svc.Build(ctx, client, w)
	if err != nil {
		return nil, "", err
	}

	var body []byte
	if format == "json" {
		body, err = json.MarshalIndent(st, "", "  ")
	} else {
		body, _, err = handlers.RenderStatement(st, format, now)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to render statement: %w", err)
	}

	if out == "" {
		out = handlers.StatementFilename(st, format)
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return nil, "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return st, out, nil
}
