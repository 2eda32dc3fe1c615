package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuel-backend/internal/app"
	"fuel-backend/internal/apperr"
	"fuel-backend/internal/config"
	"fuel-backend/internal/ledger"
	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories/memstore"
	"fuel-backend/internal/timeutil"
)

var now = time.Date(2024, time.March, 28, 12, 0, 0, 0, time.UTC)

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `server:
  store: memory
jwt:
  secret: statement-test
business:
  timezone: UTC
log:
  level: error
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

// seededStatements returns a statement service over one client with a
// 2000 order and a confirmed 500 payment in March 2024.
func seededStatements(t *testing.T) *app.Services {
	t.Helper()
	ctx := context.Background()
	db := memstore.New()

	c := &models.Client{ClientCode: "TT24001", Name: "Kofi Fuels", Status: models.ClientActive}
	require.NoError(t, db.Clients().Create(ctx, c))
	o := &models.Order{
		OrderCode: "AAAAA",
		ClientID:  models.Ref(c.ID),
		Product:   "PMS",
		Status:    models.OrderApproved,
		TotalDebt: 2000,
		Date:      models.NewDate(time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, db.Orders().Create(ctx, o))
	require.NoError(t, db.Payments().Create(ctx, &models.Payment{
		ClientID: models.Ref(c.ID),
		OrderID:  models.Ref(o.ID),
		Amount:   500,
		Status:   models.PaymentConfirmed,
		Date:     models.NewDate(time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC)),
	}))

	cfg := &config.Config{}
	cfg.Business.CompanyName = "Fuel Trading Ltd"
	return app.NewServices(cfg, app.MemoryStores(db), app.Deps{Now: func() time.Time { return now }})
}

func TestStatementCommand_FlagsAndErrors(t *testing.T) {
	cfgPath := writeConfig(t)
	out := filepath.Join(t.TempDir(), "out.json")

	rootCmd.SetArgs([]string{"statement", "TT99999", "--config", cfgPath,
		"--month", "3", "--year", "2024", "--range", "month", "--format", "JSON", "-o", out})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), err.Error())
	assert.NoFileExists(t, out)

	assert.Equal(t, timeutil.WindowArgs{Month: "3", Year: "2024", Range: "month"}, statementWindow(statementCmd))

	rootCmd.SetArgs([]string{"statement", "TT99999", "--config", cfgPath, "--format", "docx"})
	err = rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "docx"`)
}

func TestExportStatement(t *testing.T) {
	svc := seededStatements(t)
	ctx := context.Background()
	march := timeutil.WindowArgs{Month: "3", Year: "2024"}

	t.Run("json to a named file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "kofi.json")
		st, path, err := exportStatement(ctx, svc.Statements, "TT24001", march, "json", out, now)
		require.NoError(t, err)
		assert.Equal(t, out, path)
		assert.Equal(t, 1500.0, st.Totals.Closing)

		raw, err := os.ReadFile(out)
		require.NoError(t, err)
		var got ledger.Statement
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "TT24001", got.ClientCode)
		assert.Equal(t, 1500.0, got.Totals.Closing)
	})

	t.Run("pdf to the default name", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, path, err := exportStatement(ctx, svc.Statements, "kofi", march, "pdf", "", now)
		require.NoError(t, err)
		assert.Equal(t, "statement-TT24001-2024-03.pdf", path)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
	})

	t.Run("window before any activity", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "jan.json")
		st, _, err := exportStatement(ctx, svc.Statements, "TT24001", timeutil.WindowArgs{Month: "1", Year: "2024"}, "json", out, now)
		require.NoError(t, err)
		assert.Equal(t, 0.0, st.Totals.Closing)
	})
}
