//go:build ignore

// reset_db drops every table and re-applies the migrations.
//
//	go run scripts/reset_db.go [config.yaml]
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"fuel-backend/internal/config"
	"fuel-backend/internal/database"
	"fuel-backend/internal/db"
	"fuel-backend/internal/logger"
)

func main() {
	log := logger.Setup("info", "console")

	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	fmt.Println("========================================")
	fmt.Println("   Reset Database")
	fmt.Println("========================================")
	fmt.Println()
	fmt.Printf("WARNING: this drops every table in %s on %s.\n", cfg.Database.Name, cfg.Database.Host)
	fmt.Print("Type 'yes' to confirm: ")

	confirm, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if strings.TrimSpace(confirm) != "yes" {
		fmt.Println("Reset cancelled.")
		return
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to database")
	}
	defer pool.Close()

	script, err := database.ResetScript()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read reset script")
	}
	if _, err := pool.Exec(ctx, script); err != nil {
		log.Fatal().Err(err).Msg("failed to drop tables")
	}
	log.Info().Msg("tables dropped")

	n, err := database.NewMigrator(pool).RunMigrations(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Int("applied", n).Msg("database reset")
}
