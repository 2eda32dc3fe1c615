package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fuel-backend/internal/auth"
	"fuel-backend/internal/logger"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API token",
	Long: `Mint a signed bearer token. Staff roles (admin, assistant) use the staff
API; portal roles (client, external) need --client and use the portal.`,
	Example: `  # An admin token for a day
  fuel-backend token --role admin --subject kofi --ttl 24h

  # A portal token for one client
  fuel-backend token --role client --client TT244560001`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("role", auth.RoleAssistant, "admin, assistant, client or external")
	tokenCmd.Flags().String("subject", "", "who the token is for (default: the client or the role)")
	tokenCmd.Flags().String("client", "", "client id or code, required for portal roles")
	tokenCmd.Flags().Duration("ttl", 0, "token lifetime (default from config)")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.WithComponent("token")

	role, _ := cmd.Flags().GetString("role")
	subject, _ := cmd.Flags().GetString("subject")
	client, _ := cmd.Flags().GetString("client")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	if ttl <= 0 {
		ttl = time.Duration(cfg.JWT.ExpirationHours) * time.Hour
	}
	if subject == "" {
		subject = client
	}
	if subject == "" {
		subject = role
	}

	token, err := auth.NewJWTManager(cfg).GenerateTokenTTL(subject, role, client, ttl)
	if err != nil {
		return err
	}
	log.Info().Str("role", role).Str("subject", subject).Dur("ttl", ttl).Msg("token issued")
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
