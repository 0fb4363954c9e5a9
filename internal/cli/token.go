package cli

import (
	"errors"
	"fmt"
	"time"

	"cricket-quiz-service/internal/auth"
	"cricket-quiz-service/internal/config"
	"cricket-quiz-service/internal/domain"

	"github.com/spf13/cobra"
)

// NewTokenCmd signs a bearer token for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var userID, name, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with auth.jwtSecret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwtSecret not configured")
			}
			provider := auth.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer, config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour))
			token, err := provider.Issue(domain.Principal{UserID: userID, DisplayName: name, Role: role})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", "player", "role claim")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
