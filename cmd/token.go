package cmd

import (
	"fmt"
	"time"

	"github.com/frahmantamala/leave-management/internal/auth"
	authPostgres "github.com/frahmantamala/leave-management/internal/auth/postgres"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	tokenEmail string
	tokenTTL   time.Duration
)

// There is no login endpoint; this command is how a developer obtains a
// bearer token for an existing user.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a development access token for an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(".")
		if err != nil {
			return err
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			return err
		}

		ttl := cfg.Security.AccessTokenDuration
		if tokenTTL > 0 {
			ttl = tokenTTL
		}

		svc := auth.NewService(authPostgres.NewRepository(gormDB), auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, ttl), logger.LoggerWrapper())
		token, err := svc.IssueToken(cmd.Context(), tokenEmail)
		if err != nil {
			return fmt.Errorf("issue token for %s: %w", tokenEmail, err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Email of the user to sign a token for")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to security.access_token_duration)")
	_ = tokenCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(tokenCmd)
}
