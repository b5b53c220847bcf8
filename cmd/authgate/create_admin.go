package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/account"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/infra"
	"github.com/authgate/authgate/internal/logging"
	"github.com/authgate/authgate/internal/mailer"
	"github.com/authgate/authgate/internal/token"
)

// NewCreateAdminCmd creates the create-admin subcommand: a one-shot,
// out-of-band provisioning of the single privileged account. It is a no-op
// when an admin already exists.
func NewCreateAdminCmd() *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Provision the initial admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := logging.New(cfg.LogLevel)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var repo account.Repository
			if cfg.DatabaseURL != "" {
				db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := infra.Migrate(ctx, cfg.DatabaseURL); err != nil {
					return err
				}
				repo = account.NewPostgresRepository(db)
			} else {
				// Only meaningful for local experiments; the admin
				// vanishes with the process.
				repo = account.NewMemoryRepository()
			}

			engine := token.NewEngine([]byte(cfg.SecretKey), cfg.AccessTokenTTL, cfg.VerifyTokenTTL, cfg.ResetTokenTTL)
			svc := account.NewService(repo, engine, mailer.NewLogMailer(logger), logger)

			admin, created, err := svc.CreateAdmin(ctx, account.Credentials{Email: email, Password: pass})
			if err != nil {
				return err
			}
			if created {
				cmd.Printf("Admin created successfully: %s\n", admin.Email)
			} else {
				cmd.Printf("Admin already exists: %s\n", admin.Email)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&pass, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
