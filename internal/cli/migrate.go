package cli

import (
	"context"
	"fmt"

	"tietotesti/internal/config"
	"tietotesti/internal/infra/postgres"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run Postgres schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), cfg, log)
		},
	}
}

func runMigrations(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	if cfg.Storage.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	db := postgres.OpenBun(cfg.Storage.Postgres.URL)
	defer db.Close()
	return postgres.Migrate(ctx, db, log)
}
