package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/livepaste/livepaste/internal/logger"
	"github.com/livepaste/livepaste/pkg/config"
	"github.com/livepaste/livepaste/pkg/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations for the room database.

This command applies pending schema migrations to the configured database
(SQLite or PostgreSQL). It is required after upgrading LivePaste when
schema changes have been made. The server also applies migrations at
startup; this command exists for deployments that migrate separately.

Examples:
  # Run migrations with default config
  livepasted migrate

  # Run migrations with custom config
  livepasted migrate --config /etc/livepaste/config.yaml`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("Running database migrations", "type", cfg.Store.Type)

	// Opening the store applies migrations
	st, err := store.New(&cfg.Store)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer func() { _ = st.Close() }()

	// Verify the migration worked
	if err := st.Healthcheck(context.Background()); err != nil {
		return fmt.Errorf("migration verification failed: %w", err)
	}

	fmt.Printf("Migrations completed successfully (database type: %s)\n", cfg.Store.Type)
	return nil
}
