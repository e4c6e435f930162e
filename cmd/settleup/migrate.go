package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/logging"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(*configPath, func(store *sqlite.SQLiteStore) error {
				version, err := store.SchemaVersion()
				if err != nil {
					return err
				}
				slog.Info("Database is up to date", "version", version)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the state of every migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(*configPath, func(store *sqlite.SQLiteStore) error {
				return store.MigrationStatus()
			})
		},
	})

	return cmd
}

// withStore opens the database, which applies pending migrations, and runs fn.
// Only the database settings are needed, so the rest of the config is not validated.
func withStore(configPath string, fn func(*sqlite.SQLiteStore) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.SetupWithFormat(cfg.Log.Format, cfg.SlogLevel())

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
