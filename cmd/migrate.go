package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"crowdfund-escrow/internal/config"
	"crowdfund-escrow/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply ledger store migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, logCloser, err := bootstrap()
		if err != nil {
			return err
		}
		defer logCloser.Close()

		switch cfg.StorageDriver {
		case config.DriverSQLite:
			sqlDB, err := db.OpenSQLite(cmd.Context(), cfg.SQLite)
			if err != nil {
				return fmt.Errorf("migrate sqlite: %w", err)
			}
			defer sqlDB.Close()
		default:
			if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
				return fmt.Errorf("migrate postgres: %w", err)
			}
		}
		logger.Info("migrations applied successfully", slog.String("driver", cfg.StorageDriver))
		return nil
	},
}
