package main

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := bootstrap(); err != nil {
			return err
		}
		defer database.Close()

		if err := database.Migrate(database.DB); err != nil {
			return err
		}
		slog.Info("migration completed")
		return nil
	},
}
