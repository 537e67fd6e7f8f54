package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "idebisnis",
	Short: "IdeBisnisAI backend",
	Long: `IdeBisnisAI validates business ideas with generated reports.

Available subcommands:
  serve           - Run the HTTP API
  migrate         - Create or update database tables
  confirm-payment - Mark a report paid after manual QRIS reconciliation`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, confirmPaymentCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config, sets up stdout logging and connects the database.
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel)

	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		return nil, err
	}
	return cfg, nil
}
