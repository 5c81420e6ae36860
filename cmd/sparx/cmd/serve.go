package cmd

import (
	"log/slog"

	"github.com/nfrund/sparx/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Invalid configuration", "error", err)
			return err
		}
		if err := server.Run(cmd.Context(), cfg); err != nil {
			slog.Error("Server stopped with error", "error", err)
			return err
		}
		slog.Info("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
