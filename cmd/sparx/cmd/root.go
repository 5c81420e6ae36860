package cmd

import (
	"os"

	"github.com/nfrund/sparx/internal/config"
	"github.com/nfrund/sparx/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sparx",
	Short: "Sparx inventory backend",
	Long: `Sparx is the API server of the Sparx inventory app.

Available commands:
  serve     Run the HTTP API
  schema    Define the database tables and indexes
  topics    List the domain event topics
  version   Print the version

Use "sparx [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig initializes logging and reads the configuration from the
// environment and an optional .env file.
func loadConfig() (*config.Config, error) {
	logging.New()
	return config.Load()
}
