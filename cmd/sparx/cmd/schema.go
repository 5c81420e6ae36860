package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/sparx/internal/database"
	"github.com/spf13/cobra"
)

var printSchema bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Define the database tables and indexes",
	Long: `Applies the table and index definitions the stores rely on. Every
statement is idempotent, so the command is safe to run on every deploy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if printSchema {
			for _, stmt := range database.Schema() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", stmt)
			}
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		conn := database.NewConnection(cfg)
		if err := conn.Connect(ctx); err != nil {
			return err
		}
		defer conn.Close(context.Background())

		if err := database.ApplySchema(ctx, conn); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&printSchema, "print", false, "print the statements instead of applying them")
	rootCmd.AddCommand(schemaCmd)
}
