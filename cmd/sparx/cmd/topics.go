package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nfrund/sparx/internal/events"
	"github.com/spf13/cobra"
)

var (
	topicsOutputFormat string
	topicsModuleFilter string
)

// topicDisplay represents a topic for display purposes
type topicDisplay struct {
	Name   string `json:"name"`
	Module string `json:"module"`
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the domain event topics",
	Long: `List every topic the API publishes on its event bus.

Examples:
  sparx topics                      # table format
  sparx topics --format json        # JSON format
  sparx topics --module inventory   # only inventory topics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		list := listTopics(topicsModuleFilter)
		switch topicsOutputFormat {
		case "table":
			displayTopicsTable(cmd.OutOrStdout(), list)
			return nil
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		default:
			return fmt.Errorf("unsupported output format '%s', use 'table' or 'json'", topicsOutputFormat)
		}
	},
}

func listTopics(module string) []topicDisplay {
	list := make([]topicDisplay, 0)
	for _, name := range events.Topics() {
		mod, _, _ := strings.Cut(name, ".")
		if module != "" && mod != module {
			continue
		}
		list = append(list, topicDisplay{Name: name, Module: mod})
	}
	return list
}

func displayTopicsTable(out io.Writer, list []topicDisplay) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tMODULE")
	fmt.Fprintln(w, "----\t------")
	if len(list) == 0 {
		fmt.Fprintln(w, "No topics found")
		return
	}
	for _, t := range list {
		fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Module)
	}
}

func init() {
	topicsCmd.Flags().StringVarP(&topicsOutputFormat, "format", "f", "table", "Output format (table, json)")
	topicsCmd.Flags().StringVarP(&topicsModuleFilter, "module", "m", "", "Filter by module (auth, inventory, support)")
	rootCmd.AddCommand(topicsCmd)
}
