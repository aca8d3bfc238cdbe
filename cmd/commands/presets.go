package commands

// Command to list the built-in filter presets

import (
	"fmt"

	"memescout/internal/filter"

	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in filter presets",
	Long:  `List the built-in filter presets with the thresholds each one applies.`,
	RunE:  runPresetsCommand,
}

func runPresetsCommand(cmd *cobra.Command, args []string) error {
	for _, entry := range filter.Presets() {
		fmt.Printf("%-15s %-22s %s\n", entry.Key, entry.Name, filter.FormatFilters(entry.Predicate))
	}
	return nil
}
