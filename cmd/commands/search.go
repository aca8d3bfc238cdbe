package commands

// Command to run a one-off memecoin search from the terminal
// Parses the filter expression from argv, fetches, and prints a table
// Saves the result set to data_out/last_search.json for the chart tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memescout/internal/clients_api/solanatracker"
	"memescout/internal/features/discovery"
	"memescout/internal/filter"
	"memescout/internal/infra/config"
	"memescout/internal/infra/fs"
	"memescout/internal/infra/log"
	"memescout/internal/token"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var searchCmd = &cobra.Command{
	Use:   "search [filter expression]",
	Short: "Search memecoins once and print the results",
	Long: `Search Solana memecoins matching a filter expression and print them as a table.

Examples:
  memescout search mc > 1M
  memescout search "volume > 100K, holders > 1000"
  memescout search liquidity > 50K and mc < 10M

With no expression the most active tokens are listed unfiltered.`,
	RunE: runSearchCommand,
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.LogError("Failed to load config", zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}

	text := strings.Join(args, " ")
	p := filter.Parse(text)
	if text != "" && p.Empty() {
		return fmt.Errorf("no recognizable filters in %q (try: mc > 1M, volume > 100K)", text)
	}

	var structured discovery.StructuredSearcher
	if cfg.SolanaTracker.APIKey != "" {
		structured = solanatracker.NewClient(
			cfg.SolanaTracker.BaseURL,
			cfg.SolanaTracker.APIKey,
			time.Duration(cfg.SolanaTracker.RequestTimeout)*time.Second,
			cfg.SolanaTracker.MaxRetries)
	}

	svc := discovery.NewService(discovery.Options{
		Pairs:         newDexScreenerClient(cfg),
		Structured:    structured,
		SearchLimit:   cfg.Discovery.SearchLimit,
		MaxAgeMinutes: cfg.SolanaTracker.MaxAgeMinutes,
		SnapshotFile:  fs.LastSearchFile,
	})

	log.LogInfo("Searching", zap.String("filters", filter.FormatFilters(p)))

	result, err := svc.Search(context.Background(), p)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(result.Records) == 0 {
		fmt.Println("No memecoins matched the filters.")
		return nil
	}

	printResultsTable(result.FilterText, result.Records)
	return nil
}

func printResultsTable(filterText string, records []token.Record) {
	fmt.Printf("Filters: %s\n\n", filterText)
	fmt.Printf("%-3s %-10s %-22s %10s %10s %10s %8s %8s\n",
		"#", "SYMBOL", "NAME", "MC", "VOL 24H", "LIQ", "HOLDERS", "CHG 24H")

	for i, rec := range records {
		name := rec.Name
		if len(name) > 22 {
			name = name[:19] + "..."
		}
		symbol := rec.Symbol
		if symbol == "" {
			symbol = token.ShortAddress(rec.Address)
		}
		fmt.Printf("%-3d %-10s %-22s %10s %10s %10s %8d %+7.1f%%\n",
			i+1,
			symbol,
			name,
			"$"+filter.FormatNumber(rec.MarketCap),
			"$"+filter.FormatNumber(rec.Volume24h),
			"$"+filter.FormatNumber(rec.Liquidity),
			rec.HoldersEstimate,
			rec.PriceChange24h)
	}

	fmt.Printf("\n%d tokens. Results saved to data_out/%s\n", len(records), fs.LastSearchFile)
}
