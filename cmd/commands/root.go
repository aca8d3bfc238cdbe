package commands

// Root command for Cobra CLI
// Defines the main command structure of the application
// Registers all subcommands (bot, search, sentiment, presets)

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "memescout",
	Short: "MemeScout - Telegram bot for discovering Solana memecoins",
	Long: `MemeScout is a Go-based Telegram bot for discovering Solana memecoins by market cap,
volume, holder and liquidity filters, with preset strategies, AI sentiment analysis,
boosted token alerts, and chart generation.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(sentimentCmd)
	rootCmd.AddCommand(presetsCmd)
}
