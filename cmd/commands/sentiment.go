package commands

// Command to run a one-off sentiment analysis for a token address
// Resolves the token via DexScreener, then asks Grok with live search
// Requires XAI_API_KEY

import (
	"context"
	"fmt"
	"time"

	"memescout/internal/clients_api/grok"
	"memescout/internal/features/sentiment"
	"memescout/internal/infra/config"
	"memescout/internal/infra/log"
	"memescout/internal/token"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sentimentCmd = &cobra.Command{
	Use:   "sentiment <contract address>",
	Short: "Analyze X/Twitter sentiment for one token",
	Long:  `Resolve a Solana token by contract address and analyze recent X/Twitter sentiment for it via the Grok API.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSentimentCommand,
}

func runSentimentCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.LogError("Failed to load config", zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Grok.APIKey == "" {
		return fmt.Errorf("XAI_API_KEY is required for sentiment analysis")
	}

	address := args[0]
	if !token.IsValidSolanaAddress(address) {
		return fmt.Errorf("%q is not a valid Solana contract address", address)
	}

	ctx := context.Background()

	rec, err := newDexScreenerClient(cfg).GetTokenInfo(ctx, address)
	if err != nil {
		return fmt.Errorf("token lookup failed: %w", err)
	}

	grokClient := grok.NewClient(
		cfg.Grok.BaseURL,
		cfg.Grok.APIKey,
		time.Duration(cfg.Grok.RequestTimeout)*time.Second,
		cfg.Grok.MaxRetries)
	svc := sentiment.NewService(sentiment.Options{Analyzer: grokClient})

	log.LogInfo("Analyzing sentiment",
		zap.String("symbol", rec.Symbol),
		zap.String("address", address))

	result, err := svc.Analyze(ctx, rec.Address, rec.Name, rec.Symbol)
	if err != nil {
		return fmt.Errorf("sentiment analysis failed: %w", err)
	}

	fmt.Printf("Token:     %s (%s)\n", rec.Name, result.Symbol)
	fmt.Printf("Sentiment: %s\n", result.Sentiment)
	fmt.Printf("Posts:     %d\n", result.TweetCount)
	fmt.Printf("\n%s\n", result.Explanation)
	return nil
}
