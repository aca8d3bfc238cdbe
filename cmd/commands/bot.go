package commands

// Command to run the full bot with all monitors
// Initializes configuration, API clients, and storage (Postgres or in-memory)
// Starts the Telegram bot plus background monitors (Boosted Tokens, Cache Cleanup)
// Implements graceful shutdown for proper termination

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"memescout/bots_monitor"
	"memescout/internal/clients_api/dexscreener"
	"memescout/internal/clients_api/grok"
	"memescout/internal/clients_api/solanatracker"
	"memescout/internal/features/discovery"
	"memescout/internal/features/sentiment"
	"memescout/internal/filter"
	"memescout/internal/infra/config"
	"memescout/internal/infra/fs"
	logging "memescout/internal/infra/log"
	"memescout/internal/storage"
	"memescout/internal/storage/memory"
	"memescout/internal/storage/migrations"
	"memescout/internal/storage/postgres"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// boostedCheckInterval is how often the boost listings are polled. The alert
// cooldown per token comes from config.
const boostedCheckInterval = 10 * time.Minute

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run full bot with all monitors (Telegram + background)",
	Long:  `Run the complete bot with memecoin search, presets, sentiment analysis, plus the Boosted Tokens and Cache Cleanup monitors.`,
	RunE:  runBot,
}

// RunBot boots the full bot outside Cobra routing, for the cmd/bot entry.
func RunBot() error {
	return runBot(botCmd, nil)
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.LogError("Failed to load config", zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("no bot token provided: TELEGRAM_BOT_TOKEN is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup

	dex := newDexScreenerClient(cfg)

	var structured discovery.StructuredSearcher
	if cfg.SolanaTracker.APIKey != "" {
		structured = solanatracker.NewClient(
			cfg.SolanaTracker.BaseURL,
			cfg.SolanaTracker.APIKey,
			time.Duration(cfg.SolanaTracker.RequestTimeout)*time.Second,
			cfg.SolanaTracker.MaxRetries)
		logging.LogInfo("SolanaTracker structured search enabled")
	} else {
		logging.LogInfo("SOLANATRACKER_API_KEY not provided, searches use DexScreener only")
	}

	coins, sentiments, filters, closeStores, err := initStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	disco := discovery.NewService(discovery.Options{
		Pairs:         dex,
		Structured:    structured,
		Cache:         coins,
		CoinTTL:       time.Duration(cfg.Database.CoinTTLMinutes) * time.Minute,
		SearchLimit:   cfg.Discovery.SearchLimit,
		MaxAgeMinutes: cfg.SolanaTracker.MaxAgeMinutes,
		SnapshotFile:  fs.LastSearchFile,
	})

	var sentimentSvc *sentiment.Service
	if cfg.Grok.APIKey != "" {
		grokClient := grok.NewClient(
			cfg.Grok.BaseURL,
			cfg.Grok.APIKey,
			time.Duration(cfg.Grok.RequestTimeout)*time.Second,
			cfg.Grok.MaxRetries)
		sentimentSvc = sentiment.NewService(sentiment.Options{
			Analyzer: grokClient,
			Store:    sentiments,
			TTL:      time.Duration(cfg.Database.SentimentTTLMinutes) * time.Minute,
		})
		logging.LogInfo("Grok sentiment analysis enabled")
	} else {
		logging.LogWarn("XAI_API_KEY not provided, sentiment analysis disabled")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logging.LogError("Failed to initialize bot", zap.Error(err))
		return fmt.Errorf("failed to initialize bot: %w", err)
	}
	logging.LogSuccess("Bot authorized", zap.String("username", api.Self.UserName))

	scout := bots_monitor.NewBot(bots_monitor.Options{
		API:       api,
		Discovery: disco,
		Sentiment: sentimentSvc,
		Filters:   filters,
		PageSize:  cfg.Telegram.PageSize,
		ChartsDir: cfg.App.ChartsDir,
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		scout.Run(ctx)
	}()

	startMonitors(ctx, &wg, cfg, api, dex, coins, sentiments)

	logging.LogSuccess("Bots are running", zap.String("status", "active"))

	<-ctx.Done()
	logging.LogInfo("Shutdown signal received, gracefully stopping all monitors...")

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.LogSuccess("All monitors stopped gracefully")
	case <-time.After(10 * time.Second):
		logging.LogWarn("Timeout waiting for monitors to stop, forcing shutdown")
	}

	return nil
}

// newDexScreenerClient builds the shared DexScreener client tuned from config.
func newDexScreenerClient(cfg *config.Config) *dexscreener.Client {
	dex := dexscreener.NewClient(
		cfg.DexScreener.BaseURL,
		time.Duration(cfg.DexScreener.RequestTimeout)*time.Second,
		cfg.DexScreener.MaxRetries)
	if len(cfg.Discovery.SearchTerms) > 0 {
		dex.SetSearchTerms(cfg.Discovery.SearchTerms)
	}
	dex.SetFDVWindow(cfg.Discovery.MinFDV, cfg.Discovery.MaxFDV)
	return dex
}

// initStores picks Postgres-backed stores when DATABASE_URL is configured and
// in-memory stores otherwise. The returned func releases the pool.
func initStores(ctx context.Context, cfg *config.Config) (storage.MemecoinCacheStore, storage.SentimentCacheStore, storage.UserFilterStore, func(), error) {
	if cfg.Database.URL == "" {
		logging.LogInfo("DATABASE_URL not provided, using in-memory stores")
		return memory.NewMemecoinCacheStore(), memory.NewSentimentCacheStore(), memory.NewUserFilterStore(), func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logging.LogError("Failed to connect to Postgres", zap.Error(err))
		return nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		pool.Close()
		logging.LogError("Failed to run migrations", zap.Error(err))
		return nil, nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logging.LogSuccess("Postgres storage ready")
	return postgres.NewMemecoinCacheStore(pool), postgres.NewSentimentCacheStore(pool), postgres.NewUserFilterStore(pool), pool.Close, nil
}

func startMonitors(ctx context.Context, wg *sync.WaitGroup, cfg *config.Config, api *tgbotapi.BotAPI, dex *dexscreener.Client, coins storage.MemecoinCacheStore, sentiments storage.SentimentCacheStore) {
	if cfg.Telegram.AdminChatID != 0 {
		broadcast := filter.Predicate{}.
			With(filter.AttrMarketCap, filter.Min, cfg.Discovery.MinFDV).
			With(filter.AttrMarketCap, filter.Max, cfg.Discovery.MaxFDV)
		cooldown := time.Duration(cfg.Discovery.BoostedCooldownHours) * time.Hour

		wg.Add(1)
		go func() {
			defer wg.Done()
			bots_monitor.RunBoostedTokensMonitor(ctx, api, dex, cfg.Telegram.AdminChatID, broadcast, boostedCheckInterval, cooldown)
		}()
	} else {
		logging.LogDebug("Boosted tokens monitor skipped: TELEGRAM_ADMIN_CHAT_ID not configured")
	}

	cleanupInterval := time.Duration(cfg.Database.CleanupIntervalHours) * time.Hour
	retention := time.Duration(cfg.Database.CleanupDays) * 24 * time.Hour

	wg.Add(1)
	go func() {
		defer wg.Done()
		bots_monitor.RunCacheCleanupMonitor(ctx, coins, sentiments, cleanupInterval, retention, retention)
	}()
}
