package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Telegram      TelegramConfig      `mapstructure:"telegram"`
	DexScreener   DexScreenerConfig   `mapstructure:"dexscreener"`
	SolanaTracker SolanaTrackerConfig `mapstructure:"solanatracker"`
	Grok          GrokConfig          `mapstructure:"grok"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Discovery     DiscoveryConfig     `mapstructure:"discovery"`
}

type AppConfig struct {
	DataDir         string `mapstructure:"data_dir"`
	ChartsDir       string `mapstructure:"charts_dir"`
	MaxResponseSize int64  `mapstructure:"max_response_size"`
}

type TelegramConfig struct {
	BotToken    string `mapstructure:"bot_token"`
	AdminChatID int64  `mapstructure:"admin_chat_id"` // receives boosted token alerts, 0 disables
	PageSize    int    `mapstructure:"page_size"`     // results per page
}

// DexScreenerConfig - public DexScreener API, no key required.
type DexScreenerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	MaxRetries     int    `mapstructure:"max_retries"`
}

// SolanaTrackerConfig - optional structured search API.
type SolanaTrackerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	MaxRetries     int    `mapstructure:"max_retries"`
	MaxAgeMinutes  int    `mapstructure:"max_age_minutes"` // default pair age cutoff
}

// GrokConfig - x.ai API used for sentiment analysis.
type GrokConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	MaxRetries     int    `mapstructure:"max_retries"`
}

type DatabaseConfig struct {
	URL                  string `mapstructure:"url"` // empty runs on in-memory stores
	CoinTTLMinutes       int    `mapstructure:"coin_ttl_minutes"`
	SentimentTTLMinutes  int    `mapstructure:"sentiment_ttl_minutes"`
	CleanupDays          int    `mapstructure:"cleanup_days"`
	CleanupIntervalHours int    `mapstructure:"cleanup_interval_hours"`
}

type DiscoveryConfig struct {
	MinFDV               float64  `mapstructure:"min_fdv"`
	MaxFDV               float64  `mapstructure:"max_fdv"`
	SearchTerms          []string `mapstructure:"search_terms"` // empty uses the built-in rotation
	SearchLimit          int      `mapstructure:"search_limit"`
	BoostedCooldownHours int      `mapstructure:"boosted_cooldown_hours"`
}

var flagsOnce sync.Once

// LoadConfig merges, in order: defaults, config.yaml, .env file, process env,
// command line flags.
func LoadConfig() (*Config, error) {
	godotenv.Load(".env")

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.ReadInConfig() // missing config.yaml is fine

	v.SetConfigType("env")
	v.SetConfigFile(".env")
	v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()

	setupEnvAliases(v)

	setupFlags(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	applySearchTermsOverride(v, &config)

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applySearchTermsOverride handles discovery.search_terms arriving as a comma
// string from .env or as a list from YAML.
func applySearchTermsOverride(v *viper.Viper, config *Config) {
	termsRaw := v.Get("discovery.search_terms")
	if termsRaw == nil {
		return
	}
	switch terms := termsRaw.(type) {
	case string:
		if terms != "" {
			config.Discovery.SearchTerms = strings.Split(terms, ",")
			for i, term := range config.Discovery.SearchTerms {
				config.Discovery.SearchTerms[i] = strings.TrimSpace(term)
			}
		} else {
			config.Discovery.SearchTerms = []string{}
		}
	case []string:
		config.Discovery.SearchTerms = terms
	case []interface{}:
		result := make([]string, 0, len(terms))
		for _, item := range terms {
			if str, ok := item.(string); ok {
				result = append(result, strings.TrimSpace(str))
			}
		}
		config.Discovery.SearchTerms = result
	}
}

func setupEnvAliases(v *viper.Viper) {
	// Well-known names kept flat so the original .env files keep working,
	// everything else under the SCOUT_ prefix.

	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.admin_chat_id", "TELEGRAM_ADMIN_CHAT_ID")
	v.BindEnv("telegram.page_size", "SCOUT_TELEGRAM_PAGE_SIZE")

	v.BindEnv("dexscreener.base_url", "SCOUT_DEXSCREENER_BASE_URL")
	v.BindEnv("dexscreener.request_timeout", "SCOUT_DEXSCREENER_REQUEST_TIMEOUT")
	v.BindEnv("dexscreener.max_retries", "SCOUT_DEXSCREENER_MAX_RETRIES")

	v.BindEnv("solanatracker.api_key", "SOLANATRACKER_API_KEY")
	v.BindEnv("solanatracker.base_url", "SCOUT_SOLANATRACKER_BASE_URL")
	v.BindEnv("solanatracker.request_timeout", "SCOUT_SOLANATRACKER_REQUEST_TIMEOUT")
	v.BindEnv("solanatracker.max_retries", "SCOUT_SOLANATRACKER_MAX_RETRIES")
	v.BindEnv("solanatracker.max_age_minutes", "SCOUT_SOLANATRACKER_MAX_AGE_MINUTES")

	v.BindEnv("grok.api_key", "XAI_API_KEY")
	v.BindEnv("grok.base_url", "SCOUT_GROK_BASE_URL")
	v.BindEnv("grok.request_timeout", "SCOUT_GROK_REQUEST_TIMEOUT")
	v.BindEnv("grok.max_retries", "SCOUT_GROK_MAX_RETRIES")

	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.coin_ttl_minutes", "SCOUT_DB_COIN_TTL_MINUTES")
	v.BindEnv("database.sentiment_ttl_minutes", "SCOUT_DB_SENTIMENT_TTL_MINUTES")
	v.BindEnv("database.cleanup_days", "SCOUT_DB_CLEANUP_DAYS")
	v.BindEnv("database.cleanup_interval_hours", "SCOUT_DB_CLEANUP_INTERVAL_HOURS")

	v.BindEnv("app.data_dir", "SCOUT_APP_DATA_DIR")
	v.BindEnv("app.charts_dir", "SCOUT_APP_CHARTS_DIR")
	v.BindEnv("app.max_response_size", "SCOUT_APP_MAX_RESPONSE_SIZE")

	v.BindEnv("discovery.min_fdv", "SCOUT_DISCOVERY_MIN_FDV")
	v.BindEnv("discovery.max_fdv", "SCOUT_DISCOVERY_MAX_FDV")
	v.BindEnv("discovery.search_terms", "SCOUT_DISCOVERY_SEARCH_TERMS")
	v.BindEnv("discovery.search_limit", "SCOUT_DISCOVERY_SEARCH_LIMIT")
	v.BindEnv("discovery.boosted_cooldown_hours", "SCOUT_DISCOVERY_BOOSTED_COOLDOWN_HOURS")
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.data_dir", "data_out")
	v.SetDefault("app.charts_dir", "etc/charts")
	v.SetDefault("app.max_response_size", 10*1024*1024) // 10MB

	// Telegram
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.admin_chat_id", 0)
	v.SetDefault("telegram.page_size", 15)

	// DexScreener
	v.SetDefault("dexscreener.base_url", "https://api.dexscreener.com")
	v.SetDefault("dexscreener.request_timeout", 30)
	v.SetDefault("dexscreener.max_retries", 3)

	// SolanaTracker
	v.SetDefault("solanatracker.base_url", "https://data.solanatracker.io")
	v.SetDefault("solanatracker.api_key", "")
	v.SetDefault("solanatracker.request_timeout", 15)
	v.SetDefault("solanatracker.max_retries", 3)
	v.SetDefault("solanatracker.max_age_minutes", 10080) // 7 days

	// Grok
	v.SetDefault("grok.base_url", "https://api.x.ai/v1")
	v.SetDefault("grok.api_key", "")
	v.SetDefault("grok.request_timeout", 60)
	v.SetDefault("grok.max_retries", 2)

	// Database
	v.SetDefault("database.url", "")
	v.SetDefault("database.coin_ttl_minutes", 5)
	v.SetDefault("database.sentiment_ttl_minutes", 60)
	v.SetDefault("database.cleanup_days", 7)
	v.SetDefault("database.cleanup_interval_hours", 6)

	// Discovery
	v.SetDefault("discovery.min_fdv", 1_000.0)
	v.SetDefault("discovery.max_fdv", 1_000_000_000.0)
	v.SetDefault("discovery.search_terms", []string{})
	v.SetDefault("discovery.search_limit", 50)
	v.SetDefault("discovery.boosted_cooldown_hours", 2)
}

func setupFlags(v *viper.Viper) {
	flagsOnce.Do(func() {
		pflag.String("telegram.bot_token", "", "Telegram bot token (env: TELEGRAM_BOT_TOKEN)")
		pflag.Int64("telegram.admin_chat_id", 0, "Chat ID for boosted token alerts (env: TELEGRAM_ADMIN_CHAT_ID)")
		pflag.Int("telegram.page_size", 15, "Results per page in bot replies (env: SCOUT_TELEGRAM_PAGE_SIZE)")

		pflag.String("dexscreener.base_url", "https://api.dexscreener.com", "DexScreener API base URL (env: SCOUT_DEXSCREENER_BASE_URL)")
		pflag.Int("dexscreener.request_timeout", 30, "DexScreener request timeout in seconds (env: SCOUT_DEXSCREENER_REQUEST_TIMEOUT)")
		pflag.Int("dexscreener.max_retries", 3, "Max retries for DexScreener requests (env: SCOUT_DEXSCREENER_MAX_RETRIES)")

		pflag.String("solanatracker.api_key", "", "SolanaTracker API key (env: SOLANATRACKER_API_KEY)")
		pflag.String("solanatracker.base_url", "https://data.solanatracker.io", "SolanaTracker API base URL (env: SCOUT_SOLANATRACKER_BASE_URL)")
		pflag.Int("solanatracker.request_timeout", 15, "SolanaTracker request timeout in seconds (env: SCOUT_SOLANATRACKER_REQUEST_TIMEOUT)")
		pflag.Int("solanatracker.max_retries", 3, "Max retries for SolanaTracker requests (env: SCOUT_SOLANATRACKER_MAX_RETRIES)")
		pflag.Int("solanatracker.max_age_minutes", 10080, "Default max pair age in minutes (env: SCOUT_SOLANATRACKER_MAX_AGE_MINUTES)")

		pflag.String("grok.api_key", "", "x.ai API key for sentiment analysis (env: XAI_API_KEY)")
		pflag.String("grok.base_url", "https://api.x.ai/v1", "x.ai API base URL (env: SCOUT_GROK_BASE_URL)")
		pflag.Int("grok.request_timeout", 60, "Grok request timeout in seconds (env: SCOUT_GROK_REQUEST_TIMEOUT)")
		pflag.Int("grok.max_retries", 2, "Max retries for Grok requests (env: SCOUT_GROK_MAX_RETRIES)")

		pflag.String("database.url", "", "Postgres connection URL, empty uses in-memory stores (env: DATABASE_URL)")
		pflag.Int("database.coin_ttl_minutes", 5, "Memecoin cache TTL in minutes (env: SCOUT_DB_COIN_TTL_MINUTES)")
		pflag.Int("database.sentiment_ttl_minutes", 60, "Sentiment cache TTL in minutes (env: SCOUT_DB_SENTIMENT_TTL_MINUTES)")
		pflag.Int("database.cleanup_days", 7, "Delete cached rows older than this many days (env: SCOUT_DB_CLEANUP_DAYS)")
		pflag.Int("database.cleanup_interval_hours", 6, "Cache cleanup interval in hours (env: SCOUT_DB_CLEANUP_INTERVAL_HOURS)")

		pflag.String("app.data_dir", "data_out", "Data directory (env: SCOUT_APP_DATA_DIR)")
		pflag.String("app.charts_dir", "etc/charts", "Directory for generated chart images (env: SCOUT_APP_CHARTS_DIR)")
		pflag.Int64("app.max_response_size", 10*1024*1024, "Max response size in bytes (env: SCOUT_APP_MAX_RESPONSE_SIZE)")

		pflag.Float64("discovery.min_fdv", 1_000.0, "Minimum FDV for discovered tokens (env: SCOUT_DISCOVERY_MIN_FDV)")
		pflag.Float64("discovery.max_fdv", 1_000_000_000.0, "Maximum FDV for discovered tokens (env: SCOUT_DISCOVERY_MAX_FDV)")
		pflag.String("discovery.search_terms", "", "Comma-separated search terms overriding the built-in rotation (env: SCOUT_DISCOVERY_SEARCH_TERMS)")
		pflag.Int("discovery.search_limit", 50, "Max tokens returned by a discovery pass (env: SCOUT_DISCOVERY_SEARCH_LIMIT)")
		pflag.Int("discovery.boosted_cooldown_hours", 2, "Per-token cooldown for boosted alerts in hours (env: SCOUT_DISCOVERY_BOOSTED_COOLDOWN_HOURS)")

		pflag.Parse()
	})
	v.BindPFlags(pflag.CommandLine)
}

func validateConfig(cfg *Config) error {
	var problems []error

	if cfg.Telegram.PageSize < 1 {
		problems = append(problems, fmt.Errorf("telegram.page_size must be at least 1, got %d", cfg.Telegram.PageSize))
	}
	if cfg.DexScreener.BaseURL == "" {
		problems = append(problems, errors.New("dexscreener.base_url is required"))
	}
	if cfg.Discovery.MinFDV < 0 {
		problems = append(problems, fmt.Errorf("discovery.min_fdv must not be negative, got %v", cfg.Discovery.MinFDV))
	}
	if cfg.Discovery.MaxFDV <= cfg.Discovery.MinFDV {
		problems = append(problems, fmt.Errorf("discovery.max_fdv must be greater than discovery.min_fdv (%v <= %v)", cfg.Discovery.MaxFDV, cfg.Discovery.MinFDV))
	}
	if cfg.Discovery.SearchLimit < 1 {
		problems = append(problems, fmt.Errorf("discovery.search_limit must be at least 1, got %d", cfg.Discovery.SearchLimit))
	}
	if cfg.Database.CoinTTLMinutes < 1 {
		problems = append(problems, fmt.Errorf("database.coin_ttl_minutes must be at least 1, got %d", cfg.Database.CoinTTLMinutes))
	}
	if cfg.Database.SentimentTTLMinutes < 1 {
		problems = append(problems, fmt.Errorf("database.sentiment_ttl_minutes must be at least 1, got %d", cfg.Database.SentimentTTLMinutes))
	}
	if cfg.Database.CleanupDays < 1 {
		problems = append(problems, fmt.Errorf("database.cleanup_days must be at least 1, got %d", cfg.Database.CleanupDays))
	}
	if cfg.SolanaTracker.MaxAgeMinutes < 1 {
		problems = append(problems, fmt.Errorf("solanatracker.max_age_minutes must be at least 1, got %d", cfg.SolanaTracker.MaxAgeMinutes))
	}

	return errors.Join(problems...)
}
