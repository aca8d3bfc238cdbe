package sentiment

// Bridges the Grok client and the sentiment cache: one live analysis per
// token symbol per cache window, fallback text when the API is down.

import (
	"context"
	"errors"
	"strings"
	"time"

	"memescout/internal/clients_api/grok"
	"memescout/internal/infra/log"
	"memescout/internal/storage"

	"go.uber.org/zap"
)

// DefaultSentimentTTL bounds how long one analysis keeps being served
// before Grok is asked again.
const DefaultSentimentTTL = time.Hour

// ErrNoSymbol is returned when neither a symbol nor a name is available to
// key the analysis on.
var ErrNoSymbol = errors.New("token symbol is required")

// Analyzer is the x.ai-backed analysis surface.
type Analyzer interface {
	AnalyzeWithSearch(ctx context.Context, address, name string) (grok.Analysis, error)
	AnalyzeTexts(ctx context.Context, address, name string, texts []string) (grok.Analysis, error)
}

// Options configures a Service. Analyzer is required; without a Store every
// request goes to the API.
type Options struct {
	Analyzer Analyzer
	Store    storage.SentimentCacheStore
	TTL      time.Duration
}

// Service serves sentiment analyses with caching on top of the Grok client.
type Service struct {
	analyzer Analyzer
	store    storage.SentimentCacheStore
	ttl      time.Duration
}

// NewService builds a Service from opts, filling in the default TTL.
func NewService(opts Options) *Service {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSentimentTTL
	}
	return &Service{
		analyzer: opts.Analyzer,
		store:    opts.Store,
		ttl:      ttl,
	}
}

// Result is one sentiment verdict ready for display.
type Result struct {
	Symbol      string
	Sentiment   string
	Explanation string
	TweetCount  int
	FromCache   bool
}

// Analyze returns the sentiment verdict for one token, keyed by uppercased
// symbol. Cache hits skip the API; API failures come back as a readable
// fallback verdict that is never cached, so the next request retries.
func (s *Service) Analyze(ctx context.Context, address, name, symbol string) (*Result, error) {
	key := cacheKey(symbol, name)
	if key == "" {
		return nil, ErrNoSymbol
	}

	if s.store != nil {
		cached, err := s.store.Get(ctx, key, s.ttl)
		if err == nil {
			log.LogInfo("Serving sentiment from cache", zap.String("symbol", key))
			return &Result{
				Symbol:      key,
				Sentiment:   cached.Sentiment,
				Explanation: cached.Explanation,
				TweetCount:  cached.TweetCount,
				FromCache:   true,
			}, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			log.LogWarn("Sentiment cache read failed", zap.String("symbol", key), zap.Error(err))
		}
	}

	analysis, err := s.analyzer.AnalyzeWithSearch(ctx, address, name)
	if err != nil {
		log.LogWarn("Sentiment analysis failed, serving fallback",
			zap.String("symbol", key),
			zap.Error(err))
		fallback := grok.FallbackAnalysis(err)
		return resultFrom(key, fallback, false), nil
	}

	if s.store != nil {
		record := &storage.SentimentRecord{
			Symbol:      key,
			Sentiment:   analysis.Sentiment,
			Explanation: analysis.Explanation,
			TweetCount:  analysis.TweetCount,
		}
		if err := s.store.Save(ctx, record); err != nil {
			log.LogWarn("Sentiment cache write failed", zap.String("symbol", key), zap.Error(err))
		}
	}

	return resultFrom(key, analysis, false), nil
}

// AnalyzeTexts runs the text-mode analysis over caller-supplied posts. The
// result is tied to the supplied material, so it is never cached.
func (s *Service) AnalyzeTexts(ctx context.Context, address, name, symbol string, texts []string) (*Result, error) {
	key := cacheKey(symbol, name)
	if key == "" {
		return nil, ErrNoSymbol
	}

	analysis, err := s.analyzer.AnalyzeTexts(ctx, address, name, texts)
	if err != nil {
		log.LogWarn("Text sentiment analysis failed, serving fallback",
			zap.String("symbol", key),
			zap.Error(err))
		analysis = grok.FallbackAnalysis(err)
	}

	return resultFrom(key, analysis, false), nil
}

func cacheKey(symbol, name string) string {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	if key == "" {
		key = strings.ToUpper(strings.TrimSpace(name))
	}
	return key
}

func resultFrom(symbol string, a grok.Analysis, fromCache bool) *Result {
	return &Result{
		Symbol:      symbol,
		Sentiment:   a.Sentiment,
		Explanation: a.Explanation,
		TweetCount:  a.TweetCount,
		FromCache:   fromCache,
	}
}
