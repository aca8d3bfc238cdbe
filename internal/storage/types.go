package storage

import "time"

// SavedFilter is the one saved filter a chat can keep.
type SavedFilter struct {
	ChatID     int64
	FilterText string // canonical filter.EncodePredicate form
	Rendered   string // display form shown in the bot
	CreatedAt  time.Time
}

// SentimentRecord is one cached sentiment verdict, keyed by token symbol.
type SentimentRecord struct {
	Symbol      string // stored uppercased
	Sentiment   string // bullish, bearish, neutral
	Explanation string
	TweetCount  int
	CachedAt    time.Time
}
