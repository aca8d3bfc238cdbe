package grok

// Sentiment analysis on top of the chat completions transport. Two modes:
// a live web-search analysis (grok-beta searches Twitter itself) and a plain
// text mode that analyzes caller-supplied posts. Replies follow a fixed
// SENTIMENT / EXPLANATION / TWEET_COUNT format that parseAnalysis scans.

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"memescout/internal/infra/log"
	"memescout/internal/infra/retry"

	"go.uber.org/zap"
)

const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

const defaultExplanation = "Unable to determine sentiment"

// Analysis is one sentiment verdict for a token.
type Analysis struct {
	Sentiment   string
	Explanation string
	TweetCount  int
}

var digitsPattern = regexp.MustCompile(`\d+`)

const searchSystemPrompt = "You are a crypto sentiment analyst with LIVE web search access. " +
	"You MUST search Twitter in real-time for current tweets and analyze actual recent discussions. " +
	"Always use web search to find the latest information. Never use cached data or make assumptions."

const textsSystemPrompt = "You are a financial sentiment analyst specializing in cryptocurrency and memecoins. " +
	"Provide accurate, unbiased sentiment analysis based on social media content."

// AnalyzeWithSearch asks the model to search Twitter for recent posts about
// the token and judge the sentiment itself.
func (c *Client) AnalyzeWithSearch(ctx context.Context, address, name string) (Analysis, error) {
	content, err := c.createChatCompletion(ctx, chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: searchSystemPrompt},
			{Role: "user", Content: searchPrompt(address, name)},
		},
		Model:       modelWithSearch,
		Temperature: 0.4,
		MaxTokens:   1200,
		WebSearch:   true,
	})
	if err != nil {
		return Analysis{}, err
	}

	analysis := parseAnalysis(content, true)
	log.LogSuccess("Sentiment analysis completed",
		zap.String("token", name),
		zap.String("sentiment", analysis.Sentiment),
		zap.Int("tweets", analysis.TweetCount))
	return analysis, nil
}

// AnalyzeTexts judges sentiment from caller-supplied posts, no web search.
// Empty input short-circuits without an API call.
func (c *Client) AnalyzeTexts(ctx context.Context, address, name string, texts []string) (Analysis, error) {
	tweets, count := formatTweets(texts)
	if tweets == "" {
		return Analysis{Sentiment: SentimentNeutral, Explanation: "No tweets available for analysis"}, nil
	}

	content, err := c.createChatCompletion(ctx, chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: textsSystemPrompt},
			{Role: "user", Content: textsPrompt(address, name, tweets)},
		},
		Model:       modelText,
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		return Analysis{}, err
	}

	analysis := parseAnalysis(content, false)
	analysis.TweetCount = count
	return analysis, nil
}

// FallbackAnalysis maps a failed call to the message shown to the user.
func FallbackAnalysis(err error) Analysis {
	analysis := Analysis{Sentiment: SentimentNeutral, Explanation: "Analysis unavailable due to technical error"}

	var httpErr *retry.HTTPError
	var netErr net.Error

	switch {
	case errors.As(err, &httpErr):
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests:
			analysis.Explanation = "Rate limit exceeded - try again later"
		case http.StatusUnauthorized, http.StatusForbidden:
			analysis.Explanation = "API authentication failed"
		default:
			analysis.Explanation = "API error occurred"
		}
	case errors.Is(err, context.DeadlineExceeded):
		analysis.Explanation = "Request timeout - try again"
	case errors.As(err, &netErr) && netErr.Timeout():
		analysis.Explanation = "Request timeout - try again"
	}

	return analysis
}

func searchPrompt(address, name string) string {
	short := address
	if len(short) > 15 {
		short = short[:15]
	}

	return fmt.Sprintf(`You MUST search Twitter RIGHT NOW for live tweets about the Solana token "$%s" (contract: %s...).

CRITICAL INSTRUCTIONS:
1. Use web search to find REAL CURRENT tweets from Twitter about this token
2. Search for: "twitter.com %s solana", "twitter.com $%s", "%s crypto"
3. Look for tweets from the LAST 24-48 HOURS ONLY
4. DO NOT use cached data - search live Twitter RIGHT NOW

After finding and analyzing ACTUAL RECENT tweets, determine the sentiment:

BULLISH signals:
- People talking about buying, accumulating, holding
- Moon/rocket emojis and positive price predictions
- Excitement about partnerships, listings, or news
- "This will 10x", "undervalued", "gem" type comments
- High engagement and growing community buzz

BEARISH signals:
- People selling, worried about dumps
- FUD, scam accusations, rug pull concerns
- Price crash discussions, loss posts
- Low volume complaints, dead project comments
- Negative sentiment and fear

NEUTRAL signals:
- Mixed opinions, some bullish some bearish
- Low activity or very few tweets
- Just informational posts with no clear sentiment

Based on the LIVE tweets you find RIGHT NOW, respond in this EXACT format:

SENTIMENT: [Bullish/Bearish/Neutral]
EXPLANATION: [Write 3-4 sentences explaining what you found in the actual live tweets - mention specific sentiment patterns, price discussions, community mood, and activity level]
TWEET_COUNT: [Number of relevant tweets you analyzed]

IMPORTANT: Your analysis MUST be based on ACTUAL CURRENT tweets you find via web search, not assumptions or old data.`,
		name, short, name, name, name)
}

func textsPrompt(address, name, tweets string) string {
	return fmt.Sprintf(`Analyze these REAL-TIME tweets for bullish/bearish sentiment on this Solana memecoin.

Contract Address: %s
Token Name: %s

Recent Tweets to analyze:
%s

Instructions:
1. Determine overall sentiment: "Bullish", "Bearish", or "Neutral"
2. Provide a concise explanation in 3-4 lines covering:
   - Overall market sentiment
   - Key signals from the tweets
   - Community mood and activity level
3. Consider factors like: price predictions, buying/selling sentiment, community excitement, fear/greed indicators

Respond in this exact format:
SENTIMENT: [Bullish/Bearish/Neutral]
EXPLANATION: [Your 3-4 line explanation]`,
		address, name, tweets)
}

func formatTweets(texts []string) (string, int) {
	var parts []string
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("Tweet %d: %s", len(parts)+1, text))
	}
	return strings.Join(parts, "\n\n"), len(parts)
}

// parseAnalysis scans the reply for the marker lines. withCount enables the
// multi-line explanation (everything up to TWEET_COUNT) and the count default
// of 15 used by the web-search mode.
func parseAnalysis(content string, withCount bool) Analysis {
	analysis := Analysis{Sentiment: SentimentNeutral, Explanation: defaultExplanation}

	lines := strings.Split(strings.TrimSpace(content), "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		switch {
		case strings.HasPrefix(line, "SENTIMENT:"):
			analysis.Sentiment = normalizeSentiment(strings.TrimPrefix(line, "SENTIMENT:"))

		case strings.HasPrefix(line, "EXPLANATION:"):
			analysis.Explanation = strings.TrimSpace(strings.TrimPrefix(line, "EXPLANATION:"))
			if withCount {
				// Explanations often span several lines before the count marker.
				var extra []string
				for _, next := range lines[i+1:] {
					next = strings.TrimSpace(next)
					if strings.HasPrefix(next, "TWEET_COUNT:") {
						break
					}
					if next != "" {
						extra = append(extra, next)
					}
				}
				if len(extra) > 0 {
					analysis.Explanation += " " + strings.Join(extra, " ")
				}
			}
			if analysis.Explanation == "" {
				analysis.Explanation = "No explanation provided"
			}

		case strings.HasPrefix(line, "TWEET_COUNT:"):
			countText := strings.TrimSpace(strings.TrimPrefix(line, "TWEET_COUNT:"))
			if match := digitsPattern.FindString(countText); match != "" {
				if n, err := strconv.Atoi(match); err == nil {
					analysis.TweetCount = n
				}
			}
		}
	}

	// No marker lines at all: judge the whole reply and quote its opening.
	if analysis.Sentiment == SentimentNeutral && analysis.Explanation == defaultExplanation {
		lower := strings.ToLower(content)
		if strings.Contains(lower, "bullish") {
			analysis.Sentiment = SentimentBullish
		} else if strings.Contains(lower, "bearish") {
			analysis.Sentiment = SentimentBearish
		}

		sentences := strings.Split(content, ".")
		if withCount {
			if len(sentences) > 3 {
				sentences = sentences[:3]
			}
			for i, s := range sentences {
				sentences[i] = strings.TrimSpace(s)
			}
			analysis.Explanation = strings.TrimSpace(strings.Join(sentences, ". "))
			if len(analysis.Explanation) > 300 {
				analysis.Explanation = analysis.Explanation[:297] + "..."
			}
		} else {
			analysis.Explanation = strings.TrimSpace(sentences[0])
			if len(analysis.Explanation) > 200 {
				analysis.Explanation = analysis.Explanation[:197] + "..."
			}
		}
	}

	if withCount && analysis.TweetCount == 0 {
		analysis.TweetCount = 15
	}

	return analysis
}

func normalizeSentiment(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(raw, "bullish"):
		return SentimentBullish
	case strings.Contains(raw, "bearish"):
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}
