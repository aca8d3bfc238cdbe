package grok

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"memescout/internal/infra/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(serverURL string) *Client {
	c := NewClient(serverURL, "test-key", 5*time.Second, 1)
	c.rateLimiter = rate.NewLimiter(rate.Inf, 0)
	return c
}

func completionReply(content string) string {
	quoted, _ := json.Marshal(content)
	return `{"choices":[{"message":{"content":` + string(quoted) + `}}]}`
}

func TestParseAnalysisFullReply(t *testing.T) {
	content := `SENTIMENT: Bullish
EXPLANATION: Strong buying pressure across recent posts.
Community is hyped about the new listing.
TWEET_COUNT: 23`

	analysis := parseAnalysis(content, true)

	assert.Equal(t, SentimentBullish, analysis.Sentiment)
	assert.Equal(t, "Strong buying pressure across recent posts. Community is hyped about the new listing.", analysis.Explanation)
	assert.Equal(t, 23, analysis.TweetCount)
}

func TestParseAnalysisSingleLineMode(t *testing.T) {
	content := `SENTIMENT: Bearish
EXPLANATION: Mostly dump talk.
This second line is not part of the explanation here.`

	analysis := parseAnalysis(content, false)

	assert.Equal(t, SentimentBearish, analysis.Sentiment)
	assert.Equal(t, "Mostly dump talk.", analysis.Explanation)
	assert.Zero(t, analysis.TweetCount)
}

func TestParseAnalysisCountDefaults(t *testing.T) {
	analysis := parseAnalysis("SENTIMENT: Neutral\nEXPLANATION: Quiet day.", true)

	assert.Equal(t, SentimentNeutral, analysis.Sentiment)
	assert.Equal(t, 15, analysis.TweetCount)
}

func TestParseAnalysisWholeContentFallback(t *testing.T) {
	content := "The overall mood looks bearish right now. Several accounts are posting loss screenshots. Volume keeps fading. Nothing else stands out."

	analysis := parseAnalysis(content, true)

	assert.Equal(t, SentimentBearish, analysis.Sentiment)
	assert.Equal(t, "The overall mood looks bearish right now. Several accounts are posting loss screenshots. Volume keeps fading", analysis.Explanation)
	assert.Equal(t, 15, analysis.TweetCount)
}

func TestParseAnalysisFallbackTruncates(t *testing.T) {
	content := strings.Repeat("x", 400)

	analysis := parseAnalysis(content, false)

	assert.Equal(t, SentimentNeutral, analysis.Sentiment)
	assert.Len(t, analysis.Explanation, 200)
	assert.True(t, strings.HasSuffix(analysis.Explanation, "..."))
}

func TestNormalizeSentiment(t *testing.T) {
	assert.Equal(t, SentimentBullish, normalizeSentiment("  Bullish \U0001F680"))
	assert.Equal(t, SentimentBearish, normalizeSentiment("[Bearish]"))
	assert.Equal(t, SentimentNeutral, normalizeSentiment("mixed feelings"))
	assert.Equal(t, SentimentNeutral, normalizeSentiment(""))
}

func TestFormatTweets(t *testing.T) {
	text, count := formatTweets([]string{"to the moon", "", "  ", "selling everything"})

	assert.Equal(t, 2, count)
	assert.Equal(t, "Tweet 1: to the moon\n\nTweet 2: selling everything", text)
}

func TestFallbackAnalysis(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", &retry.HTTPError{StatusCode: 429}, "Rate limit exceeded - try again later"},
		{"unauthorized", &retry.HTTPError{StatusCode: 401}, "API authentication failed"},
		{"forbidden", &retry.HTTPError{StatusCode: 403}, "API authentication failed"},
		{"server error", &retry.HTTPError{StatusCode: 500}, "API error occurred"},
		{"timeout", context.DeadlineExceeded, "Request timeout - try again"},
		{"generic", assert.AnError, "Analysis unavailable due to technical error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			analysis := FallbackAnalysis(tc.err)
			assert.Equal(t, SentimentNeutral, analysis.Sentiment)
			assert.Equal(t, tc.want, analysis.Explanation)
			assert.Zero(t, analysis.TweetCount)
		})
	}
}

func TestAnalyzeWithSearchRequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "grok-beta", payload["model"])
		assert.Equal(t, true, payload["web_search"])
		assert.Equal(t, 0.4, payload["temperature"])
		assert.Equal(t, 1200.0, payload["max_tokens"])

		messages := payload["messages"].([]interface{})
		require.Len(t, messages, 2)
		user := messages[1].(map[string]interface{})["content"].(string)
		assert.Contains(t, user, `"$WIF"`)
		assert.Contains(t, user, "(contract: EKpQGSJtjMFqKZ9...)")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionReply("SENTIMENT: Bullish\nEXPLANATION: Lots of buy posts.\nTWEET_COUNT: 40")))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	analysis, err := client.AnalyzeWithSearch(context.Background(), "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm", "WIF")
	require.NoError(t, err)
	assert.Equal(t, SentimentBullish, analysis.Sentiment)
	assert.Equal(t, "Lots of buy posts.", analysis.Explanation)
	assert.Equal(t, 40, analysis.TweetCount)
}

func TestAnalyzeTextsRequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "grok-3", payload["model"])
		assert.Equal(t, 0.3, payload["temperature"])
		assert.Equal(t, 500.0, payload["max_tokens"])

		// no web search in text mode
		_, hasSearch := payload["web_search"]
		assert.False(t, hasSearch)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionReply("SENTIMENT: Bearish\nEXPLANATION: Dump talk dominates.")))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	analysis, err := client.AnalyzeTexts(context.Background(), "mint1", "TEST", []string{"dumping hard", "rug incoming"})
	require.NoError(t, err)
	assert.Equal(t, SentimentBearish, analysis.Sentiment)
	assert.Equal(t, 2, analysis.TweetCount)
}

func TestAnalyzeTextsEmptyInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call expected for empty input")
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	analysis, err := client.AnalyzeTexts(context.Background(), "mint1", "TEST", []string{" ", ""})
	require.NoError(t, err)
	assert.Equal(t, SentimentNeutral, analysis.Sentiment)
	assert.Equal(t, "No tweets available for analysis", analysis.Explanation)
}

func TestAnalyzeWithSearchSurfacesAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid key"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.AnalyzeWithSearch(context.Background(), "mint1", "TEST")
	require.Error(t, err)

	analysis := FallbackAnalysis(err)
	assert.Equal(t, "API authentication failed", analysis.Explanation)
}

func TestPingUsesSmallRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "grok-3", payload["model"])
		assert.Equal(t, 50.0, payload["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionReply("Connection successful")))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	assert.NoError(t, client.Ping(context.Background()))
}
