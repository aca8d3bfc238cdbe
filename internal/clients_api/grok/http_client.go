package grok

// Package grok contains the client for the xAI chat completions API.
// This file contains the base HTTP client - builds the POST request, applies
// rate limiting, retries and the circuit breaker, and extracts the reply text.
// Sentiment prompts and reply parsing live in sentiment.go.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"memescout/internal/infra/log"
	"memescout/internal/infra/retry"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL - xAI API root, requires a Bearer key.
	DefaultBaseURL = "https://api.x.ai/v1"

	defaultTimeout = 60 * time.Second

	completionsEndpoint = "/chat/completions"

	// modelWithSearch supports the web_search flag, modelText does not.
	modelWithSearch = "grok-beta"
	modelText       = "grok-3"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Model       string        `json:"model"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
	WebSearch   bool          `json:"web_search,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to the xAI API. Completions are slow, so the default timeout
// is a full minute and the limiter keeps requests to one per second.
type Client struct {
	baseURL         string
	apiKey          string
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	maxResponseSize int64
	retryOpts       retry.Options
}

// NewClient builds an xAI client. Empty baseURL selects the public API, zero
// timeout and maxRetries select the defaults.
func NewClient(baseURL, apiKey string, timeout time.Duration, maxRetries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxRetries <= 0 {
		maxRetries = 2
	}

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GrokAPI",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		rateLimiter:     rate.NewLimiter(rate.Limit(1), 1),
		circuitBreaker:  circuitBreaker,
		maxResponseSize: 10 * 1024 * 1024, // 10MB
		retryOpts: retry.Options{
			MaxRetries: maxRetries,
			BaseDelay:  500 * time.Millisecond,
			MaxDelay:   10 * time.Second,
			Backoff:    2.0,
		},
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// createChatCompletion posts a completion request and returns the text of the
// first choice. An empty choices array yields an empty string, not an error.
func (c *Client) createChatCompletion(ctx context.Context, payload chatRequest) (string, error) {
	requestID := log.GenerateRequestID()
	startTime := time.Now()

	if ctx.Err() != nil {
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	}

	var content string
	err := retry.Do(ctx, c.retryOpts, func() error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}

		_, cbErr := c.circuitBreaker.Execute(func() (interface{}, error) {
			reply, err := c.doChatRequest(ctx, requestID, payload, startTime)
			if err != nil {
				return nil, err
			}
			content = reply
			return reply, nil
		})
		return cbErr
	})
	if err != nil {
		log.LogError("Grok request failed", zap.String("request_id", requestID), zap.String("model", payload.Model), zap.Error(err))
		return "", err
	}

	return content, nil
}

func (c *Client) doChatRequest(ctx context.Context, requestID string, payload chatRequest, startTime time.Time) (string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	log.LogRequest(requestID, http.MethodPost, completionsEndpoint, zap.String("model", payload.Model), zap.Bool("web_search", payload.WebSearch))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogResponse(requestID, 0, time.Since(startTime).Milliseconds(), zap.String("model", payload.Model), zap.Error(err))
		return "", fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	if err != nil {
		log.LogResponse(requestID, resp.StatusCode, time.Since(startTime).Milliseconds(), zap.Error(err))
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	duration := time.Since(startTime).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("model", payload.Model), zap.String("error", "API error response received"))
		return "", &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse completion response: %w", err)
	}

	log.LogResponse(requestID, resp.StatusCode, duration, zap.String("model", payload.Model), zap.String("status", "success"))

	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

// Ping sends a tiny completion to verify the key and connectivity.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := c.createChatCompletion(ctx, chatRequest{
		Messages:  []chatMessage{{Role: "user", Content: "Hello, please respond with 'Connection successful'"}},
		Model:     modelText,
		MaxTokens: 50,
	})
	return err
}
