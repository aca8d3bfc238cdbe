package solanatracker

// Client for the SolanaTracker data API (https://docs.solanatracker.io).
// The search endpoint does server-side filtering, so predicate bounds are
// pushed into query params and the engine re-checks the results.

import (
	"context"
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
	// DefaultBaseURL - SolanaTracker data API.
	DefaultBaseURL = "https://data.solanatracker.io"

	defaultTimeout = 15 * time.Second
)

// Client talks to the SolanaTracker API. Free keys allow 1 rps.
type Client struct {
	baseURL         string
	apiKey          string
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	maxResponseSize int64
	retryOpts       retry.Options
}

// NewClient builds a SolanaTracker client. Empty baseURL selects the public
// API; the key may be empty for the anonymous tier.
func NewClient(baseURL, apiKey string, timeout time.Duration, maxRetries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}

	rateLimiter := rate.NewLimiter(rate.Limit(1), 2)

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "SolanaTrackerAPI",
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
		rateLimiter:     rateLimiter,
		circuitBreaker:  circuitBreaker,
		maxResponseSize: 10 * 1024 * 1024, // 10MB
		retryOpts: retry.Options{
			MaxRetries: maxRetries,
			BaseDelay:  300 * time.Millisecond,
			MaxDelay:   5 * time.Second,
			Backoff:    2.0,
		},
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// MakeRequest performs a GET with rate limiting, retries and the circuit
// breaker. Returns the raw response body.
func (c *Client) MakeRequest(ctx context.Context, endpoint string) ([]byte, error) {
	requestID := log.GenerateRequestID()
	startTime := time.Now()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	}

	var respBody []byte
	err := retry.Do(ctx, c.retryOpts, func() error {
		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter wait failed: %w", err)
			}
		}

		if c.circuitBreaker != nil {
			_, cbErr := c.circuitBreaker.Execute(func() (interface{}, error) {
				b, err := c.doRequest(ctx, requestID, endpoint, startTime)
				if err != nil {
					return nil, err
				}
				respBody = b
				return b, nil
			})
			return cbErr
		}

		b, err := c.doRequest(ctx, requestID, endpoint, startTime)
		if err != nil {
			return err
		}
		respBody = b
		return nil
	})
	if err != nil {
		log.LogError("SolanaTracker request failed", zap.String("request_id", requestID), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	return respBody, nil
}

func (c *Client) doRequest(ctx context.Context, requestID, endpoint string, startTime time.Time) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	log.LogRequest(requestID, "GET", endpoint, zap.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		log.LogResponse(requestID, 0, duration, zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	limitedReader := io.LimitReader(resp.Body, c.maxResponseSize)

	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	duration := time.Since(startTime).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.String("error", "API error response received"))
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.String("status", "success"))

	return respBody, nil
}
