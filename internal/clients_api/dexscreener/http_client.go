package dexscreener

// Package dexscreener contains the client for the public DexScreener API.
// This file contains the base HTTP client - handles all HTTP requests to the API.
// Acts as transport layer - doesn't know business logic, just sends requests and receives responses.

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
	// DefaultBaseURL - public DexScreener API, no key required.
	DefaultBaseURL = "https://api.dexscreener.com"

	defaultTimeout = 30 * time.Second
)

func GenerateRequestID() string { return log.GenerateRequestID() }

func LogRequest(requestID, method, endpoint string, fields ...zap.Field) {
	log.LogRequest(requestID, method, endpoint, fields...)
}

func LogResponse(requestID string, statusCode int, durationMs int64, fields ...zap.Field) {
	log.LogResponse(requestID, statusCode, durationMs, fields...)
}

func LogDebug(message string, fields ...zap.Field)   { log.LogDebug(message, fields...) }
func LogError(message string, fields ...zap.Field)   { log.LogError(message, fields...) }
func LogInfo(message string, fields ...zap.Field)    { log.LogInfo(message, fields...) }
func LogWarn(message string, fields ...zap.Field)    { log.LogWarn(message, fields...) }
func LogSuccess(message string, fields ...zap.Field) { log.LogSuccess(message, fields...) }

// Client talks to the DexScreener API.
// DexScreener allows roughly one request per second on the free tier, so the
// limiter is strict and retries honor Retry-After on 429.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	maxResponseSize int64
	retryOpts       retry.Options

	// discovery knobs, see discovery.go
	searchTerms []string
	knownTokens []string
	minFDV      float64
	maxFDV      float64
}

// NewClient builds a DexScreener client. Empty baseURL selects the public
// API, zero timeout and maxRetries select the defaults.
func NewClient(baseURL string, timeout time.Duration, maxRetries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}

	// One request per second with a small burst, matching the API's free tier.
	rateLimiter := rate.NewLimiter(rate.Limit(1), 2)

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "DexScreenerAPI",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		rateLimiter:     rateLimiter,
		circuitBreaker:  circuitBreaker,
		maxResponseSize: 10 * 1024 * 1024, // 10MB
		retryOpts: retry.Options{
			MaxRetries: maxRetries,
			BaseDelay:  300 * time.Millisecond,
			MaxDelay:   5 * time.Second,
			Backoff:    2.0,
		},
		searchTerms: defaultSearchTerms,
		knownTokens: defaultKnownTokens(),
		minFDV:      1_000,
		maxFDV:      1_000_000_000,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				// Keep-alive helps with Cloudflare in front of the API.
				DisableKeepAlives: false,
				MaxIdleConns:      10,
				IdleConnTimeout:   90 * time.Second,
			},
		},
	}
}

// MakeRequest performs an HTTP request with rate limiting, retries and the
// circuit breaker. Returns the raw response body.
func (c *Client) MakeRequest(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	requestID := GenerateRequestID()
	startTime := time.Now()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	}

	var respBody []byte
	err := retry.Do(ctx, c.retryOpts, func() error {
		// Wait inside the retry loop so retried attempts are paced too.
		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter wait failed: %w", err)
			}
		}

		if c.circuitBreaker != nil {
			_, cbErr := c.circuitBreaker.Execute(func() (interface{}, error) {
				b, err := c.doRequest(ctx, requestID, method, endpoint, body, startTime)
				if err != nil {
					return nil, err
				}
				respBody = b
				return b, nil
			})
			return cbErr
		}

		b, err := c.doRequest(ctx, requestID, method, endpoint, body, startTime)
		if err != nil {
			return err
		}
		respBody = b
		return nil
	})
	if err != nil {
		LogError("DexScreener request failed", zap.String("request_id", requestID), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	return respBody, nil
}

func (c *Client) doRequest(ctx context.Context, requestID, method, endpoint string, body interface{}, startTime time.Time) ([]byte, error) {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	setBrowserHeaders(req)

	LogRequest(requestID, method, endpoint, zap.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		LogResponse(requestID, 0, duration, zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	limitedReader := io.LimitReader(resp.Body, c.maxResponseSize)

	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	duration := time.Since(startTime).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		contentType := resp.Header.Get("Content-Type")
		if contentType != "" && !strings.Contains(contentType, "application/json") {
			LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.String("error", "blocked by Cloudflare or invalid response"))
		} else {
			LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.String("error", "API error response received"))
		}
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.String("status", "success"))

	return respBody, nil
}

// setBrowserHeaders makes requests look like a regular browser, which keeps
// Cloudflare in front of DexScreener happy.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}
