// Package catalog implements the product catalog client the engine's
// alternatives resolver fans out to. The client wraps the catalog service's
// search endpoint with rate limiting, retries and a circuit breaker so a
// degraded catalog slows lookups down instead of taking the optimizer out.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/cartwise/cart-service/internal/engine"
)

// Config holds the catalog client configuration.
type Config struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
}

// DefaultConfig returns the default catalog client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "http://localhost:8081",
		Timeout:           10 * time.Second,
		RequestsPerSecond: 50,
		Burst:             10,
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
	}
}

// Client is an HTTP catalog client. It implements engine.CatalogSearcher.
type Client struct {
	httpClient *http.Client
	config     Config
	limiter    *rate.Limiter
	breaker    *breaker
	logger     zerolog.Logger
}

// NewClient creates a catalog client with rate limiting and a circuit
// breaker at defaults.
func NewClient(config Config) *Client {
	logger := log.With().Str("component", "catalog_client").Logger()
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		breaker:    newBreaker(DefaultBreakerConfig(), logger),
		logger:     logger,
	}
}

// searchResponse is the catalog service's search payload.
type searchResponse struct {
	Products []engine.Product `json:"products"`
}

// Search queries the catalog for products matching a cart item's name.
// The query is normalized before sending so cosmetic spelling differences
// hit the same catalog results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]engine.Product, error) {
	if !c.breaker.allow() {
		return nil, fmt.Errorf("catalog: circuit breaker open for query %q", query)
	}

	endpoint := fmt.Sprintf("%s/api/v1/products/search?q=%s&limit=%d",
		c.config.BaseURL, url.QueryEscape(NormalizeQuery(query)), limit)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		c.breaker.recordFailure()
		return nil, err
	}
	c.breaker.recordSuccess()

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("catalog: decode search response: %w", err)
	}
	return resp.Products, nil
}

// get performs a GET with rate limiting and retry on retryable statuses.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	var lastStatus int
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("catalog: rate limiter: %w", err)
		}

		body, status, err := c.doOnce(ctx, endpoint)
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}
		lastStatus = status
		lastErr = err

		if err == nil && !isRetryableStatus(status) {
			return nil, &FetchError{URL: endpoint, Attempts: attempt + 1, LastStatus: status}
		}
		if attempt == c.config.MaxRetries {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		backoff := c.backoff(attempt, status)
		c.logger.Debug().
			Int("attempt", attempt+1).
			Int("status", status).
			Dur("backoff", backoff).
			Msg("Retrying catalog request")

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, &FetchError{URL: endpoint, Attempts: c.config.MaxRetries + 1, LastStatus: lastStatus, LastError: lastErr}
}

func (c *Client) doOnce(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cartwise-cart-service/1.0")
	if c.config.APIKey != "" {
		req.Header.Set("X-API-Key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	// 4 MB is far beyond any real search response.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// backoff computes the retry delay: exponential with 0-25% jitter, and a
// steeper curve after 429 responses.
func (c *Client) backoff(attempt int, status int) time.Duration {
	base := 2.0
	if status == http.StatusTooManyRequests {
		base = 3.0
	}
	delay := float64(c.config.InitialBackoff) * math.Pow(base, float64(attempt))
	delay = math.Min(delay, float64(c.config.MaxBackoff))
	delay += rand.Float64() * 0.25 * delay
	return time.Duration(delay)
}

// isRetryableStatus reports whether an HTTP status is worth retrying.
// Retryable: 429 and 5xx.
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

// FetchError is returned when all retry attempts are exhausted or the
// catalog answered with a non-retryable status.
type FetchError struct {
	URL        string
	Attempts   int
	LastStatus int
	LastError  error
}

func (e *FetchError) Error() string {
	msg := "catalog: failed to fetch " + e.URL + " after " + strconv.Itoa(e.Attempts) + " attempts"
	if e.LastStatus != 0 {
		msg += " (HTTP " + strconv.Itoa(e.LastStatus) + ")"
	}
	if e.LastError != nil {
		msg += ": " + e.LastError.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.LastError
}
