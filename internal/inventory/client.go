// Package inventory talks to the inventory service for stock checks and
// short-lived reservations on optimized carts. Reservations are idempotent:
// every Reserve call carries a generated idempotency key so a retried request
// never double-holds stock.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cartwise/cart-service/internal/pkg/cuid2"
)

// Config holds the inventory client configuration.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns the default inventory client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8082",
		Timeout: 5 * time.Second,
	}
}

// StockLevel is one product's availability at one store.
type StockLevel struct {
	ProductID string `json:"productId"`
	Store     string `json:"store"`
	Available int    `json:"available"`
}

// ReservationLine is one line of a reservation request.
type ReservationLine struct {
	ProductID string `json:"productId"`
	Store     string `json:"store"`
	Quantity  int    `json:"quantity"`
}

// Reservation is a confirmed stock hold.
type Reservation struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Client is an HTTP inventory client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// NewClient creates an inventory client.
func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		logger:     log.With().Str("component", "inventory_client").Logger(),
	}
}

// CheckStockBatch returns availability for the given (product, store) pairs
// in one round trip.
func (c *Client) CheckStockBatch(ctx context.Context, lines []ReservationLine) ([]StockLevel, error) {
	var resp struct {
		Levels []StockLevel `json:"levels"`
	}
	if err := c.post(ctx, "/api/v1/stock/check", "", map[string]any{"lines": lines}, &resp); err != nil {
		return nil, err
	}
	return resp.Levels, nil
}

// Reserve places a short-lived hold on the given lines. The generated
// idempotency key is sent as a header; replaying the same reservation is
// safe on the server side.
func (c *Client) Reserve(ctx context.Context, lines []ReservationLine, holdFor time.Duration) (*Reservation, error) {
	idempotencyKey := cuid2.GeneratePrefixedId("rsv", cuid2.PrefixedIdOptions{TimeSortable: true})

	var resp Reservation
	body := map[string]any{
		"lines":       lines,
		"holdSeconds": int(holdFor.Seconds()),
	}
	if err := c.post(ctx, "/api/v1/reservations", idempotencyKey, body, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("reservation_id", resp.ID).
		Str("idempotency_key", idempotencyKey).
		Int("lines", len(lines)).
		Msg("Stock reserved")
	return &resp, nil
}

// Release cancels a reservation before it expires.
func (c *Client) Release(ctx context.Context, reservationID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.config.BaseURL+"/api/v1/reservations/"+reservationID, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inventory: release %s: %w", reservationID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inventory: release %s: HTTP %d", reservationID, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path, idempotencyKey string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	c.setHeaders(req, idempotencyKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inventory: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("inventory: %s: HTTP %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) setHeaders(req *http.Request, idempotencyKey string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("X-API-Key", c.config.APIKey)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
}
