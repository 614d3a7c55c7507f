package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	return cfg
}

func TestSearchDecodesProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products/search", r.URL.Path)
		assert.Equal(t, "whole milk", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[
			{"id":"milk-b","name":"Whole Milk","price":"2.50","store":"StoreB","inStock":true},
			{"id":"milk-c","name":"Whole Milk","price":"2.80","store":"StoreC","inStock":false}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	products, err := client.Search(context.Background(), "Whole Milk", 10)

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "milk-b", products[0].ID)
	assert.Equal(t, "StoreB", products[0].Store)
	assert.True(t, products[0].InStock)
	assert.Equal(t, "2.50", products[0].Price.String())
}

func TestSearchSendsAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.APIKey = "secret"
	client := NewClient(cfg)

	_, err := client.Search(context.Background(), "milk", 5)
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
}

func TestSearchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	_, err := client.Search(context.Background(), "milk", 5)

	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSearchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	_, err := client.Search(context.Background(), "milk", 5)

	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.LastStatus)
}

func TestSearchExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 2
	client := NewClient(cfg)

	_, err := client.Search(context.Background(), "milk", 5)

	require.Error(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSearchRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, "milk", 5)
	require.Error(t, err)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := newBreaker(BreakerConfig{MaxFailures: 3, ResetTimeout: time.Hour, HalfOpenMaxCalls: 1}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		assert.True(t, b.allow())
		b.recordFailure()
	}
	assert.False(t, b.allow(), "Breaker should be open after threshold failures")
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	b := newBreaker(BreakerConfig{MaxFailures: 1, ResetTimeout: time.Millisecond, HalfOpenMaxCalls: 1}, zerolog.Nop())

	b.recordFailure()
	assert.False(t, b.allow())

	time.Sleep(5 * time.Millisecond)
	assert.True(t, b.allow(), "Breaker should probe after the reset timeout")

	b.recordSuccess()
	assert.True(t, b.allow(), "Breaker should close after a successful probe")
	assert.Equal(t, breakerClosed, b.state)
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	b := newBreaker(BreakerConfig{MaxFailures: 1, ResetTimeout: time.Millisecond, HalfOpenMaxCalls: 1}, zerolog.Nop())

	b.recordFailure()
	time.Sleep(5 * time.Millisecond)
	require.True(t, b.allow())

	b.recordFailure()
	assert.False(t, b.allow(), "Failed probe should reopen the breaker")
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Whole Milk", "whole milk"},
		{"  CAFÉ  au   LAIT ", "cafe au lait"},
		{"Müsli", "musli"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuery(tt.in), "input %q", tt.in)
	}
}
