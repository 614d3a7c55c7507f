package engine

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// dec parses a decimal literal or panics. Test-only shorthand.
func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(productID, name, price, store string, quantity int) CartLineItem {
	return CartLineItem{
		ProductID: productID,
		Name:      name,
		UnitPrice: dec(price),
		Store:     store,
		Quantity:  quantity,
	}
}

// mockCatalog is an in-memory CatalogSearcher keyed by query string.
type mockCatalog struct {
	mu    sync.Mutex
	hits  map[string][]Product
	errs  map[string]error
	delay time.Duration
	calls int
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		hits: make(map[string][]Product),
		errs: make(map[string]error),
	}
}

func (m *mockCatalog) addProduct(query string, p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[query] = append(m.hits[query], p)
}

func (m *mockCatalog) failQuery(query string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[query] = err
}

func (m *mockCatalog) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockCatalog) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	m.mu.Lock()
	m.calls++
	err := m.errs[query]
	products := m.hits[query]
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

// mockCacheStore is an in-memory CacheStore without expiry.
type mockCacheStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
	sets    int
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{entries: make(map[string][]byte)}
}

func (m *mockCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	raw, ok := m.entries[key]
	return raw, ok, nil
}

func (m *mockCacheStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = value
	m.sets++
	return nil
}
