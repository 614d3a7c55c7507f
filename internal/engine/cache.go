package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CacheStore is the key-value collaborator behind the result cache.
// Implementations live in internal/cachestore.
type CacheStore interface {
	// Get returns the stored value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetWithExpiry stores value under key for the given TTL.
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ResultCache memoizes full optimization results for a short TTL so rapid
// re-optimizations (e.g. quantity ticks) don't repeat external calls. Keys
// are deterministic hashes of (cart contents, strategy); a hit within the
// TTL replays the stored result unchanged.
type ResultCache struct {
	store   CacheStore
	ttl     time.Duration
	metrics *MetricsRecorder
	logger  zerolog.Logger
}

// NewResultCache creates a result cache over the given store.
func NewResultCache(store CacheStore, ttl time.Duration, metrics *MetricsRecorder) *ResultCache {
	if metrics == nil {
		metrics = NewMetricsRecorder()
	}
	return &ResultCache{
		store:   store,
		ttl:     ttl,
		metrics: metrics,
		logger:  log.With().Str("component", "result_cache").Logger(),
	}
}

// cacheKeyPayload is the canonical form hashed into a cache key. Items are
// sorted so that cart ordering does not affect the key; the JSON encoding of
// the strategy sorts map-free fields deterministically.
type cacheKeyPayload struct {
	Items    []CartLineItem `json:"items"`
	Strategy Strategy       `json:"strategy"`
}

// CacheKey computes the deterministic cache key for a cart and strategy.
func CacheKey(items []CartLineItem, strategy Strategy) string {
	sorted := make([]CartLineItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ProductID != sorted[j].ProductID {
			return sorted[i].ProductID < sorted[j].ProductID
		}
		return sorted[i].Store < sorted[j].Store
	})

	prefs := make([]string, len(strategy.PreferredStores))
	copy(prefs, strategy.PreferredStores)
	sort.Strings(prefs)
	strategy.PreferredStores = prefs
	strategy.Type = ParseStrategyType(string(strategy.Type))

	payload, _ := json.Marshal(cacheKeyPayload{Items: sorted, Strategy: strategy})
	sum := sha256.Sum256(payload)
	return "optimize:" + hex.EncodeToString(sum[:])
}

// Get returns the cached result for key, if present and unexpired. Store
// errors are treated as misses; the cache never fails an optimization.
func (c *ResultCache) Get(ctx context.Context, key string) (*OptimizationResult, bool) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Cache read failed")
		c.metrics.RecordCacheMiss()
		return nil, false
	}
	if !ok {
		c.metrics.RecordCacheMiss()
		return nil, false
	}

	var result OptimizationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Warn().Err(err).Msg("Cache entry corrupt, treating as miss")
		c.metrics.RecordCacheMiss()
		return nil, false
	}

	c.metrics.RecordCacheHit()
	return &result, true
}

// Put stores a result under key for the configured TTL. Failures are logged
// and ignored.
func (c *ResultCache) Put(ctx context.Context, key string, result *OptimizationResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to encode result for cache")
		return
	}
	if err := c.store.SetWithExpiry(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn().Err(err).Msg("Cache write failed")
	}
}
