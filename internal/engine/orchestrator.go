package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Engine is the public entry point for cart optimization. It wires the
// alternatives resolver, strategy optimizers, store grouper, recommendation
// generator and result cache together. All state is request-scoped except
// the cache.
type Engine struct {
	resolver *AlternativesResolver
	cache    *ResultCache
	config   *Config
	metrics  *MetricsRecorder
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// New creates an engine over the given catalog and cache store.
func New(catalog CatalogSearcher, store CacheStore, config *Config) *Engine {
	metrics := NewMetricsRecorder()
	return &Engine{
		resolver: NewAlternativesResolver(catalog, config, metrics),
		cache:    NewResultCache(store, config.CacheTTL, metrics),
		config:   config,
		metrics:  metrics,
		logger:   log.With().Str("component", "optimization_engine").Logger(),
		tracer:   otel.Tracer("engine"),
	}
}

// OptimizeCart re-prices and re-groups a cart under the chosen strategy.
// Identical (cart, strategy) inputs within the cache TTL return the stored
// result unchanged without re-invoking any optimizer or resolver.
func (e *Engine) OptimizeCart(ctx context.Context, items []CartLineItem, strategy Strategy) (*OptimizationResult, error) {
	strategy.Type = ParseStrategyType(string(strategy.Type))

	ctx, span := e.tracer.Start(ctx, "engine.OptimizeCart",
		trace.WithAttributes(
			attribute.String("strategy", string(strategy.Type)),
			attribute.Int("cart_items", len(items)),
		))
	defer span.End()

	startTime := time.Now()
	var optErr error
	defer func() {
		e.metrics.RecordOptimization(strategy.Type, time.Since(startTime), optErr)
	}()

	if err := validateCart(items, e.config.MaxCartItems); err != nil {
		optErr = err
		return nil, err
	}
	e.metrics.RecordCartSize(len(items))

	key := CacheKey(items, strategy)
	if result, ok := e.cache.Get(ctx, key); ok {
		return result, nil
	}

	alts, err := e.resolver.Resolve(ctx, items)
	if err != nil {
		optErr = err
		return nil, err
	}

	result := e.assemble(items, alts, strategy)
	e.cache.Put(ctx, key, result)

	savings, _ := result.TotalSavings.Float64()
	e.metrics.RecordSavings(strategy.Type, savings)
	e.logger.Debug().
		Str("strategy", string(strategy.Type)).
		Int("items", len(items)).
		Int("stores", len(result.StoreGroups)).
		Str("savings", result.TotalSavings.String()).
		Msg("Cart optimized")

	return result, nil
}

// CompareStrategies runs every strategy against the same cart for
// side-by-side comparison. Alternatives are resolved once and shared.
func (e *Engine) CompareStrategies(ctx context.Context, items []CartLineItem, base Strategy) (map[StrategyType]*OptimizationResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.CompareStrategies",
		trace.WithAttributes(attribute.Int("cart_items", len(items))))
	defer span.End()

	if err := validateCart(items, e.config.MaxCartItems); err != nil {
		return nil, err
	}
	e.metrics.RecordCartSize(len(items))

	var alts AlternativeSet
	resolved := false

	results := make(map[StrategyType]*OptimizationResult, len(AllStrategyTypes))
	for _, st := range AllStrategyTypes {
		strategy := base
		strategy.Type = st

		key := CacheKey(items, strategy)
		if result, ok := e.cache.Get(ctx, key); ok {
			results[st] = result
			continue
		}

		if !resolved {
			var err error
			if alts, err = e.resolver.Resolve(ctx, items); err != nil {
				return nil, err
			}
			resolved = true
		}

		result := e.assemble(items, alts, strategy)
		e.cache.Put(ctx, key, result)
		results[st] = result
	}

	return results, nil
}

// assemble runs the selected strategy over resolved alternatives and builds
// the result envelope. If a heuristic ever produces a more expensive plan
// than the original assignment, the cheapest compliant fallback wins:
// totalSavings is never negative and a maxStores cap holds even on the
// fallback path.
func (e *Engine) assemble(items []CartLineItem, alts AlternativeSet, strategy Strategy) *OptimizationResult {
	if strategy.DeliveryPreference == DeliverySingleTrip {
		strategy.MaxStores = 1
	}

	threshold := e.config.Threshold()
	baseFee := e.config.DeliveryFee()

	originalGroups := GroupByStore(items, threshold, baseFee)
	originalTotal := groupsTotal(originalGroups)

	assigned := optimizeAssignment(items, alts, strategy, e.config)
	optimizedGroups := GroupByStore(assigned, threshold, baseFee)
	optimizedTotal := groupsTotal(optimizedGroups)

	if optimizedTotal.GreaterThan(originalTotal) {
		fallbackGroups := originalGroups
		if strategy.MaxStores > 0 && len(originalGroups) > strategy.MaxStores {
			consolidated := consolidateToCap(items, alts, strategy.MaxStores)
			fallbackGroups = GroupByStore(consolidated, threshold, baseFee)
		}
		optimizedGroups = fallbackGroups
		optimizedTotal = groupsTotal(fallbackGroups)
	}

	savings := originalTotal.Sub(optimizedTotal)
	pct := 0.0
	if originalTotal.IsPositive() {
		pct, _ = savings.Div(originalTotal).Mul(decimal.NewFromInt(100)).Float64()
	}

	return &OptimizationResult{
		Strategy:        strategy.Type,
		OriginalTotal:   originalTotal.Round(2),
		OptimizedTotal:  optimizedTotal.Round(2),
		TotalSavings:    savings.Round(2),
		SavingsPercent:  pct,
		StoreGroups:     optimizedGroups,
		Recommendations: GenerateRecommendations(items, alts, optimizedGroups, e.config),
		Alternatives:    alts,
	}
}

// validateCart rejects structurally invalid carts. These are the only fatal
// request errors the engine produces.
func validateCart(items []CartLineItem, maxItems int) error {
	if len(items) == 0 {
		return InvalidCartError{Reason: "cart has no items"}
	}
	if len(items) > maxItems {
		return InvalidCartError{Reason: "cart exceeds maximum item count"}
	}
	for i, it := range items {
		if it.ProductID == "" {
			return InvalidCartError{Reason: "item " + strconv.Itoa(i) + " has no productId"}
		}
		if it.Store == "" {
			return InvalidCartError{Reason: "item " + strconv.Itoa(i) + " has no store"}
		}
		if it.Quantity <= 0 {
			return InvalidCartError{Reason: "item " + strconv.Itoa(i) + " has non-positive quantity"}
		}
		if !it.UnitPrice.IsPositive() {
			return InvalidCartError{Reason: "item " + strconv.Itoa(i) + " has non-positive unit price"}
		}
	}
	return nil
}
