package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(catalog *mockCatalog, cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return New(catalog, newMockCacheStore(), cfg)
}

// TestOptimizeNoCheaperAlternatives verifies a cart with no cheaper options
// anywhere comes back unchanged with zero savings.
func TestOptimizeNoCheaperAlternatives(t *testing.T) {
	catalog := newMockCatalog()
	eng := newTestEngine(catalog, nil)

	items := []CartLineItem{
		line("bananas", "Bananas", "2.00", "StoreA", 2),
		line("milk", "Milk", "3.50", "StoreB", 1),
	}

	result, err := eng.OptimizeCart(context.Background(), items, Strategy{Type: StrategyBudget})

	require.NoError(t, err)
	assert.True(t, result.OptimizedTotal.Equal(result.OriginalTotal))
	assert.True(t, result.TotalSavings.IsZero())
	assert.Equal(t, 0.0, result.SavingsPercent)
	assert.Len(t, result.StoreGroups, 2)
}

// TestOptimizeBudgetConsolidates verifies budget mode reassigns an item to
// the store where it is cheaper, realizing the price difference as savings.
func TestOptimizeBudgetConsolidates(t *testing.T) {
	catalog := newMockCatalog()
	catalog.addProduct("Bananas", Product{ID: "bananas-b", Name: "Bananas", Price: dec("1.50"), Store: "StoreB", InStock: true})

	cfg := DefaultConfig()
	cfg.FreeDeliveryThreshold = 0 // isolate price savings from delivery fees
	eng := newTestEngine(catalog, cfg)

	items := []CartLineItem{
		line("bananas", "Bananas", "2.00", "StoreA", 2),
		line("milk", "Milk", "3.50", "StoreB", 1),
	}

	result, err := eng.OptimizeCart(context.Background(), items, Strategy{Type: StrategyBudget})

	require.NoError(t, err)
	require.Len(t, result.StoreGroups, 1)
	assert.Equal(t, "StoreB", result.StoreGroups[0].Store)
	assert.True(t, result.TotalSavings.Equal(dec("1.00")), "savings %s", result.TotalSavings)
	assert.True(t, result.OptimizedTotal.Equal(dec("6.50")))
}

// TestOptimizeFreeDeliveryQualification verifies a qualifying single-store
// cart gets a zero delivery fee.
func TestOptimizeFreeDeliveryQualification(t *testing.T) {
	eng := newTestEngine(newMockCatalog(), nil)

	items := []CartLineItem{
		line("steak", "Steak", "20.00", "StoreA", 2), // 40.00 >= 35.00
	}

	result, err := eng.OptimizeCart(context.Background(), items, Strategy{Type: StrategyBudget})

	require.NoError(t, err)
	require.Len(t, result.StoreGroups, 1)
	assert.True(t, result.StoreGroups[0].QualifiesForFreeDelivery)
	assert.True(t, result.StoreGroups[0].DeliveryFee.IsZero())
	assert.True(t, result.OptimizedTotal.Equal(dec("40.00")))
}

// TestOptimizeEmptyCart verifies an empty cart is rejected with
// InvalidCartError.
func TestOptimizeEmptyCart(t *testing.T) {
	eng := newTestEngine(newMockCatalog(), nil)

	_, err := eng.OptimizeCart(context.Background(), nil, Strategy{Type: StrategyBudget})

	var invalid InvalidCartError
	require.ErrorAs(t, err, &invalid)
}

// TestOptimizeRejectsMalformedItems covers the per-item validation rules.
func TestOptimizeRejectsMalformedItems(t *testing.T) {
	eng := newTestEngine(newMockCatalog(), nil)

	tests := []struct {
		name string
		item CartLineItem
	}{
		{"no product id", CartLineItem{Name: "Milk", UnitPrice: dec("3.50"), Store: "StoreA", Quantity: 1}},
		{"no store", CartLineItem{ProductID: "milk", Name: "Milk", UnitPrice: dec("3.50"), Quantity: 1}},
		{"zero quantity", line("milk", "Milk", "3.50", "StoreA", 0)},
		{"negative quantity", line("milk", "Milk", "3.50", "StoreA", -1)},
		{"zero price", line("milk", "Milk", "0", "StoreA", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.OptimizeCart(context.Background(), []CartLineItem{tt.item}, Strategy{Type: StrategyBudget})
			var invalid InvalidCartError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

// TestOptimizeCartSizeLimit verifies oversized carts are rejected.
func TestOptimizeCartSizeLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCartItems = 2
	eng := newTestEngine(newMockCatalog(), cfg)

	items := []CartLineItem{
		line("p1", "A", "1.00", "StoreA", 1),
		line("p2", "B", "1.00", "StoreA", 1),
		line("p3", "C", "1.00", "StoreA", 1),
	}

	_, err := eng.OptimizeCart(context.Background(), items, Strategy{Type: StrategyBudget})

	var invalid InvalidCartError
	require.ErrorAs(t, err, &invalid)
}

// TestOptimizeConvenienceDestination verifies convenience mode on a
// three-store cart with item counts {StoreA: 1, StoreB: 3, StoreC: 2}
// consolidates everything into StoreB.
func TestOptimizeConvenienceDestination(t *testing.T) {
	eng := newTestEngine(newMockCatalog(), nil)

	items := []CartLineItem{
		line("p1", "Coffee", "8.00", "StoreA", 1),
		line("p2", "Milk", "3.50", "StoreB", 1),
		line("p3", "Bread", "2.00", "StoreB", 1),
		line("p4", "Eggs", "4.00", "StoreB", 1),
		line("p5", "Tea", "5.00", "StoreC", 1),
		line("p6", "Jam", "3.00", "StoreC", 1),
	}

	result, err := eng.OptimizeCart(context.Background(), items, Strategy{Type: StrategyConvenience})

	require.NoError(t, err)
	require.Len(t, result.StoreGroups, 1)
	assert.Equal(t, "StoreB", result.StoreGroups[0].Store)
	assert.Equal(t, 6, result.StoreGroups[0].ItemCount)
	assert.True(t, result.TotalSavings.GreaterThanOrEqual(decimal.Zero))
}

// TestOptimizeConservesItems verifies no strategy adds, drops or re-counts
// line items.
func TestOptimizeConservesItems(t *testing.T) {
	catalog := newMockCatalog()
	catalog.addProduct("Bananas", Product{ID: "bananas-b", Name: "Bananas", Price: dec("1.50"), Store: "StoreB", InStock: true})
	catalog.addProduct("Tea", Product{ID: "tea-c", Name: "Tea", Price: dec("4.00"), Store: "StoreC", InStock: true})

	eng := newTestEngine(catalog, nil)

	items := []CartLineItem{
		line("bananas", "Bananas", "2.00", "StoreA", 2),
		line("milk", "Milk", "3.50", "StoreA", 1),
		line("tea", "Tea", "5.00", "StoreB", 3),
	}

	want := map[string]int{"bananas": 2, "milk": 1, "tea": 3}

	for _, st := range AllStrategyTypes {
		result, err := eng.OptimizeCart(context.Background(), items, Strategy{Type: st})
		require.NoError(t, err, "strategy %s", st)

		got := map[string]int{}
		for _, g := range result.StoreGroups {
			for _, it := range g.Items {
				got[it.ProductID] += it.Quantity
			}
		}
		assert.Equal(t, want, got, "strategy %s", st)
		assert.True(t, result.TotalSavings.GreaterThanOrEqual(decimal.Zero), "strategy %s", st)
	}
}

// TestOptimizeCacheReplay verifies a repeated request within the TTL replays
// the cached result without touching the catalog again.
func TestOptimizeCacheReplay(t *testing.T) {
	catalog := newMockCatalog()
	catalog.addProduct("Bananas", Product{ID: "bananas-b", Name: "Bananas", Price: dec("1.50"), Store: "StoreB", InStock: true})

	eng := newTestEngine(catalog, nil)

	items := []CartLineItem{
		line("bananas", "Bananas", "2.00", "StoreA", 2),
		line("milk", "Milk", "3.50", "StoreB", 1),
	}
	strategy := Strategy{Type: StrategyBudget}

	first, err := eng.OptimizeCart(context.Background(), items, strategy)
	require.NoError(t, err)
	callsAfterFirst := catalog.callCount()

	// Same cart in a different order still hits.
	reordered := []CartLineItem{items[1], items[0]}
	second, err := eng.OptimizeCart(context.Background(), reordered, strategy)
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, catalog.callCount())
	assert.Equal(t, first, second)
}

// TestOptimizeNormalizesStrategyType verifies unknown strategy names fall
// back to budget in the result envelope too.
func TestOptimizeNormalizesStrategyType(t *testing.T) {
	eng := newTestEngine(newMockCatalog(), nil)

	items := []CartLineItem{
		line("milk", "Milk", "3.50", "StoreA", 1),
	}

	result, err := eng.OptimizeCart(context.Background(), items, Strategy{Type: "mystery"})

	require.NoError(t, err)
	assert.Equal(t, StrategyBudget, result.Strategy)
}

// TestCompareStrategies verifies all four strategies run against one shared
// resolution pass.
func TestCompareStrategies(t *testing.T) {
	catalog := newMockCatalog()
	catalog.addProduct("Bananas", Product{ID: "bananas-b", Name: "Bananas", Price: dec("1.50"), Store: "StoreB", InStock: true})

	eng := newTestEngine(catalog, nil)

	items := []CartLineItem{
		line("bananas", "Bananas", "2.00", "StoreA", 2),
		line("milk", "Milk", "3.50", "StoreB", 1),
	}

	results, err := eng.CompareStrategies(context.Background(), items, Strategy{})

	require.NoError(t, err)
	require.Len(t, results, len(AllStrategyTypes))
	for _, st := range AllStrategyTypes {
		require.Contains(t, results, st)
		assert.Equal(t, st, results[st].Strategy)
		assert.True(t, results[st].TotalSavings.GreaterThanOrEqual(decimal.Zero))
	}

	// One catalog lookup per item, shared across all strategies.
	assert.Equal(t, len(items), catalog.callCount())
}

// TestCompareStrategiesEmptyCart verifies validation applies to comparison
// too.
func TestCompareStrategiesEmptyCart(t *testing.T) {
	eng := newTestEngine(newMockCatalog(), nil)

	_, err := eng.CompareStrategies(context.Background(), nil, Strategy{})

	var invalid InvalidCartError
	require.ErrorAs(t, err, &invalid)
}

// TestOptimizeStoreCapHoldsOnFallback verifies the maxStores cap holds even
// when the strategy's plan prices worse than the original cart. Two one-cent
// switches to StoreB empty StoreC but strip StoreA below the free-delivery
// threshold, so the switched plan gains a delivery fee the original never
// paid. The engine must then fall back to a consolidated plan, not the raw
// three-store original.
func TestOptimizeStoreCapHoldsOnFallback(t *testing.T) {
	catalog := newMockCatalog()
	catalog.addProduct("Apples", Product{ID: "apples-b", Name: "Apples", Price: dec("17.50"), Store: "StoreB", InStock: true})
	catalog.addProduct("Steak", Product{ID: "steak-b", Name: "Steak", Price: dec("34.99"), Store: "StoreB", InStock: true})

	eng := newTestEngine(catalog, nil)

	// Every store qualifies for free delivery as assembled.
	items := []CartLineItem{
		line("apples", "Apples", "17.51", "StoreA", 1),
		line("bread", "Bread", "17.50", "StoreA", 1),
		line("milk", "Milk", "35.00", "StoreB", 1),
		line("steak", "Steak", "35.00", "StoreC", 1),
	}

	strategy := Strategy{Type: StrategySplitCart, MaxStores: 2}
	result, err := eng.OptimizeCart(context.Background(), items, strategy)

	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.StoreGroups), 2, "store cap must hold on the fallback path")
	assert.True(t, result.TotalSavings.GreaterThanOrEqual(decimal.Zero), "savings %s", result.TotalSavings)
	assert.True(t, result.OptimizedTotal.LessThanOrEqual(result.OriginalTotal))
	assert.True(t, result.OriginalTotal.Equal(dec("105.01")))

	// Every cart line survives consolidation.
	kept := 0
	for _, g := range result.StoreGroups {
		kept += len(g.Items)
	}
	assert.Equal(t, len(items), kept)
}

// TestOptimizeSingleTripForcesOneStore verifies the single-trip delivery
// preference overrides maxStores and collapses the plan to one store.
func TestOptimizeSingleTripForcesOneStore(t *testing.T) {
	eng := newTestEngine(newMockCatalog(), nil)

	items := []CartLineItem{
		line("bananas", "Bananas", "2.00", "StoreA", 2),
		line("milk", "Milk", "3.50", "StoreB", 1),
	}

	strategy := Strategy{Type: StrategyBudget, DeliveryPreference: DeliverySingleTrip}
	result, err := eng.OptimizeCart(context.Background(), items, strategy)

	require.NoError(t, err)
	require.Len(t, result.StoreGroups, 1)
	assert.Equal(t, "StoreA", result.StoreGroups[0].Store)
	// One delivery fee instead of two.
	assert.True(t, result.TotalSavings.Equal(dec("4.99")), "savings %s", result.TotalSavings)
}
