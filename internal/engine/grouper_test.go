package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGroupByStorePreservesOrder verifies groups appear in first-seen-store
// order regardless of how items interleave.
func TestGroupByStorePreservesOrder(t *testing.T) {
	items := []CartLineItem{
		line("p1", "Bananas", "2.00", "StoreB", 1),
		line("p2", "Milk", "3.50", "StoreA", 1),
		line("p3", "Bread", "1.80", "StoreB", 1),
		line("p4", "Eggs", "4.20", "StoreC", 1),
	}

	groups := GroupByStore(items, dec("35.00"), dec("4.99"))

	assert.Len(t, groups, 3)
	assert.Equal(t, "StoreB", groups[0].Store)
	assert.Equal(t, "StoreA", groups[1].Store)
	assert.Equal(t, "StoreC", groups[2].Store)
	assert.Len(t, groups[0].Items, 2)
}

// TestGroupByStoreTotals verifies subtotal, item count, delivery fee and the
// free-delivery flag per group.
func TestGroupByStoreTotals(t *testing.T) {
	items := []CartLineItem{
		line("p1", "Steak", "20.00", "StoreA", 2), // 40.00, over threshold
		line("p2", "Milk", "3.50", "StoreB", 2),   // 7.00, under
	}

	groups := GroupByStore(items, dec("35.00"), dec("4.99"))

	assert.Len(t, groups, 2)

	a := groups[0]
	assert.Equal(t, "StoreA", a.Store)
	assert.True(t, a.Subtotal.Equal(dec("40.00")), "subtotal %s", a.Subtotal)
	assert.Equal(t, 2, a.ItemCount)
	assert.True(t, a.QualifiesForFreeDelivery)
	assert.True(t, a.DeliveryFee.IsZero())
	assert.True(t, a.Total.Equal(dec("40.00")))

	b := groups[1]
	assert.False(t, b.QualifiesForFreeDelivery)
	assert.True(t, b.DeliveryFee.Equal(dec("4.99")))
	assert.True(t, b.Total.Equal(dec("11.99")))
}

// TestGroupByStoreThresholdBoundary verifies that a subtotal exactly at the
// threshold qualifies for free delivery.
func TestGroupByStoreThresholdBoundary(t *testing.T) {
	items := []CartLineItem{
		line("p1", "Steak", "17.50", "StoreA", 2), // exactly 35.00
	}

	groups := GroupByStore(items, dec("35.00"), dec("4.99"))

	assert.True(t, groups[0].QualifiesForFreeDelivery)
	assert.True(t, groups[0].DeliveryFee.IsZero())
}

// TestGroupByStoreRounding verifies subtotals round to exactly two decimals.
func TestGroupByStoreRounding(t *testing.T) {
	items := []CartLineItem{
		line("p1", "Loose nuts", "1.999", "StoreA", 3), // 5.997
	}

	groups := GroupByStore(items, dec("35.00"), dec("4.99"))

	assert.True(t, groups[0].Subtotal.Equal(dec("6.00")), "subtotal %s", groups[0].Subtotal)
	assert.True(t, groups[0].Total.Equal(dec("10.99")))
}

func TestGroupsTotal(t *testing.T) {
	items := []CartLineItem{
		line("p1", "Steak", "20.00", "StoreA", 2),
		line("p2", "Milk", "3.50", "StoreB", 2),
	}

	groups := GroupByStore(items, dec("35.00"), dec("4.99"))

	// 40.00 + (7.00 + 4.99)
	assert.True(t, groupsTotal(groups).Equal(dec("51.99")))
}

func TestGroupByStoreEmpty(t *testing.T) {
	groups := GroupByStore(nil, dec("35.00"), dec("4.99"))
	assert.Empty(t, groups)
}
