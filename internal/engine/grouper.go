package engine

import (
	"github.com/shopspring/decimal"
)

// GroupByStore partitions line items by store, computing per-store subtotal,
// delivery fee and free-delivery qualification. Groups appear in the order
// their store was first encountered in items. The function is pure: no side
// effects, no external calls.
//
// Subtotals are the exact sum of UnitPrice*Quantity; the single 2-decimal
// currency rounding happens here, at output.
func GroupByStore(items []CartLineItem, threshold, baseFee decimal.Decimal) []StoreGroup {
	var order []string
	byStore := make(map[string][]CartLineItem)

	for _, it := range items {
		if _, seen := byStore[it.Store]; !seen {
			order = append(order, it.Store)
		}
		byStore[it.Store] = append(byStore[it.Store], it)
	}

	groups := make([]StoreGroup, 0, len(order))
	for _, store := range order {
		groupItems := byStore[store]

		subtotal := decimal.Zero
		itemCount := 0
		for _, it := range groupItems {
			subtotal = subtotal.Add(it.LineTotal())
			itemCount += it.Quantity
		}
		subtotal = subtotal.Round(2)

		qualifies := subtotal.GreaterThanOrEqual(threshold)
		fee := baseFee
		if qualifies {
			fee = decimal.Zero
		}

		groups = append(groups, StoreGroup{
			Store:                    store,
			Items:                    groupItems,
			Subtotal:                 subtotal,
			ItemCount:                itemCount,
			DeliveryFee:              fee,
			Total:                    subtotal.Add(fee).Round(2),
			QualifiesForFreeDelivery: qualifies,
		})
	}

	return groups
}

// groupsTotal sums the totals (subtotal + delivery fee) of a grouping.
func groupsTotal(groups []StoreGroup) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Total)
	}
	return total
}
