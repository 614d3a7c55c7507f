package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// optimizeAssignment runs the strategy selected by strategy.Type over the
// cart and returns the re-assigned line items (not yet grouped). Unknown or
// empty strategy types fall through to budget.
func optimizeAssignment(items []CartLineItem, alts AlternativeSet, strategy Strategy, cfg *Config) []CartLineItem {
	switch strategy.Type {
	case StrategySplitCart:
		return optimizeSplitCart(items, alts, strategy)
	case StrategyConvenience:
		return optimizeConvenience(items, alts, strategy)
	case StrategyMealPlan:
		return optimizeMealPlan(items, alts, strategy, cfg)
	default:
		return optimizeBudget(items, alts, strategy)
	}
}

// candidate is one possible (store, price) assignment for a line item.
type candidate struct {
	Store string
	Price decimal.Decimal
}

// candidatesFor builds the candidate set for an item: the original assignment
// plus its alternatives, filtered by the item's maxPrice and, when
// restrictToPreferred is set, by the strategy's preferred-store allow-list.
// An empty result means the constraints are unsatisfiable for this item.
func candidatesFor(item CartLineItem, alts AlternativeSet, strategy Strategy, restrictToPreferred bool) []candidate {
	cands := make([]candidate, 0, 1+len(alts[item.ProductID]))

	admit := func(store string, price decimal.Decimal) {
		if restrictToPreferred && !strategy.allowsStore(store) {
			return
		}
		if item.MaxPrice != nil && price.GreaterThan(*item.MaxPrice) {
			return
		}
		cands = append(cands, candidate{Store: store, Price: price})
	}

	admit(item.Store, item.UnitPrice)
	for _, alt := range alts[item.ProductID] {
		admit(alt.Store, alt.Price)
	}

	return cands
}

// pickCheapest selects the candidate with the strictly lowest price. Ties are
// broken by keeping the item's original store (stability: no store churn for
// equal price), then by store name for determinism.
func pickCheapest(item CartLineItem, cands []candidate) candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		switch {
		case c.Price.LessThan(best.Price):
			best = c
		case c.Price.Equal(best.Price):
			if best.Store != item.Store && (c.Store == item.Store || c.Store < best.Store) {
				best = c
			}
		}
	}
	return best
}

// reassign returns a copy of the item moved to the given store at the given
// price. ProductID, name and quantity are preserved.
func reassign(item CartLineItem, store string, price decimal.Decimal) CartLineItem {
	out := item
	out.Store = store
	out.UnitPrice = price
	return out
}

// moveTo moves an item to a destination store. If a cheaper alternative is
// known at that store (and within the item's maxPrice) its price is used;
// otherwise the item keeps its original unit price, so a move never raises
// the line total.
func moveTo(item CartLineItem, store string, alts AlternativeSet) CartLineItem {
	price := item.UnitPrice
	for _, alt := range alts[item.ProductID] {
		if alt.Store != store {
			continue
		}
		if !alt.Price.LessThan(price) {
			continue
		}
		if item.MaxPrice != nil && alt.Price.GreaterThan(*item.MaxPrice) {
			continue
		}
		price = alt.Price
	}
	return reassign(item, store, price)
}

// storeStat aggregates the original cart's footprint at one store.
type storeStat struct {
	store      string
	itemCount  int
	subtotal   decimal.Decimal
	categories map[string]struct{}
}

// collectStoreStats aggregates items per store in first-seen order.
func collectStoreStats(items []CartLineItem) []*storeStat {
	var order []*storeStat
	index := make(map[string]*storeStat)

	for _, it := range items {
		st, ok := index[it.Store]
		if !ok {
			st = &storeStat{store: it.Store, subtotal: decimal.Zero, categories: make(map[string]struct{})}
			index[it.Store] = st
			order = append(order, st)
		}
		st.itemCount += it.Quantity
		st.subtotal = st.subtotal.Add(it.LineTotal())
		if it.Category != "" {
			st.categories[it.Category] = struct{}{}
		}
	}

	return order
}

// distinctStores counts the distinct stores of an assignment.
func distinctStores(items []CartLineItem) int {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		seen[it.Store] = struct{}{}
	}
	return len(seen)
}

// capStores consolidates an assignment down to at most maxStores distinct
// stores. Stores are ranked by abandonment cost (switch savings realized
// there plus the line value of original items assigned there) so the
// highest-savings switches are kept; items at dropped stores move to the
// cheapest candidate within the kept set, falling back to the largest kept
// store at the item's original unit price when no candidate exists there.
func capStores(original, assigned []CartLineItem, alts AlternativeSet, strategy Strategy, restrictToPreferred bool) []CartLineItem {
	maxStores := strategy.MaxStores
	if maxStores <= 0 || distinctStores(assigned) <= maxStores {
		return assigned
	}

	// Rank stores by what it would cost to abandon them.
	cost := make(map[string]decimal.Decimal)
	var order []string
	for i, it := range assigned {
		c, ok := cost[it.Store]
		if !ok {
			c = decimal.Zero
			order = append(order, it.Store)
		}
		if it.Store == original[i].Store {
			c = c.Add(it.LineTotal())
		} else {
			c = c.Add(original[i].LineTotal().Sub(it.LineTotal()))
		}
		cost[it.Store] = c
	}
	sort.SliceStable(order, func(i, j int) bool {
		if !cost[order[i]].Equal(cost[order[j]]) {
			return cost[order[i]].GreaterThan(cost[order[j]])
		}
		return order[i] < order[j]
	})

	kept := make(map[string]struct{}, maxStores)
	for _, store := range order[:maxStores] {
		kept[store] = struct{}{}
	}
	fallback := order[0]

	out := make([]CartLineItem, len(assigned))
	for i, it := range assigned {
		if _, ok := kept[it.Store]; ok {
			out[i] = it
			continue
		}

		// Cheapest candidate within the kept set, if any.
		var best *candidate
		for _, c := range candidatesFor(original[i], alts, strategy, restrictToPreferred) {
			if _, ok := kept[c.Store]; !ok {
				continue
			}
			c := c
			if best == nil || c.Price.LessThan(best.Price) {
				best = &c
			}
		}
		if best != nil {
			out[i] = reassign(original[i], best.Store, best.Price)
		} else {
			out[i] = moveTo(original[i], fallback, alts)
		}
	}

	return out
}

// consolidateToCap merges the original assignment down to at most maxStores
// distinct stores without any price switches: the highest-subtotal stores are
// kept and every other item moves via moveTo, which never raises a line
// total. Merging only grows kept-store subtotals, so no group loses free
// delivery and the consolidated plan never costs more than the original.
// Used as the worst-case fallback when a capped strategy prices worse than
// the original grouping.
func consolidateToCap(items []CartLineItem, alts AlternativeSet, maxStores int) []CartLineItem {
	if maxStores <= 0 || distinctStores(items) <= maxStores {
		return items
	}

	stats := collectStoreStats(items)
	sort.SliceStable(stats, func(i, j int) bool {
		if !stats[i].subtotal.Equal(stats[j].subtotal) {
			return stats[i].subtotal.GreaterThan(stats[j].subtotal)
		}
		return stats[i].store < stats[j].store
	})

	kept := stats[:maxStores]
	keptSet := make(map[string]struct{}, maxStores)
	for _, st := range kept {
		keptSet[st.store] = struct{}{}
	}

	out := make([]CartLineItem, len(items))
	for i, it := range items {
		if _, ok := keptSet[it.Store]; ok {
			out[i] = it
			continue
		}

		best := moveTo(it, kept[0].store, alts)
		for _, st := range kept[1:] {
			moved := moveTo(it, st.store, alts)
			if moved.UnitPrice.LessThan(best.UnitPrice) {
				best = moved
			}
		}
		out[i] = best
	}

	return out
}
