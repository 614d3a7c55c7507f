package engine

// optimizeSplitCart is cheapest-wins like budget, but candidates are first
// filtered to the strategy's preferred stores (when provided) and the number
// of distinct result stores is capped at maxStores. The cap discards the
// lowest-magnitude savings switches first, always keeping the
// highest-savings switches.
func optimizeSplitCart(items []CartLineItem, alts AlternativeSet, strategy Strategy) []CartLineItem {
	out := make([]CartLineItem, len(items))
	for i, it := range items {
		cands := candidatesFor(it, alts, strategy, true)
		if len(cands) == 0 {
			// Constraints exclude everything, keep the original.
			out[i] = it
			continue
		}
		best := pickCheapest(it, cands)
		out[i] = reassign(it, best.Store, best.Price)
	}

	return capStores(items, out, alts, strategy, true)
}
