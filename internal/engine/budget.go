package engine

// optimizeBudget implements per-item cheapest-wins: for every line item the
// candidate set is the original assignment plus its alternatives, and the
// strictly cheapest candidate takes the item. Equal-price ties keep the
// original store. Items whose maxPrice excludes every candidate are kept
// unchanged; the recommendation generator flags them for removal.
//
// Budget does not restrict candidates to preferred stores. When maxStores is
// set, a companion consolidation step merges the result down to the cap.
func optimizeBudget(items []CartLineItem, alts AlternativeSet, strategy Strategy) []CartLineItem {
	out := make([]CartLineItem, len(items))
	for i, it := range items {
		cands := candidatesFor(it, alts, strategy, false)
		if len(cands) == 0 {
			out[i] = it
			continue
		}
		best := pickCheapest(it, cands)
		out[i] = reassign(it, best.Store, best.Price)
	}

	return capStores(items, out, alts, strategy, false)
}
