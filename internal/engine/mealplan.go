package engine

import "sort"

// optimizeMealPlan bounds the cart to a small number of stores (maxStores,
// default two) while preferring stores that already hold the highest-value
// and most category-diverse items. The score weights are configuration
// knobs; this is a heuristic, not an exact solver.
func optimizeMealPlan(items []CartLineItem, alts AlternativeSet, strategy Strategy, cfg *Config) []CartLineItem {
	stats := collectStoreStats(items)

	maxSubtotal := 0.0
	for _, st := range stats {
		if v, _ := st.subtotal.Float64(); v > maxSubtotal {
			maxSubtotal = v
		}
	}

	score := func(st *storeStat) float64 {
		s := float64(st.itemCount)
		s += cfg.MealPlanCategoryWeight * float64(len(st.categories))
		if maxSubtotal > 0 {
			v, _ := st.subtotal.Float64()
			s += cfg.MealPlanValueWeight * (v / maxSubtotal)
		}
		return s
	}

	sort.SliceStable(stats, func(i, j int) bool {
		si, sj := score(stats[i]), score(stats[j])
		if si != sj {
			return si > sj
		}
		return stats[i].store < stats[j].store
	})

	limit := strategy.MaxStores
	if limit < 1 {
		limit = cfg.MealPlanDefaultMaxStores
	}
	if limit > len(stats) {
		limit = len(stats)
	}

	selected := stats[:limit]
	selectedSet := make(map[string]struct{}, limit)
	for _, st := range selected {
		selectedSet[st.store] = struct{}{}
	}

	out := make([]CartLineItem, len(items))
	for i, it := range items {
		if _, ok := selectedSet[it.Store]; ok {
			out[i] = it
			continue
		}

		// Move to whichever selected store prices this item lowest;
		// score order breaks ties.
		best := moveTo(it, selected[0].store, alts)
		for _, st := range selected[1:] {
			moved := moveTo(it, st.store, alts)
			if moved.UnitPrice.LessThan(best.UnitPrice) {
				best = moved
			}
		}
		out[i] = best
	}

	return out
}
