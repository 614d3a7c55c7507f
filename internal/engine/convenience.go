package engine

import "sort"

// optimizeConvenience minimizes store trips: the original items are grouped
// by store and the store holding the most items (ties broken by higher
// subtotal, then store name) becomes the sole destination. With maxStores
// greater than one, the next-largest stores are added in descending
// item-count order until the limit is reached; items outside the destination
// set move to the primary store, at a known cheaper alternative price there
// when one exists.
func optimizeConvenience(items []CartLineItem, alts AlternativeSet, strategy Strategy) []CartLineItem {
	stats := collectStoreStats(items)
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].itemCount != stats[j].itemCount {
			return stats[i].itemCount > stats[j].itemCount
		}
		if !stats[i].subtotal.Equal(stats[j].subtotal) {
			return stats[i].subtotal.GreaterThan(stats[j].subtotal)
		}
		return stats[i].store < stats[j].store
	})

	limit := strategy.MaxStores
	if limit < 1 {
		limit = 1
	}
	if limit > len(stats) {
		limit = len(stats)
	}

	destinations := make(map[string]struct{}, limit)
	for _, st := range stats[:limit] {
		destinations[st.store] = struct{}{}
	}
	primary := stats[0].store

	out := make([]CartLineItem, len(items))
	for i, it := range items {
		if _, ok := destinations[it.Store]; ok {
			out[i] = it
			continue
		}
		out[i] = moveTo(it, primary, alts)
	}

	return out
}
