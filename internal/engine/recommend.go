package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// GenerateRecommendations post-processes the optimized grouping against the
// resolved alternatives and emits ranked savings opportunities. It returns at
// most cfg.MaxRecommendations entries ordered by potentialSavings descending.
//
// Recommendations are diagnostic hints: a switch_store suggestion reflects
// the best available alternative even when the chosen strategy declined to
// apply it.
func GenerateRecommendations(items []CartLineItem, alts AlternativeSet, optimized []StoreGroup, cfg *Config) []Recommendation {
	var recs []Recommendation

	recs = append(recs, bundleRecommendations(optimized, cfg)...)
	recs = append(recs, switchRecommendations(items, alts, cfg)...)
	recs = append(recs, removalRecommendations(items, alts)...)

	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].PotentialSavings.Equal(recs[j].PotentialSavings) {
			return recs[i].PotentialSavings.GreaterThan(recs[j].PotentialSavings)
		}
		if recs[i].Kind != recs[j].Kind {
			return recs[i].Kind < recs[j].Kind
		}
		return recs[i].ItemID < recs[j].ItemID
	})

	if len(recs) > cfg.MaxRecommendations {
		recs = recs[:cfg.MaxRecommendations]
	}
	return recs
}

// bundleRecommendations nudges groups that are close to the free-delivery
// threshold but not over it. The potential saving is the base delivery fee.
func bundleRecommendations(optimized []StoreGroup, cfg *Config) []Recommendation {
	threshold := cfg.Threshold()
	margin := decimal.NewFromFloat(cfg.BundleMargin)

	var recs []Recommendation
	for _, g := range optimized {
		if g.QualifiesForFreeDelivery {
			continue
		}
		gap := threshold.Sub(g.Subtotal)
		if gap.GreaterThan(margin) {
			continue
		}
		recs = append(recs, Recommendation{
			Kind: RecommendationBundle,
			Message: fmt.Sprintf("Add $%s more to your %s order to qualify for free delivery",
				gap.StringFixed(2), g.Store),
			PotentialSavings: cfg.DeliveryFee(),
			SuggestedStore:   g.Store,
		})
	}
	return recs
}

// switchRecommendations points at the best alternative per line item when its
// savings clear the configured minimum. Same-name alternatives are store
// switches; differently named ones are substitute products.
func switchRecommendations(items []CartLineItem, alts AlternativeSet, cfg *Config) []Recommendation {
	minSavings := decimal.NewFromFloat(cfg.MinSwitchSavings)

	var recs []Recommendation
	for _, it := range items {
		best, ok := alts.Best(it.ProductID)
		if !ok || best.Savings.LessThanOrEqual(minSavings) {
			continue
		}

		if strings.EqualFold(best.Name, it.Name) {
			recs = append(recs, Recommendation{
				Kind: RecommendationSwitchStore,
				Message: fmt.Sprintf("Buy %s at %s instead of %s to save $%s",
					it.Name, best.Store, it.Store, best.Savings.StringFixed(2)),
				PotentialSavings: best.Savings.Round(2),
				ItemID:           it.ProductID,
				SuggestedStore:   best.Store,
			})
			continue
		}

		recs = append(recs, Recommendation{
			Kind: RecommendationAlternativeProduct,
			Message: fmt.Sprintf("Replace %s with %s from %s to save $%s",
				it.Name, best.Name, best.Store, best.Savings.StringFixed(2)),
			PotentialSavings: best.Savings.Round(2),
			ItemID:           it.ProductID,
			SuggestedStore:   best.Store,
			SuggestedProduct: best.ProductID,
		})
	}
	return recs
}

// removalRecommendations flags items whose maxPrice excludes every candidate,
// original included. Such items were kept unchanged by the strategies; the
// saving of removing one is its line total.
func removalRecommendations(items []CartLineItem, alts AlternativeSet) []Recommendation {
	var recs []Recommendation
	for _, it := range items {
		if it.MaxPrice == nil {
			continue
		}
		if !it.UnitPrice.GreaterThan(*it.MaxPrice) {
			continue
		}
		satisfiable := false
		for _, alt := range alts[it.ProductID] {
			if !alt.Price.GreaterThan(*it.MaxPrice) {
				satisfiable = true
				break
			}
		}
		if satisfiable {
			continue
		}
		recs = append(recs, Recommendation{
			Kind: RecommendationRemoveItem,
			Message: fmt.Sprintf("No option for %s fits your $%s price limit; consider removing it",
				it.Name, it.MaxPrice.StringFixed(2)),
			PotentialSavings: it.LineTotal().Round(2),
			ItemID:           it.ProductID,
		})
	}
	return recs
}
