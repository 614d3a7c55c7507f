package engine

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// CatalogSearcher is the catalog collaborator the resolver fans out to. It is
// treated as a black box; implementations live outside the engine.
type CatalogSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]Product, error)
}

// AlternativesResolver finds cheaper, in-stock substitutes for cart line
// items by querying the catalog once per distinct item. Lookups run
// concurrently with bounded parallelism; a failed or slow lookup for one item
// never aborts the others.
type AlternativesResolver struct {
	catalog CatalogSearcher
	config  *Config
	metrics *MetricsRecorder
	logger  zerolog.Logger
}

// NewAlternativesResolver creates a resolver over the given catalog.
func NewAlternativesResolver(catalog CatalogSearcher, config *Config, metrics *MetricsRecorder) *AlternativesResolver {
	if metrics == nil {
		metrics = NewMetricsRecorder()
	}
	return &AlternativesResolver{
		catalog: catalog,
		config:  config,
		metrics: metrics,
		logger:  log.With().Str("component", "alternatives_resolver").Logger(),
	}
}

// Resolve fans out one catalog lookup per line item and joins before
// returning. The returned set maps productID to alternatives ranked by
// savings descending. Per-item failures and timeouts degrade to an empty
// list; only caller cancellation is returned as an error, in which case
// partial results are discarded.
func (r *AlternativesResolver) Resolve(ctx context.Context, items []CartLineItem) (AlternativeSet, error) {
	results := make([][]ProductAlternative, len(items))

	g := &errgroup.Group{}
	g.SetLimit(r.config.MaxConcurrentLookups)

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			alts, err := r.resolveItem(ctx, item)
			if err != nil {
				// Caller cancellation aborts the whole fan-out; a per-item
				// timeout only degrades that item.
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				// Degrade to "no alternatives found" for this item.
				perr := PartialDataError{ProductID: item.ProductID, Err: err}
				r.logger.Warn().Err(perr).Str("product_id", item.ProductID).Msg("Alternative lookup failed")
				r.metrics.RecordLookupFailure()
				return nil
			}

			results[i] = alts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := make(AlternativeSet, len(items))
	for i, item := range items {
		if len(results[i]) > 0 {
			set[item.ProductID] = results[i]
		}
	}
	return set, nil
}

// resolveItem queries the catalog for one item and filters the hits down to
// genuine alternatives: different store, different product, in stock, and
// strictly cheaper than the original.
func (r *AlternativesResolver) resolveItem(ctx context.Context, item CartLineItem) ([]ProductAlternative, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, r.config.LookupTimeout)
	defer cancel()

	products, err := r.catalog.Search(lookupCtx, item.Name, r.config.AlternativeLimit)
	if err != nil {
		return nil, err
	}

	quantity := decimal.NewFromInt(int64(item.Quantity))
	originalLine := item.UnitPrice.Mul(quantity)

	var alts []ProductAlternative
	for _, p := range products {
		if p.Store == item.Store || p.ID == item.ProductID {
			continue
		}
		if !p.InStock {
			continue
		}

		savings := item.UnitPrice.Sub(p.Price).Mul(quantity)
		if !savings.IsPositive() {
			continue
		}

		pct := 0.0
		if originalLine.IsPositive() {
			pct, _ = savings.Div(originalLine).Mul(decimal.NewFromInt(100)).Float64()
		}

		alts = append(alts, ProductAlternative{
			ProductID:      p.ID,
			Name:           p.Name,
			Price:          p.Price,
			Store:          p.Store,
			InStock:        true,
			Savings:        savings.Round(2),
			SavingsPercent: pct,
		})
	}

	sort.SliceStable(alts, func(i, j int) bool {
		if !alts[i].Savings.Equal(alts[j].Savings) {
			return alts[i].Savings.GreaterThan(alts[j].Savings)
		}
		return alts[i].Store < alts[j].Store
	})

	r.metrics.RecordAlternativesFound(len(alts))
	return alts, nil
}
