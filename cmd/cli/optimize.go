package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cartwise/cart-service/internal/cachestore"
	"github.com/cartwise/cart-service/internal/catalog"
	"github.com/cartwise/cart-service/internal/engine"
)

var (
	optimizeStrategy  string
	optimizeMaxStores int
	optimizeStores    []string
	optimizeJSON      bool
)

// optimizeCmd represents the optimize command
var optimizeCmd = &cobra.Command{
	Use:   "optimize <cart.json>",
	Short: "Optimize a cart from a JSON file",
	Long: `Optimize a shopping cart described in a JSON file. Alternatives are
resolved through the product catalog configured via CATALOG_URL, so the catalog
service must be reachable.

The cart file holds the line items and, optionally, a strategy:

  {
    "items": [
      {"productId": "bananas", "name": "Bananas", "unitPrice": "2.00", "store": "StoreA", "quantity": 2}
    ],
    "strategy": {"type": "budget"}
  }`,
	Example: `  cart-service optimize cart.json
  cart-service optimize cart.json --strategy split-cart --max-stores 2
  cart-service optimize cart.json --strategy convenience --json`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVar(&optimizeStrategy, "strategy", "", "Strategy to apply (budget, split-cart, convenience, meal-plan); overrides the cart file")
	optimizeCmd.Flags().IntVar(&optimizeMaxStores, "max-stores", 0, "Maximum number of destination stores")
	optimizeCmd.Flags().StringSliceVar(&optimizeStores, "preferred-stores", nil, "Restrict switches to these stores")
	optimizeCmd.Flags().BoolVar(&optimizeJSON, "json", false, "Print the raw optimization result as JSON")
}

// cartFile is the on-disk cart format shared by the optimize and export commands.
type cartFile struct {
	Items    []engine.CartLineItem `json:"items"`
	Strategy engine.Strategy       `json:"strategy"`
}

func loadCartFile(path string) (*cartFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart file: %w", err)
	}

	var cart cartFile
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to parse cart file: %w", err)
	}
	return &cart, nil
}

// buildEngine wires a standalone engine the same way the server does, minus
// the shared cache backend. CLI runs are one-shot so the memory cache only
// serves the compare command's per-strategy reuse.
func buildEngine() (*engine.Engine, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config required but not loaded")
	}

	store := cachestore.NewMemory(0)
	eng := engine.New(catalog.NewClient(cfg.Catalog), store, &cfg.Engine)
	return eng, store.Close, nil
}

func applyStrategyFlags(s engine.Strategy) engine.Strategy {
	if optimizeStrategy != "" {
		s.Type = engine.ParseStrategyType(optimizeStrategy)
	}
	if optimizeMaxStores > 0 {
		s.MaxStores = optimizeMaxStores
	}
	if len(optimizeStores) > 0 {
		s.PreferredStores = optimizeStores
	}
	return s
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cart, err := loadCartFile(args[0])
	if err != nil {
		return err
	}

	eng, closeEngine, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeEngine()

	result, err := eng.OptimizeCart(context.Background(), cart.Items, applyStrategyFlags(cart.Strategy))
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	if optimizeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}

func printResult(result *engine.OptimizationResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Strategy:\t%s\n", result.Strategy)
	fmt.Fprintf(w, "Original total:\t%s\n", result.OriginalTotal.StringFixed(2))
	fmt.Fprintf(w, "Optimized total:\t%s\n", result.OptimizedTotal.StringFixed(2))
	fmt.Fprintf(w, "Savings:\t%s (%.1f%%)\n", result.TotalSavings.StringFixed(2), result.SavingsPercent)
	fmt.Fprintln(w)

	for _, group := range result.StoreGroups {
		fmt.Fprintf(w, "%s\t(%d items, subtotal %s, delivery %s)\n",
			group.Store, group.ItemCount, group.Subtotal.StringFixed(2), group.DeliveryFee.StringFixed(2))
		for _, item := range group.Items {
			fmt.Fprintf(w, "  %s\t%d x %s\t%s\n",
				item.Name, item.Quantity, item.UnitPrice.StringFixed(2), item.LineTotal().StringFixed(2))
		}
	}

	if len(result.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recommendations:")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(w, "  [%s]\t%s\t(save %s)\n", rec.Kind, rec.Message, rec.PotentialSavings.StringFixed(2))
		}
	}

	w.Flush()
}
