package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cartwise/cart-service/internal/export"
)

var exportOut string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <cart.json>",
	Short: "Export a strategy comparison as an xlsx workbook",
	Long: `Run every optimization strategy against the cart and write the
comparison to an Excel workbook, one sheet per strategy plus a summary.`,
	Example: `  cart-service export cart.json
  cart-service export cart.json --out weekly-shop.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "cart-comparison.xlsx", "Output file path")
}

func runExport(cmd *cobra.Command, args []string) error {
	cart, err := loadCartFile(args[0])
	if err != nil {
		return err
	}

	eng, closeEngine, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeEngine()

	results, err := eng.CompareStrategies(context.Background(), cart.Items, cart.Strategy)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := export.ComparisonWorkbook(f, results); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info().Str("path", exportOut).Int("strategies", len(results)).Msg("Comparison exported")
	return nil
}
