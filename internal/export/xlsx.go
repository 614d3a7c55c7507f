// Package export renders optimization results into files shoppers and
// support staff can take away, currently as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/cartwise/cart-service/internal/engine"
)

// itemHeader is the column layout of a store group sheet.
var itemHeader = []string{"Product", "Store", "Unit Price", "Quantity", "Line Total"}

// ComparisonWorkbook writes one sheet per strategy plus a summary sheet
// comparing totals, and streams the workbook to w.
func ComparisonWorkbook(w io.Writer, results map[engine.StrategyType]*engine.OptimizationResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, results); err != nil {
		return err
	}

	for _, st := range engine.AllStrategyTypes {
		result, ok := results[st]
		if !ok {
			continue
		}
		if err := writeStrategySheet(f, string(st), result); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeSummarySheet(f *excelize.File, results map[engine.StrategyType]*engine.OptimizationResult) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := []string{"Strategy", "Original Total", "Optimized Total", "Savings", "Savings %", "Stores"}
	for col, title := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	row := 2
	for _, st := range engine.AllStrategyTypes {
		result, ok := results[st]
		if !ok {
			continue
		}
		values := []any{
			string(st),
			result.OriginalTotal.StringFixed(2),
			result.OptimizedTotal.StringFixed(2),
			result.TotalSavings.StringFixed(2),
			fmt.Sprintf("%.1f%%", result.SavingsPercent),
			len(result.StoreGroups),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		row++
	}
	return nil
}

func writeStrategySheet(f *excelize.File, name string, result *engine.OptimizationResult) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	for col, title := range itemHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(name, cell, title); err != nil {
			return err
		}
	}

	row := 2
	for _, g := range result.StoreGroups {
		for _, it := range g.Items {
			values := []any{
				it.Name,
				it.Store,
				it.UnitPrice.StringFixed(2),
				it.Quantity,
				it.LineTotal().StringFixed(2),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(name, cell, v); err != nil {
					return err
				}
			}
			row++
		}

		// Per-store footer with delivery economics.
		footer := fmt.Sprintf("%s subtotal %s, delivery %s",
			g.Store, g.Subtotal.StringFixed(2), g.DeliveryFee.StringFixed(2))
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(name, cell, footer); err != nil {
			return err
		}
		row += 2
	}
	return nil
}
