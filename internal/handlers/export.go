package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cartwise/cart-service/internal/export"
)

// ExportComparison handles strategy comparison export as an Excel workbook
// POST /internal/cart/optimize/export
//
// @Summary Export strategy comparison
// @Description Runs every strategy against the cart and returns the comparison as an xlsx workbook.
// @Tags cart
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body OptimizeRequest true "Cart and strategy constraints"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /cart/optimize/export [post]
func ExportComparison(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if optimizationEngine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine not initialized"})
		return
	}

	results, err := optimizationEngine.CompareStrategies(
		c.Request.Context(), toEngineItems(req.Items), toEngineStrategy(req.Strategy))
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="cart-comparison.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := export.ComparisonWorkbook(c.Writer, results); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
