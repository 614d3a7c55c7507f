package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/cartwise/cart-service/internal/engine"
)

// ============================================================================
// Cart Optimization Endpoints
// ============================================================================

// CartItem represents one line of the cart to optimize
type CartItem struct {
	ProductID string           `json:"productId" binding:"required"`
	Name      string           `json:"name" binding:"required"`
	UnitPrice decimal.Decimal  `json:"unitPrice" binding:"required"`
	Store     string           `json:"store" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	Category  string           `json:"category,omitempty"`
	ImageURL  string           `json:"imageUrl,omitempty"`
	MaxPrice  *decimal.Decimal `json:"maxPrice,omitempty"`
}

// StrategyRequest selects the optimization policy and its constraints
type StrategyRequest struct {
	Type               string   `json:"type,omitempty"`
	DeliveryPreference string   `json:"deliveryPreference,omitempty"`
	MaxStores          int      `json:"maxStores,omitempty" binding:"omitempty,min=1,max=10"`
	PreferredStores    []string `json:"preferredStores,omitempty"`
}

// OptimizeRequest represents the cart optimization request
type OptimizeRequest struct {
	Items    []CartItem      `json:"items" binding:"required,min=1,max=100,dive"`
	Strategy StrategyRequest `json:"strategy"`
}

// Global engine instance (initialized by the application)
var optimizationEngine *engine.Engine

// InitEngine wires the optimization engine into the handlers.
// This should be called during application startup.
func InitEngine(e *engine.Engine) {
	optimizationEngine = e
}

func toEngineItems(items []CartItem) []engine.CartLineItem {
	out := make([]engine.CartLineItem, len(items))
	for i, it := range items {
		out[i] = engine.CartLineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Store:     it.Store,
			Quantity:  it.Quantity,
			Category:  it.Category,
			ImageURL:  it.ImageURL,
			MaxPrice:  it.MaxPrice,
		}
	}
	return out
}

func toEngineStrategy(s StrategyRequest) engine.Strategy {
	return engine.Strategy{
		Type:               engine.ParseStrategyType(s.Type),
		DeliveryPreference: engine.DeliveryPreference(s.DeliveryPreference),
		MaxStores:          s.MaxStores,
		PreferredStores:    s.PreferredStores,
	}
}

// OptimizeCart handles cart optimization
// POST /internal/cart/optimize
//
// @Summary Optimize a cart
// @Description Re-prices and re-groups cart items across stores under the selected strategy.
// @Tags cart
// @Accept json
// @Produce json
// @Param request body OptimizeRequest true "Cart and strategy"
// @Success 200 {object} engine.OptimizationResult
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /cart/optimize [post]
func OptimizeCart(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if optimizationEngine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine not initialized"})
		return
	}

	result, err := optimizationEngine.OptimizeCart(
		c.Request.Context(), toEngineItems(req.Items), toEngineStrategy(req.Strategy))
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CompareStrategies handles side-by-side strategy comparison
// POST /internal/cart/optimize/compare
//
// @Summary Compare all strategies
// @Description Runs every optimization strategy against the same cart and returns all results.
// @Tags cart
// @Accept json
// @Produce json
// @Param request body OptimizeRequest true "Cart and strategy constraints"
// @Success 200 {object} map[string]engine.OptimizationResult
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /cart/optimize/compare [post]
func CompareStrategies(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func respondEngineError(c *gin.Context, err error) {
	var invalid engine.InvalidCartError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "optimization cancelled"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
