package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cartwise/cart-service/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Engine   string `json:"engine"`
	Database string `json:"database"`
}

// HealthCheck handles the health check endpoint
// GET /health
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}

	if optimizationEngine != nil {
		response.Engine = "ready"
	} else {
		response.Engine = "not initialized"
		response.Status = "degraded"
	}

	// The database is optional: only the postgres cache backend uses it.
	if database.Pool() != nil {
		if err := database.Status(c.Request.Context()); err != nil {
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	if response.Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}
