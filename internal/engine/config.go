package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the tuning knobs for the optimization engine.
// It is loaded from the service config file or environment variables.
type Config struct {
	// Delivery economics
	FreeDeliveryThreshold float64 `mapstructure:"free_delivery_threshold"`
	BaseDeliveryFee       float64 `mapstructure:"base_delivery_fee"`

	// Alternative lookups
	AlternativeLimit     int           `mapstructure:"alternative_limit"`
	MaxConcurrentLookups int           `mapstructure:"max_concurrent_lookups"`
	LookupTimeout        time.Duration `mapstructure:"lookup_timeout"`

	// Result cache
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// Validation limits
	MaxCartItems int `mapstructure:"max_cart_items"`

	// Recommendation thresholds
	BundleMargin       float64 `mapstructure:"bundle_margin"`
	MinSwitchSavings   float64 `mapstructure:"min_switch_savings"`
	MaxRecommendations int     `mapstructure:"max_recommendations"`

	// Meal-plan store scoring. These are policy knobs, not a fixed algorithm.
	MealPlanCategoryWeight   float64 `mapstructure:"meal_plan_category_weight"`
	MealPlanValueWeight      float64 `mapstructure:"meal_plan_value_weight"`
	MealPlanDefaultMaxStores int     `mapstructure:"meal_plan_default_max_stores"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		FreeDeliveryThreshold:    35.00,
		BaseDeliveryFee:          4.99,
		AlternativeLimit:         10,
		MaxConcurrentLookups:     8,
		LookupTimeout:            2 * time.Second,
		CacheTTL:                 2 * time.Minute,
		MaxCartItems:             100,
		BundleMargin:             10.00,
		MinSwitchSavings:         1.00,
		MaxRecommendations:       5,
		MealPlanCategoryWeight:   0.5,
		MealPlanValueWeight:      1.0,
		MealPlanDefaultMaxStores: 2,
	}
}

// Threshold returns the free-delivery threshold as money.
func (c *Config) Threshold() decimal.Decimal {
	return decimal.NewFromFloat(c.FreeDeliveryThreshold)
}

// DeliveryFee returns the base delivery fee as money.
func (c *Config) DeliveryFee() decimal.Decimal {
	return decimal.NewFromFloat(c.BaseDeliveryFee)
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.FreeDeliveryThreshold < 0 {
		return ErrInvalidConfig{Field: "free_delivery_threshold", Reason: "must be non-negative"}
	}
	if c.BaseDeliveryFee < 0 {
		return ErrInvalidConfig{Field: "base_delivery_fee", Reason: "must be non-negative"}
	}
	if c.AlternativeLimit < 1 {
		return ErrInvalidConfig{Field: "alternative_limit", Reason: "must be at least 1"}
	}
	if c.MaxConcurrentLookups < 1 {
		return ErrInvalidConfig{Field: "max_concurrent_lookups", Reason: "must be at least 1"}
	}
	if c.LookupTimeout <= 0 {
		return ErrInvalidConfig{Field: "lookup_timeout", Reason: "must be positive"}
	}
	if c.CacheTTL <= 0 {
		return ErrInvalidConfig{Field: "cache_ttl", Reason: "must be positive"}
	}
	if c.MaxCartItems < 1 {
		return ErrInvalidConfig{Field: "max_cart_items", Reason: "must be at least 1"}
	}
	if c.BundleMargin < 0 {
		return ErrInvalidConfig{Field: "bundle_margin", Reason: "must be non-negative"}
	}
	if c.MinSwitchSavings < 0 {
		return ErrInvalidConfig{Field: "min_switch_savings", Reason: "must be non-negative"}
	}
	if c.MaxRecommendations < 1 {
		return ErrInvalidConfig{Field: "max_recommendations", Reason: "must be at least 1"}
	}
	if c.MealPlanDefaultMaxStores < 1 {
		return ErrInvalidConfig{Field: "meal_plan_default_max_stores", Reason: "must be at least 1"}
	}
	return nil
}

// ErrInvalidConfig is returned when the engine configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
