package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/cartwise/cart-service/internal/catalog"
	"github.com/cartwise/cart-service/internal/engine"
	"github.com/cartwise/cart-service/internal/inventory"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Cache     CacheConfig      `mapstructure:"cache"`
	Engine    engine.Config    `mapstructure:"engine"`
	Catalog   catalog.Config   `mapstructure:"catalog"`
	Inventory inventory.Config `mapstructure:"inventory"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Host           string        `mapstructure:"host"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	InternalAPIKey string        `mapstructure:"internal_api_key"`
}

// DatabaseConfig holds database connection configuration. The database is
// only used by the shared result cache backend; memory-cache deployments
// can leave the URL empty.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	// Backend is "memory" or "postgres".
	Backend       string        `mapstructure:"backend"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// TelemetryConfig holds OpenTelemetry export configuration
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	Environment string `mapstructure:"environment"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// .env is optional, log but don't fail
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("CART_SERVICE")

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// loadEnvFile loads a .env file from the usual locations, if one exists.
func loadEnvFile() error {
	for _, path := range []string{".", "./config"} {
		envFile := path + "/.env"
		if _, err := os.Stat(envFile); err == nil {
			return loadDotEnvFile(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds well-known environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.url", "DATABASE_URL")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.internal_api_key", "INTERNAL_API_KEY")

	v.BindEnv("logging.level", "LOG_LEVEL")

	v.BindEnv("catalog.base_url", "CATALOG_URL")
	v.BindEnv("catalog.api_key", "CATALOG_API_KEY")
	v.BindEnv("inventory.base_url", "INVENTORY_URL")
	v.BindEnv("inventory.api_key", "INVENTORY_API_KEY")

	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.sweep_interval", 1*time.Minute)

	// Engine defaults
	eng := engine.DefaultConfig()
	v.SetDefault("engine.free_delivery_threshold", eng.FreeDeliveryThreshold)
	v.SetDefault("engine.base_delivery_fee", eng.BaseDeliveryFee)
	v.SetDefault("engine.alternative_limit", eng.AlternativeLimit)
	v.SetDefault("engine.max_concurrent_lookups", eng.MaxConcurrentLookups)
	v.SetDefault("engine.lookup_timeout", eng.LookupTimeout)
	v.SetDefault("engine.cache_ttl", eng.CacheTTL)
	v.SetDefault("engine.max_cart_items", eng.MaxCartItems)
	v.SetDefault("engine.bundle_margin", eng.BundleMargin)
	v.SetDefault("engine.min_switch_savings", eng.MinSwitchSavings)
	v.SetDefault("engine.max_recommendations", eng.MaxRecommendations)
	v.SetDefault("engine.meal_plan_category_weight", eng.MealPlanCategoryWeight)
	v.SetDefault("engine.meal_plan_value_weight", eng.MealPlanValueWeight)
	v.SetDefault("engine.meal_plan_default_max_stores", eng.MealPlanDefaultMaxStores)

	// Catalog defaults
	cat := catalog.DefaultConfig()
	v.SetDefault("catalog.base_url", cat.BaseURL)
	v.SetDefault("catalog.timeout", cat.Timeout)
	v.SetDefault("catalog.requests_per_second", cat.RequestsPerSecond)
	v.SetDefault("catalog.burst", cat.Burst)
	v.SetDefault("catalog.max_retries", cat.MaxRetries)
	v.SetDefault("catalog.initial_backoff", cat.InitialBackoff)
	v.SetDefault("catalog.max_backoff", cat.MaxBackoff)

	// Inventory defaults
	inv := inventory.DefaultConfig()
	v.SetDefault("inventory.base_url", inv.BaseURL)
	v.SetDefault("inventory.timeout", inv.Timeout)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.environment", "production")
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}
