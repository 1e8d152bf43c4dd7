package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/logger"
)

// Config holds the configuration for the bridge intent engine
type Config struct {
	APIPort            string
	PriceFeedEndpoint  string
	PriceFeedRateRPS   float64
	PriceCacheTTL      time.Duration
	ExecutorEndpoint   string
	ExecutorTimeout    time.Duration
	ChainRPCs          map[chains.Chain]string
	MetricsAPIKey      string
	CircuitBreaker     CircuitBreakerConfig
	LoggerConfig       LoggerConfig
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled        bool
	Threshold      int
	WindowDuration time.Duration
	ResetTimeout   time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	apiPort, err := GetEnvAPIPort()
	if err != nil {
		return nil, err
	}

	priceFeedEndpoint, err := GetEnvPriceFeedEndpoint()
	if err != nil {
		return nil, err
	}

	priceFeedRate, err := GetEnvPriceFeedRate()
	if err != nil {
		return nil, err
	}

	priceCacheTTL, err := GetEnvPriceCacheTTL()
	if err != nil {
		return nil, err
	}

	executorEndpoint, err := GetEnvExecutorEndpoint()
	if err != nil {
		return nil, err
	}

	executorTimeout, err := GetEnvExecutorTimeout()
	if err != nil {
		return nil, err
	}

	cbEnabled, err := GetEnvCircuitBreakerEnabled()
	if err != nil {
		return nil, err
	}

	cbThreshold, err := GetEnvCircuitBreakerThreshold()
	if err != nil {
		return nil, err
	}

	cbWindow, err := GetEnvCircuitBreakerWindow()
	if err != nil {
		return nil, err
	}

	cbReset, err := GetEnvCircuitBreakerReset()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIPort:           apiPort,
		PriceFeedEndpoint: priceFeedEndpoint,
		PriceFeedRateRPS:  priceFeedRate,
		PriceCacheTTL:     priceCacheTTL,
		ExecutorEndpoint:  executorEndpoint,
		ExecutorTimeout:   executorTimeout,
		ChainRPCs:         GetEnvChainRPCs(),
		MetricsAPIKey:     os.Getenv("METRICS_API_KEY"),
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:        cbEnabled,
			Threshold:      cbThreshold,
			WindowDuration: cbWindow,
			ResetTimeout:   cbReset,
		},
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.ChainRPCs) == 0 {
		return fmt.Errorf("at least one chain RPC configuration is required")
	}
	for _, chain := range chains.ChainList {
		if cfg.ChainRPCs[chain] == "" {
			return fmt.Errorf("%s RPC URL is required", chain)
		}
	}
	return nil
}
