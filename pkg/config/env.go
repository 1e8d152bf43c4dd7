package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/logger"
)

const (
	// DefaultAPIPort defines the default port for the API and metrics server
	DefaultAPIPort = "8080"

	// DefaultPriceFeedEndpoint defines the default price feed endpoint
	DefaultPriceFeedEndpoint = "https://api.coingecko.com/api/v3"

	// DefaultPriceFeedRate defines the default price feed request rate in requests per second
	DefaultPriceFeedRate = 5

	// DefaultPriceCacheTTL defines the default price cache lifetime in seconds
	DefaultPriceCacheTTL = 300

	// DefaultExecutorTimeout defines the default transfer executor call timeout in seconds
	DefaultExecutorTimeout = 10

	// DefaultCircuitBreakerEnabled defines whether the circuit breaker is enabled
	DefaultCircuitBreakerEnabled = true

	// DefaultCircuitBreakerThreshold defines the number of failures before the circuit breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the time window for the circuit breaker
	DefaultCircuitBreakerWindow = 5

	// DefaultCircuitBreakerReset defines the reset timeout for the circuit breaker
	DefaultCircuitBreakerReset = 15

	// Default public RPC endpoints per supported chain

	DefaultEthereumRPCURL = "https://eth.llamarpc.com"
	DefaultArbitrumRPCURL = "https://arb1.arbitrum.io/rpc"
	DefaultSolanaRPCURL   = "https://api.mainnet-beta.solana.com"
	DefaultMonadRPCURL    = "https://rpc.monad.xyz"
)

// GetEnvAPIPort returns the API server port from environment variables
func GetEnvAPIPort() (string, error) {
	apiPort := os.Getenv("API_PORT")
	if apiPort == "" {
		return DefaultAPIPort, nil
	}

	// Validate port format
	if _, err := strconv.Atoi(apiPort); err != nil {
		return "", fmt.Errorf("invalid API_PORT value: %s, must be a valid integer", apiPort)
	}
	return apiPort, nil
}

// GetEnvPriceFeedEndpoint returns the price feed endpoint from environment variables
func GetEnvPriceFeedEndpoint() (string, error) {
	endpoint := os.Getenv("PRICE_FEED_ENDPOINT")
	if endpoint == "" {
		return DefaultPriceFeedEndpoint, nil
	}

	// Validate URL format
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return "", fmt.Errorf("invalid PRICE_FEED_ENDPOINT value: %s, must be a valid URL", endpoint)
	}
	return endpoint, nil
}

// GetEnvPriceFeedRate returns the price feed request rate in requests per second
func GetEnvPriceFeedRate() (float64, error) {
	feedRate := os.Getenv("PRICE_FEED_RATE")
	if feedRate == "" {
		return DefaultPriceFeedRate, nil
	}

	rate, err := strconv.ParseFloat(feedRate, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid PRICE_FEED_RATE value: %s, must be a number", feedRate)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("PRICE_FEED_RATE must be greater than 0")
	}
	return rate, nil
}

// GetEnvPriceCacheTTL returns the price cache lifetime from environment variables
func GetEnvPriceCacheTTL() (time.Duration, error) {
	cacheTTL := os.Getenv("PRICE_CACHE_TTL")
	if cacheTTL == "" {
		return DefaultPriceCacheTTL * time.Second, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(cacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid PRICE_CACHE_TTL value: %s, must be a valid duration string", cacheTTL)
	}
	return parsed, nil
}

// GetEnvExecutorEndpoint returns the transfer executor endpoint from
// environment variables. An empty value selects the simulated executor.
func GetEnvExecutorEndpoint() (string, error) {
	endpoint := os.Getenv("EXECUTOR_ENDPOINT")
	if endpoint == "" {
		return "", nil
	}

	// Validate URL format
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return "", fmt.Errorf("invalid EXECUTOR_ENDPOINT value: %s, must be a valid URL", endpoint)
	}
	return endpoint, nil
}

// GetEnvExecutorTimeout returns the transfer executor call timeout from environment variables
func GetEnvExecutorTimeout() (time.Duration, error) {
	timeout := os.Getenv("EXECUTOR_TIMEOUT")
	if timeout == "" {
		return DefaultExecutorTimeout * time.Second, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid EXECUTOR_TIMEOUT value: %s, must be a valid duration string", timeout)
	}
	return parsed, nil
}

// GetEnvCircuitBreakerEnabled returns whether the circuit breaker is enabled from environment variables
func GetEnvCircuitBreakerEnabled() (bool, error) {
	enabled := os.Getenv("CIRCUIT_BREAKER_ENABLED")
	if enabled == "" {
		return DefaultCircuitBreakerEnabled, nil
	}

	if enabled == "true" {
		return true, nil
	} else if enabled == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid CIRCUIT_BREAKER_ENABLED value: %s, must be 'true' or 'false'", enabled)
}

// GetEnvCircuitBreakerThreshold returns the circuit breaker threshold from environment variables
func GetEnvCircuitBreakerThreshold() (int, error) {
	threshold := os.Getenv("CIRCUIT_BREAKER_THRESHOLD")
	if threshold == "" {
		return DefaultCircuitBreakerThreshold, nil
	}

	thresholdInt, err := strconv.Atoi(threshold)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_THRESHOLD value: %s, must be an integer", threshold)
	}
	if thresholdInt <= 0 {
		return 0, fmt.Errorf("CIRCUIT_BREAKER_THRESHOLD must be greater than 0")
	}
	return thresholdInt, nil
}

// GetEnvCircuitBreakerWindow returns the circuit breaker window duration from environment variables
func GetEnvCircuitBreakerWindow() (time.Duration, error) {
	window := os.Getenv("CIRCUIT_BREAKER_WINDOW")
	if window == "" {
		return DefaultCircuitBreakerWindow * time.Second, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(window)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_WINDOW value: %s, must be a valid duration string", window)
	}
	return parsed, nil
}

// GetEnvCircuitBreakerReset returns the circuit breaker reset timeout from environment variables
func GetEnvCircuitBreakerReset() (time.Duration, error) {
	reset := os.Getenv("CIRCUIT_BREAKER_RESET")
	if reset == "" {
		return DefaultCircuitBreakerReset * time.Second, nil
	}

	// Validate duration format
	parsed, err := time.ParseDuration(reset)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_RESET value: %s, must be a valid duration string", reset)
	}
	return parsed, nil
}

// GetEnvChainRPCs returns the RPC endpoint for every supported chain,
// falling back to public endpoints
func GetEnvChainRPCs() map[chains.Chain]string {
	ethereumRPC := os.Getenv("ETHEREUM_RPC_URL")
	if ethereumRPC == "" {
		ethereumRPC = DefaultEthereumRPCURL
	}

	arbitrumRPC := os.Getenv("ARBITRUM_RPC_URL")
	if arbitrumRPC == "" {
		arbitrumRPC = DefaultArbitrumRPCURL
	}

	solanaRPC := os.Getenv("SOLANA_RPC_URL")
	if solanaRPC == "" {
		solanaRPC = DefaultSolanaRPCURL
	}

	monadRPC := os.Getenv("MONAD_RPC_URL")
	if monadRPC == "" {
		monadRPC = DefaultMonadRPCURL
	}

	return map[chains.Chain]string{
		chains.Ethereum: ethereumRPC,
		chains.Arbitrum: arbitrumRPC,
		chains.Solana:   solanaRPC,
		chains.Monad:    monadRPC,
	}
}

// GetEnvLogLevel returns the log level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return logger.InfoLevel, nil
	}

	switch level {
	case "debug":
		return logger.DebugLevel, nil
	case "info":
		return logger.InfoLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	}

	return 0, fmt.Errorf("invalid LOG_LEVEL value: %s, must be 'debug', 'info', 'notice' or 'error'", level)
}

// GetEnvLogColoring returns whether log coloring is enabled from environment variables
func GetEnvLogColoring() (bool, error) {
	coloring := os.Getenv("LOG_COLORING")
	if coloring == "" {
		return true, nil
	}

	if coloring == "true" {
		return true, nil
	} else if coloring == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be 'true' or 'false'", coloring)
}
