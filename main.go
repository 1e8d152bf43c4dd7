package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/monbridge-hq/bridge-engine/pkg/allowance"
	"github.com/monbridge-hq/bridge-engine/pkg/catalog"
	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/circuitbreaker"
	"github.com/monbridge-hq/bridge-engine/pkg/config"
	"github.com/monbridge-hq/bridge-engine/pkg/discovery"
	"github.com/monbridge-hq/bridge-engine/pkg/engine"
	"github.com/monbridge-hq/bridge-engine/pkg/executor"
	"github.com/monbridge-hq/bridge-engine/pkg/health"
	"github.com/monbridge-hq/bridge-engine/pkg/logger"
	"github.com/monbridge-hq/bridge-engine/pkg/pricing"
	"github.com/monbridge-hq/bridge-engine/pkg/quote"
	"github.com/monbridge-hq/bridge-engine/pkg/store"
	"github.com/monbridge-hq/bridge-engine/pkg/tokens"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The token registry is compiled in; a broken table is a build
	// mistake, not a runtime condition
	if err := tokens.Validate(); err != nil {
		log.Fatalf("Token registry validation failed: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Price oracle: live feed with TTL cache and static fallback prices
	feed := pricing.NewFeedClient(cfg.PriceFeedEndpoint)
	oracle := pricing.NewOracle(feed, cfg.PriceCacheTTL, cfg.PriceFeedRateRPS, appLogger)
	quoter := quote.NewEngine(oracle, appLogger)

	// One circuit breaker per chain guards balance discovery
	breakers := make(map[chains.Chain]*circuitbreaker.CircuitBreaker)
	for _, chain := range chains.ChainList {
		breakers[chain] = circuitbreaker.NewCircuitBreaker(
			cfg.CircuitBreaker.Enabled,
			cfg.CircuitBreaker.Threshold,
			cfg.CircuitBreaker.WindowDuration,
			cfg.CircuitBreaker.ResetTimeout,
			appLogger,
		)
	}

	// Balance sources per chain
	evmSources := make(map[chains.Chain]discovery.EVMBalanceSource)
	for _, chain := range chains.ChainList {
		if !chain.IsEVM() {
			continue
		}
		client, err := discovery.NewEVMClient(cfg.ChainRPCs[chain])
		if err != nil {
			log.Fatalf("Failed to connect to %s RPC: %v", chain, err)
		}
		evmSources[chain] = client
	}
	solanaSource := discovery.NewSolanaClient(cfg.ChainRPCs[chains.Solana])

	intentCatalog := catalog.New()
	aggregator := discovery.NewAggregator(evmSources, solanaSource, breakers, quoter, intentCatalog, appLogger)

	accountStore := store.NewMemoryStore()
	enforcer := allowance.NewEnforcer(accountStore, appLogger)

	var transferExecutor executor.Executor
	if cfg.ExecutorEndpoint == "" {
		appLogger.Notice("No executor endpoint configured, using simulated executor")
		transferExecutor = executor.NewSimulatedExecutor()
	} else {
		transferExecutor = executor.NewHTTPExecutor(cfg.ExecutorEndpoint, cfg.ExecutorTimeout)
	}

	bridgeEngine := engine.New(
		aggregator,
		intentCatalog,
		quoter,
		enforcer,
		accountStore,
		transferExecutor,
		appLogger,
	)

	server := health.NewServer(
		cfg.APIPort,
		bridgeEngine,
		cfg.ChainRPCs,
		breakers,
		cfg.MetricsAPIKey,
		appLogger,
	)

	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Println("Received termination signal, shutting down gracefully...")
		cancel()
	}()

	appLogger.Info("Starting the bridge intent engine...")
	go server.Start()

	<-ctx.Done()
}
