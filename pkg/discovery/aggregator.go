// Package discovery turns live on-chain balances into bridge intents.
// Chains are queried concurrently and a chain failure never sinks the
// discovery call; the failed chain simply contributes no intents.
package discovery

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/monbridge-hq/bridge-engine/pkg/catalog"
	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/circuitbreaker"
	"github.com/monbridge-hq/bridge-engine/pkg/logger"
	"github.com/monbridge-hq/bridge-engine/pkg/metrics"
	"github.com/monbridge-hq/bridge-engine/pkg/models"
	"github.com/monbridge-hq/bridge-engine/pkg/quote"
	"github.com/monbridge-hq/bridge-engine/pkg/tokens"
)

// Quoter prices a prospective transfer
type Quoter interface {
	Quote(ctx context.Context, sourceChain chains.Chain, sourceToken chains.Token,
		destChain chains.Chain, destToken chains.Token, amount float64, feeBpsOverride int,
	) (quote.Result, error)
}

// Aggregator fans balance queries out across chains and synthesizes
// discovered intents destined for the home chain
type Aggregator struct {
	evm      map[chains.Chain]EVMBalanceSource
	solana   SolanaBalanceSource
	breakers map[chains.Chain]*circuitbreaker.CircuitBreaker
	quoter   Quoter
	catalog  *catalog.Catalog
	logger   logger.Logger
}

// NewAggregator creates a discovery aggregator. A chain without a configured
// source fails discovery for that chain only.
func NewAggregator(
	evm map[chains.Chain]EVMBalanceSource,
	solana SolanaBalanceSource,
	breakers map[chains.Chain]*circuitbreaker.CircuitBreaker,
	quoter Quoter,
	cat *catalog.Catalog,
	log logger.Logger,
) *Aggregator {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Aggregator{
		evm:      evm,
		solana:   solana,
		breakers: breakers,
		quoter:   quoter,
		catalog:  cat,
		logger:   log,
	}
}

// tokenHolding is a normalized positive balance on one chain
type tokenHolding struct {
	token  chains.Token
	amount float64
}

type chainResult struct {
	chain    chains.Chain
	holdings []tokenHolding
	err      error
}

// Discover queries each requested chain for the address's balances,
// synthesizes one intent per positive holding, re-prices them, and caches
// the set in the catalog under the provider. Chains that fail are logged
// and treated as holding nothing; the call errors only on a missing address
// or when every chain fails.
func (a *Aggregator) Discover(ctx context.Context, provider chains.Provider, address string, requested []chains.Chain) (models.DiscoveryResult, error) {
	if address == "" {
		return models.DiscoveryResult{}, fmt.Errorf("%w: missing account address", models.ErrInvalidAddress)
	}

	timer := prometheus.NewTimer(metrics.DiscoveryDuration.WithLabelValues(string(provider)))
	defer timer.ObserveDuration()

	searched := dedupeChains(requested)
	if len(searched) == 0 {
		searched = chains.ChainList
	}

	results := make([]chainResult, len(searched))
	var wg sync.WaitGroup
	for i, chain := range searched {
		wg.Add(1)
		go func(i int, chain chains.Chain) {
			defer wg.Done()
			holdings, err := a.fetchChainHoldings(ctx, chain, address)
			results[i] = chainResult{chain: chain, holdings: holdings, err: err}
		}(i, chain)
	}
	wg.Wait()

	failed := 0
	for _, result := range results {
		if result.err != nil {
			failed++
			a.logger.ErrorWithChain(string(result.chain), "Balance discovery failed: %v", result.err)
		}
	}
	if failed == len(results) {
		return models.DiscoveryResult{}, fmt.Errorf("balance discovery failed on all %d chains", len(results))
	}

	intents := make([]models.Intent, 0)
	active := make([]chains.Chain, 0, len(searched))
	for _, result := range results {
		chainIntents := a.synthesizeIntents(ctx, result.chain, result.holdings)
		if len(chainIntents) > 0 {
			active = append(active, result.chain)
			intents = append(intents, chainIntents...)
		}
	}

	qualified := a.catalog.StoreDiscovered(provider, intents)

	// With nothing found, echo the caller's chain list exactly as requested
	if len(active) == 0 {
		active = requested
		if len(active) == 0 {
			active = chains.ChainList
		}
	}

	a.logger.Info("Discovered %d intents for %s across %d active chains", len(qualified), provider, len(active))
	return models.DiscoveryResult{
		ActiveChains: active,
		Intents:      qualified,
	}, nil
}

// synthesizeIntents turns a chain's positive holdings into priced intents
// destined for the same token on the home chain. Re-pricing is sequential
// within a chain; a holding that cannot be priced is dropped, not guessed.
func (a *Aggregator) synthesizeIntents(ctx context.Context, chain chains.Chain, holdings []tokenHolding) []models.Intent {
	intents := make([]models.Intent, 0, len(holdings))
	for _, holding := range holdings {
		if holding.amount <= 0 {
			continue
		}

		result, err := a.quoter.Quote(ctx, chain, holding.token, chains.HomeChain, holding.token, holding.amount, 0)
		if err != nil {
			a.logger.ErrorWithChain(string(chain), "Failed to price discovered %s balance: %v", holding.token, err)
			continue
		}

		intents = append(intents, models.Intent{
			ID: fmt.Sprintf("%s_%s_to_%s_%s_%d",
				chain, holding.token, chains.HomeChain, holding.token, len(intents)),
			SourceChain:      chain,
			SourceToken:      holding.token,
			DestinationChain: chains.HomeChain,
			DestinationToken: holding.token,
			AvailableAmount:  quote.Round6(holding.amount),
			USDValue:         result.SourceAmountUSD,
			FeeBps:           result.FeeBps,
			ETAMinutes:       quote.ETAMinutes(chain, chains.HomeChain),
		})
	}
	return intents
}

// fetchChainHoldings reads and normalizes the address's balances on one
// chain, honoring that chain's circuit breaker
func (a *Aggregator) fetchChainHoldings(ctx context.Context, chain chains.Chain, address string) ([]tokenHolding, error) {
	breaker := a.breakers[chain]
	if breaker != nil && breaker.IsOpen() {
		a.logger.NoticeWithChain(string(chain), "Circuit breaker open, skipping balance discovery")
		return nil, nil
	}

	var holdings []tokenHolding
	var err error
	if chain.IsEVM() {
		holdings, err = a.fetchEVMHoldings(ctx, chain, address)
	} else {
		holdings, err = a.fetchSolanaHoldings(ctx, address)
	}

	if err != nil {
		metrics.DiscoveryErrors.WithLabelValues(string(chain)).Inc()
		if breaker != nil {
			breaker.RecordFailure()
		}
		return nil, err
	}
	return holdings, nil
}

func (a *Aggregator) fetchEVMHoldings(ctx context.Context, chain chains.Chain, address string) ([]tokenHolding, error) {
	source, exists := a.evm[chain]
	if !exists {
		return nil, fmt.Errorf("no balance source configured for chain %s", chain)
	}

	supported := tokens.SupportedTokens(chain)
	tokenAddresses := make([]string, 0, len(supported))
	tokenByAddress := make(map[string]chains.Token, len(supported))
	decimalsByAddress := make(map[string]int, len(supported))
	for _, token := range supported {
		info, err := tokens.Describe(chain, token)
		if err != nil {
			return nil, err
		}
		tokenAddresses = append(tokenAddresses, info.Address)
		tokenByAddress[strings.ToLower(info.Address)] = token
		decimalsByAddress[strings.ToLower(info.Address)] = info.Decimals
	}

	balances, err := source.GetTokenBalances(ctx, address, tokenAddresses)
	if err != nil {
		return nil, err
	}

	holdings := make([]tokenHolding, 0, len(balances))
	for _, balance := range balances {
		key := strings.ToLower(balance.TokenAddress)
		token, known := tokenByAddress[key]
		if !known {
			continue
		}
		raw, ok := new(big.Int).SetString(strings.TrimPrefix(balance.RawBalanceHex, "0x"), 16)
		if !ok {
			return nil, fmt.Errorf("malformed balance %q for token %s", balance.RawBalanceHex, token)
		}
		amount := normalizeAmount(raw, decimalsByAddress[key])
		if amount > 0 {
			holdings = append(holdings, tokenHolding{token: token, amount: amount})
		}
	}
	return holdings, nil
}

func (a *Aggregator) fetchSolanaHoldings(ctx context.Context, address string) ([]tokenHolding, error) {
	if a.solana == nil {
		return nil, fmt.Errorf("no balance source configured for chain %s", chains.Solana)
	}

	holdings := make([]tokenHolding, 0)
	for _, token := range tokens.SupportedTokens(chains.Solana) {
		info, err := tokens.Describe(chains.Solana, token)
		if err != nil {
			return nil, err
		}

		accounts, err := a.solana.GetTokenAccountsByOwner(ctx, address, info.Address)
		if err != nil {
			return nil, err
		}

		// An owner may hold several token accounts for one mint
		total := 0.0
		for _, account := range accounts {
			raw, ok := new(big.Int).SetString(account.Amount, 10)
			if !ok {
				return nil, fmt.Errorf("malformed token amount %q for mint %s", account.Amount, info.Address)
			}
			decimals := account.Decimals
			if decimals <= 0 {
				decimals = info.Decimals
			}
			total += normalizeAmount(raw, decimals)
		}
		if total > 0 {
			holdings = append(holdings, tokenHolding{token: token, amount: total})
		}
	}
	return holdings, nil
}

// normalizeAmount converts a raw base-unit balance to a token amount
func normalizeAmount(raw *big.Int, decimals int) float64 {
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(new(big.Float).SetInt(raw), scale)
	amount, _ := value.Float64()
	return amount
}

// dedupeChains drops repeated chains while preserving request order
func dedupeChains(requested []chains.Chain) []chains.Chain {
	seen := make(map[chains.Chain]bool, len(requested))
	deduped := make([]chains.Chain, 0, len(requested))
	for _, chain := range requested {
		if seen[chain] {
			continue
		}
		seen[chain] = true
		deduped = append(deduped, chain)
	}
	return deduped
}
