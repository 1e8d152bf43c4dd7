package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/metrics"
	"github.com/monbridge-hq/bridge-engine/pkg/models"
)

// fallbackIntents is the permanent, hand-curated intent set per wallet
// provider, used when live discovery is unavailable. Amounts and USD values
// are baked-in last resorts; the engine re-prices them when it can.
var fallbackIntents = map[chains.Provider][]models.Intent{
	chains.Metamask: {
		{
			ID:               "ethereum_usdc_to_monad_usdc",
			SourceChain:      chains.Ethereum,
			SourceToken:      chains.USDC,
			DestinationChain: chains.Monad,
			DestinationToken: chains.USDC,
			AvailableAmount:  100,
			USDValue:         100,
			FeeBps:           12,
			ETAMinutes:       5,
		},
		{
			ID:               "arbitrum_usdt_to_monad_usdt",
			SourceChain:      chains.Arbitrum,
			SourceToken:      chains.USDT,
			DestinationChain: chains.Monad,
			DestinationToken: chains.USDT,
			AvailableAmount:  250,
			USDValue:         250,
			FeeBps:           20,
			ETAMinutes:       5,
		},
	},
	chains.Phantom: {
		{
			ID:               "solana_usdc_to_monad_usdc",
			SourceChain:      chains.Solana,
			SourceToken:      chains.USDC,
			DestinationChain: chains.Monad,
			DestinationToken: chains.USDC,
			AvailableAmount:  100,
			USDValue:         100,
			FeeBps:           45,
			ETAMinutes:       15,
		},
		{
			ID:               "solana_usdt_to_monad_usdt",
			SourceChain:      chains.Solana,
			SourceToken:      chains.USDT,
			DestinationChain: chains.Monad,
			DestinationToken: chains.USDT,
			AvailableAmount:  100,
			USDValue:         100,
			FeeBps:           45,
			ETAMinutes:       15,
		},
	},
	chains.Backpack: {
		{
			ID:               "solana_usdc_to_monad_usdc",
			SourceChain:      chains.Solana,
			SourceToken:      chains.USDC,
			DestinationChain: chains.Monad,
			DestinationToken: chains.USDC,
			AvailableAmount:  100,
			USDValue:         100,
			FeeBps:           45,
			ETAMinutes:       15,
		},
		{
			ID:               "ethereum_usdc_to_monad_usdc",
			SourceChain:      chains.Ethereum,
			SourceToken:      chains.USDC,
			DestinationChain: chains.Monad,
			DestinationToken: chains.USDC,
			AvailableAmount:  100,
			USDValue:         100,
			FeeBps:           12,
			ETAMinutes:       5,
		},
	},
}

// Catalog holds the permanent fallback intents and an addressable cache of
// ephemeral discovered intents, both keyed "{provider}:{baseId}".
// Discovered intents live only until the next discovery call for their
// provider purges them.
type Catalog struct {
	mu         sync.RWMutex
	discovered map[chains.Provider]map[string]models.Intent
}

// New creates a new intent catalog
func New() *Catalog {
	return &Catalog{
		discovered: make(map[chains.Provider]map[string]models.Intent),
	}
}

// QualifiedID builds the addressable intent id for a provider and base id
func QualifiedID(provider chains.Provider, baseID string) string {
	return fmt.Sprintf("%s:%s", provider, baseID)
}

// FallbackIntents returns the provider's static fallback intents with
// fully-qualified addressable ids
func (c *Catalog) FallbackIntents(provider chains.Provider) []models.Intent {
	entries := fallbackIntents[provider]
	intents := make([]models.Intent, 0, len(entries))
	for _, intent := range entries {
		intent.ID = QualifiedID(provider, intent.ID)
		intents = append(intents, intent)
	}
	return intents
}

// StoreDiscovered replaces the provider's cached discovered intents with a
// new set. The purge-before-populate keeps a session that lost a balance
// from seeing a lingering intent past the next discovery.
func (c *Catalog) StoreDiscovered(provider chains.Provider, intents []models.Intent) []models.Intent {
	entries := make(map[string]models.Intent, len(intents))
	qualified := make([]models.Intent, 0, len(intents))
	for _, intent := range intents {
		intent.ID = QualifiedID(provider, intent.ID)
		entries[intent.ID] = intent
		qualified = append(qualified, intent)
	}

	c.mu.Lock()
	c.discovered[provider] = entries
	total := 0
	for _, providerIntents := range c.discovered {
		total += len(providerIntents)
	}
	c.mu.Unlock()

	metrics.DiscoveredIntents.Set(float64(total))
	return qualified
}

// Resolve returns the intent for an addressable id, checking the discovered
// cache first and the static catalog second
func (c *Catalog) Resolve(intentID string) (models.Intent, error) {
	parts := strings.SplitN(intentID, ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return models.Intent{}, fmt.Errorf("malformed intent id %q: %w", intentID, models.ErrNotFound)
	}

	provider, err := chains.ParseProvider(parts[0])
	if err != nil {
		return models.Intent{}, fmt.Errorf("intent id %q: %w", intentID, models.ErrNotFound)
	}

	c.mu.RLock()
	intent, exists := c.discovered[provider][intentID]
	c.mu.RUnlock()
	if exists {
		return intent, nil
	}

	for _, entry := range fallbackIntents[provider] {
		if QualifiedID(provider, entry.ID) == intentID {
			entry.ID = intentID
			return entry, nil
		}
	}

	return models.Intent{}, fmt.Errorf("intent %q: %w", intentID, models.ErrNotFound)
}
