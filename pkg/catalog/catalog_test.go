package catalog

import (
	"testing"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discoveredIntent(baseID string, amount float64) models.Intent {
	return models.Intent{
		ID:               baseID,
		SourceChain:      chains.Ethereum,
		SourceToken:      chains.USDC,
		DestinationChain: chains.Monad,
		DestinationToken: chains.USDC,
		AvailableAmount:  amount,
	}
}

func TestFallbackIntents(t *testing.T) {
	c := New()

	// Every provider carries 2-3 hand-curated fallback intents with
	// fully-qualified ids
	for _, provider := range chains.ProviderList {
		intents := c.FallbackIntents(provider)
		require.GreaterOrEqual(t, len(intents), 2, "provider %s", provider)
		require.LessOrEqual(t, len(intents), 3, "provider %s", provider)
		for _, intent := range intents {
			assert.Contains(t, intent.ID, string(provider)+":")
			assert.Equal(t, chains.Monad, intent.DestinationChain)
		}
	}
}

func TestResolveCatalogIntent(t *testing.T) {
	c := New()

	intent, err := c.Resolve("metamask:ethereum_usdc_to_monad_usdc")
	require.NoError(t, err)
	assert.Equal(t, chains.Ethereum, intent.SourceChain)
	assert.Equal(t, 12, intent.FeeBps)
}

func TestResolveNotFound(t *testing.T) {
	c := New()

	tests := []struct {
		name     string
		intentID string
	}{
		{name: "missing separator", intentID: "metamask_ethereum_usdc"},
		{name: "empty base id", intentID: "metamask:"},
		{name: "unknown provider", intentID: "ledger:ethereum_usdc_to_monad_usdc"},
		{name: "unknown base id", intentID: "metamask:solana_usdc_to_monad_usdc"},
		{name: "empty id", intentID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Resolve(tt.intentID)
			require.ErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestStoreDiscoveredAndResolve(t *testing.T) {
	c := New()

	stored := c.StoreDiscovered(chains.Metamask, []models.Intent{
		discoveredIntent("ethereum_usdc_to_monad_usdc_0", 42),
	})
	require.Len(t, stored, 1)
	assert.Equal(t, "metamask:ethereum_usdc_to_monad_usdc_0", stored[0].ID)

	intent, err := c.Resolve("metamask:ethereum_usdc_to_monad_usdc_0")
	require.NoError(t, err)
	assert.Equal(t, 42.0, intent.AvailableAmount)
}

func TestStoreDiscoveredPurgesPreviousSet(t *testing.T) {
	c := New()

	c.StoreDiscovered(chains.Metamask, []models.Intent{
		discoveredIntent("ethereum_usdc_to_monad_usdc_0", 42),
	})
	c.StoreDiscovered(chains.Metamask, []models.Intent{
		discoveredIntent("arbitrum_usdt_to_monad_usdt_0", 7),
	})

	// The previous discovered intent must not linger
	_, err := c.Resolve("metamask:ethereum_usdc_to_monad_usdc_0")
	require.ErrorIs(t, err, models.ErrNotFound)

	intent, err := c.Resolve("metamask:arbitrum_usdt_to_monad_usdt_0")
	require.NoError(t, err)
	assert.Equal(t, 7.0, intent.AvailableAmount)
}

func TestStoreDiscoveredIsProviderScoped(t *testing.T) {
	c := New()

	c.StoreDiscovered(chains.Metamask, []models.Intent{
		discoveredIntent("ethereum_usdc_to_monad_usdc_0", 42),
	})
	// A discovery for another provider must not purge metamask's cache
	c.StoreDiscovered(chains.Phantom, nil)

	_, err := c.Resolve("metamask:ethereum_usdc_to_monad_usdc_0")
	require.NoError(t, err)
}

func TestDiscoveredShadowsCatalog(t *testing.T) {
	c := New()

	c.StoreDiscovered(chains.Metamask, []models.Intent{
		discoveredIntent("ethereum_usdc_to_monad_usdc", 999),
	})

	intent, err := c.Resolve("metamask:ethereum_usdc_to_monad_usdc")
	require.NoError(t, err)
	assert.Equal(t, 999.0, intent.AvailableAmount, "discovered cache should win over the static catalog")
}

func TestCatalogIntentsSurviveDiscoveryPurge(t *testing.T) {
	c := New()

	c.StoreDiscovered(chains.Metamask, nil)

	intent, err := c.Resolve("metamask:arbitrum_usdt_to_monad_usdt")
	require.NoError(t, err)
	assert.Equal(t, chains.Arbitrum, intent.SourceChain)
}
