package quote

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedPrices serves prices from a static map
type fixedPrices struct {
	prices map[string]float64
}

func (f *fixedPrices) Price(_ context.Context, chain chains.Chain, token chains.Token) float64 {
	return f.prices[string(chain)+"/"+string(token)]
}

func stablePrices() *fixedPrices {
	return &fixedPrices{prices: map[string]float64{
		"ethereum/usdc": 1.0,
		"ethereum/usdt": 1.0,
		"arbitrum/usdc": 1.0,
		"solana/usdc":   1.0,
		"monad/usdc":    1.0,
		"monad/mon":     2.5,
	}}
}

func TestFeeSchedule(t *testing.T) {
	tests := []struct {
		name        string
		sourceChain chains.Chain
		destChain   chains.Chain
		expected    int
	}{
		{
			name:        "Same chain hop is cheapest",
			sourceChain: chains.Monad,
			destChain:   chains.Monad,
			expected:    5,
		},
		{
			name:        "EVM cross-chain hop is intermediate",
			sourceChain: chains.Ethereum,
			destChain:   chains.Monad,
			expected:    20,
		},
		{
			name:        "Arbitrum to Ethereum is intermediate",
			sourceChain: chains.Arbitrum,
			destChain:   chains.Ethereum,
			expected:    20,
		},
		{
			name:        "Solana source leg costs the most",
			sourceChain: chains.Solana,
			destChain:   chains.Monad,
			expected:    45,
		},
		{
			name:        "Solana destination leg costs the most",
			sourceChain: chains.Ethereum,
			destChain:   chains.Solana,
			expected:    45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FeeBps(tt.sourceChain, tt.destChain))
		})
	}

	// Ordering property: solana leg > cross-chain > same-chain
	assert.Greater(t, FeeBps(chains.Solana, chains.Monad), FeeBps(chains.Ethereum, chains.Monad))
	assert.Greater(t, FeeBps(chains.Ethereum, chains.Monad), FeeBps(chains.Monad, chains.Monad))
}

func TestQuoteComputation(t *testing.T) {
	engine := NewEngine(stablePrices(), nil)

	// 100 usdc -> mon with feeBps=12: fee 0.12, dest = 99.88 * (1/2.5)
	result, err := engine.Quote(context.Background(), chains.Ethereum, chains.USDC,
		chains.Monad, chains.MON, 100, 12)
	require.NoError(t, err)

	assert.Equal(t, 12, result.FeeBps)
	assert.InDelta(t, 0.12, result.Quote.FeeAmount, 1e-9)
	assert.InDelta(t, 99.88*(1.0/2.5), result.Quote.DestinationAmount, 1e-6)
	assert.Equal(t, "usdc", result.Quote.FeeCurrency)
	assert.InDelta(t, 100.0, result.SourceAmountUSD, 1e-9)
	assert.WithinDuration(t, time.Now().Add(QuoteTTL), result.Quote.ExpiresAt, time.Second)
}

func TestQuoteRoundTripInvariant(t *testing.T) {
	prices := &fixedPrices{prices: map[string]float64{
		"ethereum/usdc": 0.9991,
		"monad/mon":     3.17,
	}}
	engine := NewEngine(prices, nil)

	amounts := []float64{0.000001, 1, 37.5, 100, 12345.678901}
	for _, a := range amounts {
		result, err := engine.Quote(context.Background(), chains.Ethereum, chains.USDC,
			chains.Monad, chains.MON, a, 0)
		require.NoError(t, err)

		feeBps := FeeBps(chains.Ethereum, chains.Monad)
		fee := float64(feeBps) / 10000 * a
		expected := (a - fee) * 0.9991 / 3.17
		assert.InDelta(t, expected, result.Quote.DestinationAmount, 1e-6,
			"destination amount invariant violated for amount %v", a)
	}
}

func TestQuoteZeroDestinationPrice(t *testing.T) {
	prices := &fixedPrices{prices: map[string]float64{
		"ethereum/usdc": 1.0,
		// monad/mon absent -> price 0
	}}
	engine := NewEngine(prices, nil)

	result, err := engine.Quote(context.Background(), chains.Ethereum, chains.USDC,
		chains.Monad, chains.MON, 100, 0)
	require.NoError(t, err)

	// Net amount passes through unconverted instead of dividing by zero
	feeBps := FeeBps(chains.Ethereum, chains.Monad)
	net := 100 - float64(feeBps)/10000*100
	assert.InDelta(t, net, result.Quote.DestinationAmount, 1e-6)
	assert.Equal(t, 1.0, result.Quote.Rate)
}

func TestQuoteRejectsInvalidAmounts(t *testing.T) {
	engine := NewEngine(stablePrices(), nil)

	for _, a := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := engine.Quote(context.Background(), chains.Ethereum, chains.USDC,
			chains.Monad, chains.USDC, a, 0)
		require.ErrorIs(t, err, models.ErrInvalidAmount, "amount %v should be rejected", a)
	}
}

func TestSanitizeAmount(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		available float64
		expected  float64
	}{
		{
			name:      "valid amount passes through",
			amount:    50,
			available: 100,
			expected:  50,
		},
		{
			name:      "amount above availability is capped",
			amount:    150,
			available: 100,
			expected:  100,
		},
		{
			name:      "zero amount normalizes to zero",
			amount:    0,
			available: 100,
			expected:  0,
		},
		{
			name:      "negative amount normalizes to zero",
			amount:    -10,
			available: 100,
			expected:  0,
		},
		{
			name:      "NaN normalizes to zero",
			amount:    math.NaN(),
			available: 100,
			expected:  0,
		},
		{
			name:      "positive infinity is capped via zeroing",
			amount:    math.Inf(1),
			available: 100,
			expected:  0,
		},
		{
			name:      "exact availability passes through",
			amount:    100,
			available: 100,
			expected:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeAmount(tt.amount, tt.available))
		})
	}
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 1.234568, Round6(1.23456789))
	assert.Equal(t, 1.23, Round2(1.23456789))
	assert.Equal(t, 0.0, Round6(0))
}
