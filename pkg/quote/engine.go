package quote

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/logger"
	"github.com/monbridge-hq/bridge-engine/pkg/metrics"
	"github.com/monbridge-hq/bridge-engine/pkg/models"
)

// QuoteTTL is how long an issued quote remains valid
const QuoteTTL = 60 * time.Second

// hopClass classifies a chain pair for the fee schedule
type hopClass int

const (
	// hopSameChain is a transfer that never leaves its chain
	hopSameChain hopClass = iota
	// hopCrossChain is a hop between two EVM chains
	hopCrossChain
	// hopSolanaLeg is any hop with a leg touching Solana, the
	// cross-ecosystem chain with the highest settlement latency
	hopSolanaLeg
)

// feeSchedule maps hop classes to fee basis points
var feeSchedule = map[hopClass]int{
	hopSameChain:  5,
	hopCrossChain: 20,
	hopSolanaLeg:  45,
}

// etaSchedule maps hop classes to estimated settlement minutes
var etaSchedule = map[hopClass]int{
	hopSameChain:  1,
	hopCrossChain: 5,
	hopSolanaLeg:  15,
}

// classifyHop resolves the hop class for a chain pair
func classifyHop(sourceChain, destChain chains.Chain) hopClass {
	if sourceChain == destChain {
		return hopSameChain
	}
	if sourceChain == chains.Solana || destChain == chains.Solana {
		return hopSolanaLeg
	}
	return hopCrossChain
}

// FeeBps returns the scheduled fee in basis points for a chain pair
func FeeBps(sourceChain, destChain chains.Chain) int {
	return feeSchedule[classifyHop(sourceChain, destChain)]
}

// ETAMinutes returns the estimated settlement time for a chain pair
func ETAMinutes(sourceChain, destChain chains.Chain) int {
	return etaSchedule[classifyHop(sourceChain, destChain)]
}

// PriceSource resolves USD prices for (chain, token) pairs
type PriceSource interface {
	Price(ctx context.Context, chain chains.Chain, token chains.Token) float64
}

// Result is a priced quote together with the inputs needed downstream:
// the effective fee bps and the USD prices of both legs.
type Result struct {
	Quote               models.Quote
	FeeBps              int
	SourceUsdPrice      float64
	DestinationUsdPrice float64
	SourceAmountUSD     float64
}

// Engine computes quotes from current USD prices
type Engine struct {
	prices PriceSource
	logger logger.Logger
}

// NewEngine creates a new quote engine
func NewEngine(prices PriceSource, log logger.Logger) *Engine {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Engine{
		prices: prices,
		logger: log,
	}
}

// Quote prices a transfer of amount source tokens into destination tokens.
// feeBpsOverride, when positive, wins over the scheduled fee. The amount
// must already be sanitized; a non-positive or non-finite amount is
// rejected.
func (e *Engine) Quote(ctx context.Context, sourceChain chains.Chain, sourceToken chains.Token,
	destChain chains.Chain, destToken chains.Token, amount float64, feeBpsOverride int,
) (Result, error) {
	if amount <= 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return Result{}, fmt.Errorf("%w: %v", models.ErrInvalidAmount, amount)
	}

	feeBps := feeBpsOverride
	if feeBps <= 0 {
		feeBps = FeeBps(sourceChain, destChain)
	}

	sourcePrice := e.prices.Price(ctx, sourceChain, sourceToken)
	destPrice := e.prices.Price(ctx, destChain, destToken)

	fee := float64(feeBps) / 10000 * amount
	net := amount - fee

	// Zero destination price is a defined edge case, not an error: pass the
	// net amount through unconverted.
	rate := 1.0
	destAmount := net
	if destPrice != 0 {
		rate = sourcePrice / destPrice
		destAmount = net * rate
	}

	e.logger.DebugWithChain(string(sourceChain), "Quoted %f %s -> %s/%s: fee %d bps, dest %f",
		amount, sourceToken, destChain, destToken, feeBps, destAmount)
	metrics.QuotesIssued.WithLabelValues(string(sourceChain)).Inc()

	return Result{
		Quote: models.Quote{
			SourceAmount:      Round6(amount),
			DestinationAmount: Round6(destAmount),
			FeeAmount:         Round6(fee),
			FeeCurrency:       string(sourceToken),
			Rate:              rate,
			ExpiresAt:         time.Now().Add(QuoteTTL),
		},
		FeeBps:              feeBps,
		SourceUsdPrice:      sourcePrice,
		DestinationUsdPrice: destPrice,
		SourceAmountUSD:     Round2(amount * sourcePrice),
	}, nil
}

// SanitizeAmount normalizes a requested amount against an intent's
// available balance: non-finite and non-positive amounts become zero, and
// anything above the available balance is capped, not rejected.
func SanitizeAmount(amount, availableAmount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0
	}
	if amount > availableAmount {
		return availableAmount
	}
	return amount
}

// Round6 rounds token amounts to 6 decimal places
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Round2 rounds USD display values to 2 decimal places
func Round2(v float64) float64 {
	return math.Round(v*1e2) / 1e2
}
