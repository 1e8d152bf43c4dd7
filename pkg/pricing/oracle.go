package pricing

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/logger"
	"github.com/monbridge-hq/bridge-engine/pkg/metrics"
	"github.com/monbridge-hq/bridge-engine/pkg/tokens"
)

// Feed is the upstream price source contract
type Feed interface {
	GetUsdPrice(ctx context.Context, key string) (float64, error)
}

// Oracle resolves USD prices for (chain, token) pairs. A live lookup is
// attempted against the feed; any failure falls back to the registry's
// static price. Price staleness is an acceptable degradation, total
// unavailability of pricing is not, so Price never fails the caller.
type Oracle struct {
	feed    Feed
	cache   *PriceCache
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewOracle creates a new price oracle
func NewOracle(feed Feed, cacheTTL time.Duration, feedRPS float64, log logger.Logger) *Oracle {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	if feedRPS <= 0 {
		feedRPS = 5
	}
	return &Oracle{
		feed:    feed,
		cache:   NewPriceCache(cacheTTL),
		limiter: rate.NewLimiter(rate.Limit(feedRPS), 1),
		logger:  log,
	}
}

// Price returns the USD price for a (chain, token) pair
func (o *Oracle) Price(ctx context.Context, chain chains.Chain, token chains.Token) float64 {
	key, err := tokens.PriceKey(chain, token)
	if err != nil {
		// Unregistered pair: nothing to price against, degrade to zero
		o.logger.ErrorWithChain(string(chain), "No price key for token %s: %v", token, err)
		return 0
	}

	if price, ok := o.cache.Get(key); ok {
		return price
	}

	price, err := o.fetchLive(ctx, key)
	if err != nil {
		o.logger.DebugWithChain(string(chain), "Price feed lookup failed for %s, using fallback: %v", token, err)
		metrics.PriceFallbacks.WithLabelValues(string(chain), string(token)).Inc()
		return o.fallbackPrice(chain, token)
	}

	o.cache.Set(key, price)
	return price
}

// fetchLive performs a rate-limited lookup against the feed
func (o *Oracle) fetchLive(ctx context.Context, key string) (float64, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return o.feed.GetUsdPrice(ctx, key)
}

// fallbackPrice returns the registry's static price for the pair
func (o *Oracle) fallbackPrice(chain chains.Chain, token chains.Token) float64 {
	info, err := tokens.Describe(chain, token)
	if err != nil {
		return 0
	}
	return info.FallbackPriceUSD
}
