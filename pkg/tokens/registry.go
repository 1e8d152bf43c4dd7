package tokens

import (
	"fmt"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
)

// Info describes a token deployment on a specific chain
type Info struct {
	Address          string
	Decimals         int
	FallbackPriceUSD float64
}

// registry is the compiled (chain, token) table. Entries missing from this
// table are a configuration error caught by Validate at startup, not a
// runtime condition.
var registry = map[chains.Chain]map[chains.Token]Info{
	chains.Ethereum: {
		chains.USDC: {Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Decimals: 6, FallbackPriceUSD: 1.0},
		chains.USDT: {Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Decimals: 6, FallbackPriceUSD: 1.0},
	},
	chains.Arbitrum: {
		chains.USDC: {Address: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", Decimals: 6, FallbackPriceUSD: 1.0},
		chains.USDT: {Address: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9", Decimals: 6, FallbackPriceUSD: 1.0},
	},
	chains.Solana: {
		chains.USDC: {Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6, FallbackPriceUSD: 1.0},
		chains.USDT: {Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6, FallbackPriceUSD: 1.0},
	},
	chains.Monad: {
		chains.USDC: {Address: "0xf817257fed379853cDe0fa4F97AB987181B1E5Ea", Decimals: 6, FallbackPriceUSD: 1.0},
		chains.USDT: {Address: "0x88b8E2161DEDC77EF4ab7585569D2415a1C1055D", Decimals: 6, FallbackPriceUSD: 1.0},
		chains.MON:  {Address: "0x760AfE86e5de5fa0Ee542fc7B7B713e1c5425701", Decimals: 18, FallbackPriceUSD: 2.5},
	},
}

// supportedTokens lists the tokens discoverable on each chain
var supportedTokens = map[chains.Chain][]chains.Token{
	chains.Ethereum: {chains.USDC, chains.USDT},
	chains.Arbitrum: {chains.USDC, chains.USDT},
	chains.Solana:   {chains.USDC, chains.USDT},
	chains.Monad:    {chains.USDC, chains.USDT, chains.MON},
}

// Describe returns the registry entry for a (chain, token) pair
func Describe(chain chains.Chain, token chains.Token) (Info, error) {
	chainTokens, exists := registry[chain]
	if !exists {
		return Info{}, fmt.Errorf("no token registry for chain %s", chain)
	}
	info, exists := chainTokens[token]
	if !exists {
		return Info{}, fmt.Errorf("token %s not registered on chain %s", token, chain)
	}
	return info, nil
}

// SupportedTokens returns the tokens discoverable on a chain
func SupportedTokens(chain chains.Chain) []chains.Token {
	return supportedTokens[chain]
}

// Validate enumerates every supported (chain, token) pair and fails if any
// entry is missing or malformed. Run at startup.
func Validate() error {
	for _, chain := range chains.ChainList {
		tokenList, exists := supportedTokens[chain]
		if !exists {
			return fmt.Errorf("no supported token list for chain %s", chain)
		}
		for _, token := range tokenList {
			info, err := Describe(chain, token)
			if err != nil {
				return err
			}
			if info.Address == "" {
				return fmt.Errorf("missing address for %s on %s", token, chain)
			}
			if info.Decimals <= 0 {
				return fmt.Errorf("invalid decimals for %s on %s", token, chain)
			}
			if info.FallbackPriceUSD <= 0 {
				return fmt.Errorf("invalid fallback price for %s on %s", token, chain)
			}
		}
	}
	return nil
}

// PriceKey returns the price feed key for a (chain, token) pair, keyed by
// the on-chain contract address.
func PriceKey(chain chains.Chain, token chains.Token) (string, error) {
	info, err := Describe(chain, token)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s", chain, info.Address), nil
}
