package chains

import "fmt"

// Chain identifies a supported blockchain.
type Chain string

const (
	Ethereum Chain = "ethereum"
	Arbitrum Chain = "arbitrum"
	Solana   Chain = "solana"
	Monad    Chain = "monad"
)

// ChainList contains the list of supported chains
var ChainList = []Chain{
	Ethereum,
	Arbitrum,
	Solana,
	Monad,
}

// HomeChain is the settlement chain discovered intents bridge into by default
const HomeChain = Monad

// chainNames maps chains to their display names
var chainNames = map[Chain]string{
	Ethereum: "ETHEREUM",
	Arbitrum: "ARBITRUM",
	Solana:   "SOLANA",
	Monad:    "MONAD",
}

// ParseChain converts a string to a Chain, rejecting anything outside the supported set
func ParseChain(s string) (Chain, error) {
	switch Chain(s) {
	case Ethereum, Arbitrum, Solana, Monad:
		return Chain(s), nil
	}
	return "", fmt.Errorf("unsupported chain: %s", s)
}

// GetChainName returns the display name of the chain
func GetChainName(chain Chain) string {
	name, exists := chainNames[chain]
	if !exists {
		return ""
	}
	return name
}

// IsEVM reports whether the chain exposes an EVM-style token balance RPC.
// Solana is the only account-model chain in the supported set.
func (c Chain) IsEVM() bool {
	switch c {
	case Ethereum, Arbitrum, Monad:
		return true
	case Solana:
		return false
	}
	return false
}

// Token identifies a supported asset.
type Token string

const (
	USDC Token = "usdc"
	USDT Token = "usdt"
	MON  Token = "mon"
)

// TokenList contains the list of supported tokens
var TokenList = []Token{
	USDC,
	USDT,
	MON,
}

// ParseToken converts a string to a Token
func ParseToken(s string) (Token, error) {
	switch Token(s) {
	case USDC, USDT, MON:
		return Token(s), nil
	}
	return "", fmt.Errorf("unsupported token: %s", s)
}

// Provider identifies a supported wallet provider.
type Provider string

const (
	Metamask Provider = "metamask"
	Phantom  Provider = "phantom"
	Backpack Provider = "backpack"
)

// ProviderList contains the list of supported wallet providers
var ProviderList = []Provider{
	Metamask,
	Phantom,
	Backpack,
}

// ParseProvider converts a string to a Provider
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case Metamask, Phantom, Backpack:
		return Provider(s), nil
	}
	return "", fmt.Errorf("unsupported wallet provider: %s", s)
}
