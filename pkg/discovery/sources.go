package discovery

import "context"

// TokenBalance is a raw ERC20 balance as returned by an EVM-style chain
type TokenBalance struct {
	TokenAddress  string
	RawBalanceHex string
}

// EVMBalanceSource queries token balances on an EVM-style chain
type EVMBalanceSource interface {
	GetTokenBalances(ctx context.Context, address string, tokenAddresses []string) ([]TokenBalance, error)
}

// TokenAccount is a token account balance on an account-model chain
type TokenAccount struct {
	Amount   string
	Decimals int
}

// SolanaBalanceSource queries token accounts on Solana
type SolanaBalanceSource interface {
	GetTokenAccountsByOwner(ctx context.Context, owner string, mint string) ([]TokenAccount, error)
}
