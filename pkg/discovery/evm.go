package discovery

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const erc20BalanceOfABI = `[
	{
		"constant": true,
		"inputs": [
			{
				"name": "_owner",
				"type": "address"
			}
		],
		"name": "balanceOf",
		"outputs": [
			{
				"name": "",
				"type": "uint256"
			}
		],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	}
]`

// EVMClient reads ERC20 balances over an EVM JSON-RPC endpoint
type EVMClient struct {
	client   *ethclient.Client
	erc20ABI abi.ABI
}

var _ EVMBalanceSource = (*EVMClient)(nil)

// NewEVMClient connects to an EVM RPC endpoint
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to client: %v", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20BalanceOfABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %v", err)
	}

	return &EVMClient{
		client:   client,
		erc20ABI: parsedABI,
	}, nil
}

// GetTokenBalances returns the raw balance of each token contract for an owner
func (c *EVMClient) GetTokenBalances(ctx context.Context, address string, tokenAddresses []string) ([]TokenBalance, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid owner address: %s", address)
	}
	owner := common.HexToAddress(address)

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	balances := make([]TokenBalance, 0, len(tokenAddresses))
	for _, tokenAddress := range tokenAddresses {
		contract := bind.NewBoundContract(
			common.HexToAddress(tokenAddress),
			c.erc20ABI,
			c.client,
			c.client,
			c.client,
		)

		var out []interface{}
		callOpts := &bind.CallOpts{Context: timeoutCtx}
		if err := contract.Call(callOpts, &out, "balanceOf", owner); err != nil {
			return nil, fmt.Errorf("failed to read balance for token %s: %v", tokenAddress, err)
		}

		if len(out) == 0 || out[0] == nil {
			return nil, fmt.Errorf("empty result from balanceOf call for token %s", tokenAddress)
		}
		balance, ok := out[0].(*big.Int)
		if !ok {
			return nil, fmt.Errorf("invalid balanceOf result type for token %s", tokenAddress)
		}

		balances = append(balances, TokenBalance{
			TokenAddress:  tokenAddress,
			RawBalanceHex: "0x" + balance.Text(16),
		})
	}

	return balances, nil
}
