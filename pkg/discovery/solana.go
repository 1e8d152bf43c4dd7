package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SolanaClient reads SPL token balances over Solana JSON-RPC
type SolanaClient struct {
	rpcURL     string
	httpClient *http.Client
}

var _ SolanaBalanceSource = (*SolanaClient)(nil)

// NewSolanaClient creates a client for a Solana RPC endpoint
func NewSolanaClient(rpcURL string) *SolanaClient {
	return &SolanaClient{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type solanaRPCRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type solanaRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type tokenAccountsResponse struct {
	Result struct {
		Value []struct {
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							TokenAmount struct {
								Amount   string `json:"amount"`
								Decimals int    `json:"decimals"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	} `json:"result"`
	Error *solanaRPCError `json:"error"`
}

// GetTokenAccountsByOwner returns the owner's token accounts for a mint
func (c *SolanaClient) GetTokenAccountsByOwner(ctx context.Context, owner string, mint string) ([]TokenAccount, error) {
	rpcReq := solanaRPCRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "getTokenAccountsByOwner",
		Params: []interface{}{
			owner,
			map[string]string{"mint": mint},
			map[string]string{"encoding": "jsonParsed"},
		},
	}

	payload, err := json.Marshal(rpcReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode RPC request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create RPC request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query token accounts: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read RPC response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var rpcResp tokenAccountsResponse
	if err := json.Unmarshal(bodyBytes, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode RPC response: %v", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	accounts := make([]TokenAccount, 0, len(rpcResp.Result.Value))
	for _, entry := range rpcResp.Result.Value {
		tokenAmount := entry.Account.Data.Parsed.Info.TokenAmount
		accounts = append(accounts, TokenAccount{
			Amount:   tokenAmount.Amount,
			Decimals: tokenAmount.Decimals,
		})
	}

	return accounts, nil
}
