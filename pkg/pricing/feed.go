package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// FeedClient fetches USD prices from an external price feed keyed by
// on-chain contract address ("{chain}:{address}").
type FeedClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewFeedClient creates a new price feed client
func NewFeedClient(endpoint string) *FeedClient {
	return &FeedClient{
		endpoint: endpoint,
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

// GetUsdPrice fetches the current USD price for a chain-token key
func (c *FeedClient) GetUsdPrice(ctx context.Context, key string) (float64, error) {
	reqURL := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.endpoint, url.QueryEscape(key))

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch price: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price feed request failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %v", err)
	}

	var result map[string]map[string]float64
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("failed to parse JSON response: %v", err)
	}

	tokenData, exists := result[key]
	if !exists {
		return 0, fmt.Errorf("price key %s not found in response", key)
	}

	price, exists := tokenData["usd"]
	if !exists {
		return 0, fmt.Errorf("USD price not found in response")
	}

	return price, nil
}
