package health

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monbridge-hq/bridge-engine/pkg/allowance"
	"github.com/monbridge-hq/bridge-engine/pkg/catalog"
	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/engine"
	"github.com/monbridge-hq/bridge-engine/pkg/executor"
	"github.com/monbridge-hq/bridge-engine/pkg/models"
	"github.com/monbridge-hq/bridge-engine/pkg/quote"
	"github.com/monbridge-hq/bridge-engine/pkg/store"
)

type dollarPrices struct{}

func (d *dollarPrices) Price(_ context.Context, _ chains.Chain, _ chains.Token) float64 {
	return 1.0
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	memStore := store.NewMemoryStore()
	memStore.PutAccount(store.Account{ID: "acct-1"})

	quoter := quote.NewEngine(&dollarPrices{}, nil)

	eng := engine.New(
		failingDiscoverer{},
		catalog.New(),
		quoter,
		allowance.NewEnforcer(memStore, nil),
		memStore,
		executor.NewSimulatedExecutor(),
		nil,
	)

	rpcs := map[chains.Chain]string{
		chains.Ethereum: "https://eth.example",
		chains.Arbitrum: "https://arb.example",
		chains.Solana:   "https://sol.example",
		chains.Monad:    "https://monad.example",
	}
	return NewServer("0", eng, rpcs, nil, "", nil)
}

type failingDiscoverer struct{}

func (failingDiscoverer) Discover(_ context.Context, _ chains.Provider, _ string, _ []chains.Chain) (models.DiscoveryResult, error) {
	return models.DiscoveryResult{}, fmt.Errorf("no sources wired")
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsAuth(t *testing.T) {
	server := newTestServer(t)
	server.metricsAPIKey = "secret"
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDiscoverEndpointDegradesToCatalog(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	body, _ := json.Marshal(map[string]interface{}{
		"provider": "metamask",
		"address":  "0xowner",
	})
	resp, err := http.Post(ts.URL+"/api/v1/discover", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.DiscoveryResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotEmpty(t, result.Intents)
}

func TestDiscoverEndpointRejectsUnknownProvider(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	body, _ := json.Marshal(map[string]interface{}{
		"provider": "ledger",
		"address":  "0xowner",
	})
	resp, err := http.Post(ts.URL+"/api/v1/discover", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuoteEndpointErrorMapping(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	tests := []struct {
		name     string
		intentID string
		amount   float64
		want     int
	}{
		{name: "ok", intentID: "metamask:ethereum_usdc_to_monad_usdc", amount: 50, want: http.StatusOK},
		{name: "unknown intent", intentID: "metamask:nope", amount: 50, want: http.StatusNotFound},
		{name: "invalid amount", intentID: "metamask:ethereum_usdc_to_monad_usdc", amount: -1, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(quoteRequest{IntentID: tt.intentID, Amount: tt.amount})
			resp, err := http.Post(ts.URL+"/api/v1/quote", "application/json", bytes.NewReader(body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSubmitAndIntentStatusRoundTrip(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	body, _ := json.Marshal(submitRequest{
		SessionID: "sess-1",
		AccountID: "acct-1",
		IntentID:  "metamask:ethereum_usdc_to_monad_usdc",
		Amount:    50,
	})
	resp, err := http.Post(ts.URL+"/api/v1/submit", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.SubmitResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, models.StatusPendingSettlement, result.Status)
	assert.NotEmpty(t, result.TxRef)

	statusResp, err := http.Get(ts.URL + "/api/v1/intents/" + result.IntentID)
	require.NoError(t, err)
	defer statusResp.Body.Close()
	require.Equal(t, http.StatusOK, statusResp.StatusCode)

	var record models.BridgeIntentRecord
	require.NoError(t, json.NewDecoder(statusResp.Body).Decode(&record))
	assert.Equal(t, models.StatusPendingSettlement, record.Status)
	assert.Equal(t, 50.0, record.Amount)
}

func TestIntentStatusNotFound(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/intents/does-not-exist")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCircuitResetEndpoint(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	// No breaker registered for the chain
	resp, err := http.Post(ts.URL+"/circuit/reset?chain=ethereum", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/circuit/reset?chain=plasma", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
