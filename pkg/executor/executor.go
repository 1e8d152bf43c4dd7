// Package executor provides clients for the external transfer executor,
// the system that actually moves value across chains and reports a status.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
)

// Status is the executor's view of a transfer in flight
type Status string

const (
	StatusAwaitingSource    Status = "awaiting_source"
	StatusPendingSettlement Status = "pending_settlement"
	StatusSettled           Status = "settled"
	StatusFailed            Status = "failed"
)

// TransferRequest asks the executor to move value for an intent
type TransferRequest struct {
	IntentID         string       `json:"intent_id"`
	SourceChain      chains.Chain `json:"source_chain"`
	DestinationChain chains.Chain `json:"destination_chain"`
	Amount           float64      `json:"amount"`
}

// TransferResult is the executor's response to a submission
type TransferResult struct {
	TxRef  string `json:"tx_ref"`
	Status Status `json:"status"`
}

// Executor is the transfer executor contract. Submissions are single-shot:
// the client's own timeout bounds the call and no retry loop exists above it.
type Executor interface {
	SubmitTransfer(ctx context.Context, req TransferRequest) (TransferResult, error)
}

// HTTPExecutor submits transfers to a remote executor service
type HTTPExecutor struct {
	endpoint   string
	httpClient *http.Client
}

var _ Executor = (*HTTPExecutor)(nil)

// NewHTTPExecutor creates an executor client for the given endpoint
func NewHTTPExecutor(endpoint string, timeout time.Duration) *HTTPExecutor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPExecutor{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SubmitTransfer submits a transfer and returns the executor's status
func (e *HTTPExecutor) SubmitTransfer(ctx context.Context, transferReq TransferRequest) (TransferResult, error) {
	payload, err := json.Marshal(transferReq)
	if err != nil {
		return TransferResult{}, fmt.Errorf("failed to encode transfer request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/api/v1/transfers", bytes.NewReader(payload))
	if err != nil {
		return TransferResult{}, fmt.Errorf("failed to create transfer request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return TransferResult{}, fmt.Errorf("failed to submit transfer: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransferResult{}, fmt.Errorf("failed to read transfer response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return TransferResult{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var result TransferResult
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return TransferResult{}, fmt.Errorf("failed to decode transfer response: %v", err)
	}

	switch result.Status {
	case StatusAwaitingSource, StatusPendingSettlement, StatusSettled, StatusFailed:
	default:
		return TransferResult{}, fmt.Errorf("unknown transfer status: %s", result.Status)
	}

	return result, nil
}

// SimulatedExecutor stands in for the real executor when no endpoint is
// configured. Same-chain transfers settle immediately; cross-chain
// transfers report pending settlement with a synthetic tx reference.
type SimulatedExecutor struct{}

var _ Executor = (*SimulatedExecutor)(nil)

// NewSimulatedExecutor creates a simulated executor
func NewSimulatedExecutor() *SimulatedExecutor {
	return &SimulatedExecutor{}
}

// SubmitTransfer simulates a transfer submission
func (e *SimulatedExecutor) SubmitTransfer(_ context.Context, req TransferRequest) (TransferResult, error) {
	status := StatusPendingSettlement
	if req.SourceChain == req.DestinationChain {
		status = StatusSettled
	}
	return TransferResult{
		TxRef:  "sim-" + uuid.NewString(),
		Status: status,
	}, nil
}
