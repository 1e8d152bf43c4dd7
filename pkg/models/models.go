package models

import (
	"time"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
)

// Intent describes a proposed source->destination asset movement with
// pricing metadata. Catalog intents are permanent; discovered intents are
// synthesized from live balances and live only until the next discovery
// call for their provider.
type Intent struct {
	ID               string       `json:"id"`
	SourceChain      chains.Chain `json:"source_chain"`
	SourceToken      chains.Token `json:"source_token"`
	DestinationChain chains.Chain `json:"destination_chain"`
	DestinationToken chains.Token `json:"destination_token"`
	AvailableAmount  float64      `json:"available_amount"`
	USDValue         float64      `json:"usd_value"`
	FeeBps           int          `json:"fee_bps"`
	ETAMinutes       int          `json:"eta_minutes"`
}

// Quote is a time-boxed, non-binding price projection for executing an
// intent at a given amount. It carries no side effects until submission.
type Quote struct {
	IntentID          string    `json:"intent_id"`
	SourceAmount      float64   `json:"source_amount"`
	DestinationAmount float64   `json:"destination_amount"`
	FeeAmount         float64   `json:"fee_amount"`
	FeeCurrency       string    `json:"fee_currency"`
	Rate              float64   `json:"rate"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// IntentStatus is the lifecycle status of a persisted bridge intent
type IntentStatus string

const (
	StatusCreated           IntentStatus = "created"
	StatusPendingSource     IntentStatus = "pending_source"
	StatusPendingSettlement IntentStatus = "pending_settlement"
	StatusSettled           IntentStatus = "settled"
	StatusFailed            IntentStatus = "failed"
)

// BridgeIntentRecord is the persisted snapshot of a submitted intent.
// Records are upserted keyed by IntentID and never deleted.
type BridgeIntentRecord struct {
	IntentID                   string          `json:"intent_id"`
	SourceChain                chains.Chain    `json:"source_chain"`
	SourceToken                chains.Token    `json:"source_token"`
	DestinationChain           chains.Chain    `json:"destination_chain"`
	DestinationToken           chains.Token    `json:"destination_token"`
	Amount                     float64         `json:"amount"`
	WalletProvider             chains.Provider `json:"wallet_provider"`
	FeeBps                     int             `json:"fee_bps"`
	SourceUsdPrice             float64         `json:"source_usd_price"`
	DestinationUsdPrice        float64         `json:"destination_usd_price"`
	EstimatedDestinationAmount float64         `json:"estimated_destination_amount"`
	Status                     IntentStatus    `json:"status"`
	SessionID                  string          `json:"session_id,omitempty"`
	AccountID                  string          `json:"account_id,omitempty"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// DiscoveryResult is the outcome of a balance discovery call.
// ActiveChains lists the chains that yielded at least one intent; when no
// chain did, it echoes the chains that were searched.
type DiscoveryResult struct {
	ActiveChains []chains.Chain `json:"active_chains"`
	Intents      []Intent       `json:"intents"`
}

// SubmitResult is returned to the caller after a submission attempt.
// A failed executor call is reported here as a failed status, not an error.
type SubmitResult struct {
	IntentID string       `json:"intent_id"`
	TxRef    string       `json:"tx_ref"`
	Status   IntentStatus `json:"status"`
}
