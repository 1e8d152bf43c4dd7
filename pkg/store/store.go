package store

import (
	"time"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/models"
)

// SponsorshipPlan is a per-account monthly USD gas/fee allowance tier.
// A zero allowance means the account is self-managed and enforcement is
// skipped entirely.
type SponsorshipPlan struct {
	Name                string  `json:"name"`
	MonthlyAllowanceUSD float64 `json:"monthly_allowance_usd"`
}

// Account is the session/account store's view of an account
type Account struct {
	ID              string            `json:"id"`
	SponsorshipPlan SponsorshipPlan   `json:"sponsorship_plan"`
	LinkedProviders []chains.Provider `json:"linked_providers"`
}

// AccountStore is the contract consumed from the session/account system.
// Intents are append/upsert-only: UpsertIntent never deletes, forming an
// audit trail keyed by intent id.
type AccountStore interface {
	GetAccount(id string) (Account, error)
	ListIntents(accountID string, since time.Time) ([]models.BridgeIntentRecord, error)
	UpsertIntent(record models.BridgeIntentRecord) error
	GetIntent(intentID string) (models.BridgeIntentRecord, error)
}
