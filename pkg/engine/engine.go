// Package engine is the facade over discovery, quoting, allowance
// enforcement, and submission. Upstream failures degrade through fallback
// layers here; only policy violations surface to the caller as errors.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/monbridge-hq/bridge-engine/pkg/allowance"
	"github.com/monbridge-hq/bridge-engine/pkg/catalog"
	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/executor"
	"github.com/monbridge-hq/bridge-engine/pkg/logger"
	"github.com/monbridge-hq/bridge-engine/pkg/metrics"
	"github.com/monbridge-hq/bridge-engine/pkg/models"
	"github.com/monbridge-hq/bridge-engine/pkg/quote"
	"github.com/monbridge-hq/bridge-engine/pkg/store"
)

// smallTransferFraction pre-classifies dust-sized transfers: anything at or
// below this fraction of the intent's available balance starts out awaiting
// its source funds rather than settlement.
const smallTransferFraction = 0.10

// Discoverer runs live balance discovery for a wallet provider
type Discoverer interface {
	Discover(ctx context.Context, provider chains.Provider, address string, requested []chains.Chain) (models.DiscoveryResult, error)
}

// Quoter prices a prospective transfer
type Quoter interface {
	Quote(ctx context.Context, sourceChain chains.Chain, sourceToken chains.Token,
		destChain chains.Chain, destToken chains.Token, amount float64, feeBpsOverride int,
	) (quote.Result, error)
}

// Session identifies the caller of a submission
type Session struct {
	ID        string
	AccountID string
}

// Engine wires the bridge intent pipeline together
type Engine struct {
	discoverer Discoverer
	catalog    *catalog.Catalog
	quoter     Quoter
	enforcer   *allowance.Enforcer
	store      store.AccountStore
	executor   executor.Executor
	logger     logger.Logger
}

// New creates the engine facade
func New(
	discoverer Discoverer,
	cat *catalog.Catalog,
	quoter Quoter,
	enforcer *allowance.Enforcer,
	accountStore store.AccountStore,
	exec executor.Executor,
	log logger.Logger,
) *Engine {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Engine{
		discoverer: discoverer,
		catalog:    cat,
		quoter:     quoter,
		enforcer:   enforcer,
		store:      accountStore,
		executor:   exec,
		logger:     log,
	}
}

// DiscoverBalances returns the provider's intents, degrading from live
// discovery to the re-priced static catalog to the catalog's baked-in
// values. A live result with no intents degrades the same way a failed one
// does: the caller always receives something actionable. Degradation is
// logged and counted, never surfaced; only a bad request errors.
func (e *Engine) DiscoverBalances(ctx context.Context, provider chains.Provider, address string, requested []chains.Chain) (models.DiscoveryResult, error) {
	if address == "" {
		return models.DiscoveryResult{}, fmt.Errorf("%w: missing account address", models.ErrInvalidAddress)
	}

	live, err := e.discoverer.Discover(ctx, provider, address, requested)
	if err == nil && len(live.Intents) > 0 {
		return live, nil
	}
	if err != nil {
		if errors.Is(err, models.ErrInvalidAddress) {
			return models.DiscoveryResult{}, err
		}
		e.logger.Notice("Live discovery failed for %s: %v", provider, err)
	} else {
		e.logger.Notice("Live discovery found no balances for %s, serving catalog intents", provider)
	}

	repriced, err := e.repricedFallback(ctx, provider)
	if err == nil {
		metrics.DegradedDiscoveries.WithLabelValues("catalog_repriced").Inc()
		return repriced, nil
	}
	e.logger.Notice("Failed to re-price catalog intents for %s: %v", provider, err)

	metrics.DegradedDiscoveries.WithLabelValues("catalog_static").Inc()
	return e.staticFallback(provider), nil
}

// repricedFallback serves the static catalog with live USD values
func (e *Engine) repricedFallback(ctx context.Context, provider chains.Provider) (models.DiscoveryResult, error) {
	intents := e.catalog.FallbackIntents(provider)
	repriced := make([]models.Intent, 0, len(intents))
	for _, intent := range intents {
		result, err := e.quoter.Quote(ctx, intent.SourceChain, intent.SourceToken,
			intent.DestinationChain, intent.DestinationToken, intent.AvailableAmount, intent.FeeBps)
		if err != nil {
			return models.DiscoveryResult{}, fmt.Errorf("failed to re-price catalog intent %s: %v", intent.ID, err)
		}
		intent.USDValue = result.SourceAmountUSD
		repriced = append(repriced, intent)
	}
	return models.DiscoveryResult{
		ActiveChains: distinctSourceChains(repriced),
		Intents:      repriced,
	}, nil
}

// staticFallback serves the catalog exactly as compiled, baked-in USD
// values included. The last rung: it cannot fail.
func (e *Engine) staticFallback(provider chains.Provider) models.DiscoveryResult {
	intents := e.catalog.FallbackIntents(provider)
	return models.DiscoveryResult{
		ActiveChains: distinctSourceChains(intents),
		Intents:      intents,
	}
}

// Quote prices a transfer against a catalog or discovered intent and
// pre-checks it against the account's sponsorship allowance
func (e *Engine) Quote(ctx context.Context, accountID string, intentID string, amount float64) (models.Quote, error) {
	intent, err := e.catalog.Resolve(intentID)
	if err != nil {
		return models.Quote{}, err
	}

	sanitized := quote.SanitizeAmount(amount, intent.AvailableAmount)
	if sanitized == 0 {
		return models.Quote{}, fmt.Errorf("%w: %v", models.ErrInvalidAmount, amount)
	}

	result, err := e.quoter.Quote(ctx, intent.SourceChain, intent.SourceToken,
		intent.DestinationChain, intent.DestinationToken, sanitized, intent.FeeBps)
	if err != nil {
		return models.Quote{}, err
	}

	if err := e.assertAllowance(accountID, result.SourceAmountUSD); err != nil {
		return models.Quote{}, err
	}

	quoted := result.Quote
	quoted.IntentID = intentID
	return quoted, nil
}

// Submit drives an intent submission through its lifecycle: a fresh record
// is created, the executor is called once, and the executor's verdict is
// persisted. An executor failure is a failed submission, not an error.
func (e *Engine) Submit(ctx context.Context, session Session, intentID string, amount float64) (models.SubmitResult, error) {
	timer := prometheus.NewTimer(metrics.SubmissionDuration)
	defer timer.ObserveDuration()

	intent, err := e.catalog.Resolve(intentID)
	if err != nil {
		return models.SubmitResult{}, err
	}

	sanitized := quote.SanitizeAmount(amount, intent.AvailableAmount)
	if sanitized == 0 {
		return models.SubmitResult{}, fmt.Errorf("%w: %v", models.ErrInvalidAmount, amount)
	}

	result, err := e.quoter.Quote(ctx, intent.SourceChain, intent.SourceToken,
		intent.DestinationChain, intent.DestinationToken, sanitized, intent.FeeBps)
	if err != nil {
		return models.SubmitResult{}, err
	}

	if err := e.assertAllowance(session.AccountID, result.SourceAmountUSD); err != nil {
		return models.SubmitResult{}, err
	}

	// Every submission gets its own record; resubmitting the same intent id
	// appends to the audit trail rather than mutating history.
	record := models.BridgeIntentRecord{
		IntentID:                   uuid.NewString(),
		SourceChain:                intent.SourceChain,
		SourceToken:                intent.SourceToken,
		DestinationChain:           intent.DestinationChain,
		DestinationToken:           intent.DestinationToken,
		Amount:                     sanitized,
		WalletProvider:             providerOf(intentID),
		FeeBps:                     result.FeeBps,
		SourceUsdPrice:             result.SourceUsdPrice,
		DestinationUsdPrice:        result.DestinationUsdPrice,
		EstimatedDestinationAmount: result.Quote.DestinationAmount,
		Status:                     models.StatusCreated,
		SessionID:                  session.ID,
		AccountID:                  session.AccountID,
		CreatedAt:                  time.Now(),
	}
	if err := e.store.UpsertIntent(record); err != nil {
		return models.SubmitResult{}, fmt.Errorf("failed to persist intent record: %v", err)
	}

	// Dust-sized transfers wait on their source funds first
	if sanitized <= smallTransferFraction*intent.AvailableAmount {
		record.Status = models.StatusPendingSource
		if err := e.store.UpsertIntent(record); err != nil {
			return models.SubmitResult{}, fmt.Errorf("failed to persist intent record: %v", err)
		}
	}

	transfer, err := e.executor.SubmitTransfer(ctx, executor.TransferRequest{
		IntentID:         record.IntentID,
		SourceChain:      intent.SourceChain,
		DestinationChain: intent.DestinationChain,
		Amount:           sanitized,
	})
	if err != nil {
		metrics.ExecutorErrors.Inc()
		e.logger.ErrorWithChain(string(intent.SourceChain), "Executor failed for intent %s: %v", record.IntentID, err)
		record.Status = models.StatusFailed
		if upsertErr := e.store.UpsertIntent(record); upsertErr != nil {
			return models.SubmitResult{}, fmt.Errorf("failed to persist intent record: %v", upsertErr)
		}
		metrics.SubmissionsTotal.WithLabelValues(string(models.StatusFailed)).Inc()
		return models.SubmitResult{
			IntentID: record.IntentID,
			Status:   models.StatusFailed,
		}, nil
	}

	record.Status = mapExecutorStatus(transfer.Status)
	if err := e.store.UpsertIntent(record); err != nil {
		return models.SubmitResult{}, fmt.Errorf("failed to persist intent record: %v", err)
	}

	metrics.SubmissionsTotal.WithLabelValues(string(record.Status)).Inc()
	e.logger.InfoWithChain(string(intent.SourceChain), "Submitted intent %s: %s (tx %s)",
		record.IntentID, record.Status, transfer.TxRef)

	return models.SubmitResult{
		IntentID: record.IntentID,
		TxRef:    transfer.TxRef,
		Status:   record.Status,
	}, nil
}

// GetIntentStatus returns the persisted record for a submitted intent
func (e *Engine) GetIntentStatus(intentID string) (models.BridgeIntentRecord, error) {
	return e.store.GetIntent(intentID)
}

// assertAllowance checks the account's sponsorship cap. A failed account
// lookup is logged and skipped; the allowance is a courtesy cap, not an
// authentication gate.
func (e *Engine) assertAllowance(accountID string, additionalUSD float64) error {
	if accountID == "" {
		return nil
	}
	account, err := e.store.GetAccount(accountID)
	if err != nil {
		e.logger.Error("Failed to load account %s for allowance check: %v", accountID, err)
		return nil
	}
	return e.enforcer.Assert(accountID, account.SponsorshipPlan.MonthlyAllowanceUSD, additionalUSD)
}

// mapExecutorStatus translates the executor's transfer status into the
// intent lifecycle status
func mapExecutorStatus(status executor.Status) models.IntentStatus {
	switch status {
	case executor.StatusAwaitingSource:
		return models.StatusPendingSource
	case executor.StatusPendingSettlement:
		return models.StatusPendingSettlement
	case executor.StatusSettled:
		return models.StatusSettled
	default:
		return models.StatusFailed
	}
}

// providerOf extracts the wallet provider from an addressable intent id
func providerOf(intentID string) chains.Provider {
	parts := strings.SplitN(intentID, ":", 2)
	provider, err := chains.ParseProvider(parts[0])
	if err != nil {
		return ""
	}
	return provider
}

// distinctSourceChains lists the source chains present in an intent set,
// preserving first-seen order
func distinctSourceChains(intents []models.Intent) []chains.Chain {
	seen := make(map[chains.Chain]bool, len(intents))
	distinct := make([]chains.Chain, 0, len(intents))
	for _, intent := range intents {
		if seen[intent.SourceChain] {
			continue
		}
		seen[intent.SourceChain] = true
		distinct = append(distinct, intent.SourceChain)
	}
	return distinct
}
