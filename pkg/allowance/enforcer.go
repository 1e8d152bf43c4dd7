package allowance

import (
	"fmt"
	"time"

	"github.com/monbridge-hq/bridge-engine/pkg/logger"
	"github.com/monbridge-hq/bridge-engine/pkg/metrics"
	"github.com/monbridge-hq/bridge-engine/pkg/models"
)

// usdTolerance absorbs floating-point drift when comparing against the cap
const usdTolerance = 0.01

// IntentLister is the slice of the account store the enforcer needs
type IntentLister interface {
	ListIntents(accountID string, since time.Time) ([]models.BridgeIntentRecord, error)
}

// Enforcer checks submissions against a rolling-month USD sponsorship cap.
// The spend is recomputed from the intent ledger on every check rather than
// kept as a counter, so it cannot drift from the actual intent history. The
// scan is bounded to one account-month.
type Enforcer struct {
	intents IntentLister
	logger  logger.Logger
	now     func() time.Time
}

// NewEnforcer creates a new allowance enforcer
func NewEnforcer(intents IntentLister, log logger.Logger) *Enforcer {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Enforcer{
		intents: intents,
		logger:  log,
		now:     time.Now,
	}
}

// SetClock overrides the time source, for tests
func (e *Enforcer) SetClock(now func() time.Time) {
	e.now = now
}

// Assert checks whether an additional USD spend fits within the account's
// plan allowance for the current calendar month. A zero plan allowance
// means the account is self-managed and enforcement is a no-op.
func (e *Enforcer) Assert(accountID string, planAllowanceUSD, additionalUSD float64) error {
	if planAllowanceUSD <= 0 {
		return nil
	}

	spent, err := e.monthToDateSpend(accountID)
	if err != nil {
		// The ledger itself failing is not a policy violation; let the
		// submission through rather than blocking on a broken store read.
		e.logger.Error("Failed to compute month-to-date spend for account %s: %v", accountID, err)
		return nil
	}

	if spent+additionalUSD > planAllowanceUSD+usdTolerance {
		metrics.AllowanceRejections.Inc()
		if spent > planAllowanceUSD+usdTolerance {
			return fmt.Errorf("%w: monthly sponsorship allowance of $%.2f already used ($%.2f spent), wait for the next cycle",
				models.ErrAllowanceExceeded, planAllowanceUSD, spent)
		}
		return fmt.Errorf("%w: transfer of $%.2f would exceed the $%.2f monthly sponsorship allowance ($%.2f spent), upgrade plan",
			models.ErrAllowanceExceeded, additionalUSD, planAllowanceUSD, spent)
	}

	return nil
}

// monthToDateSpend sums amount * sourceUsdPrice over the account's
// non-failed intents created since the start of the current calendar month
func (e *Enforcer) monthToDateSpend(accountID string) (float64, error) {
	records, err := e.intents.ListIntents(accountID, startOfMonth(e.now()))
	if err != nil {
		return 0, err
	}

	var total float64
	for _, record := range records {
		if record.Status == models.StatusFailed {
			continue
		}
		total += record.Amount * record.SourceUsdPrice
	}
	return total, nil
}

// startOfMonth returns the first instant of t's calendar month in t's location
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
