package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monbridge-hq/bridge-engine/pkg/models"
)

func TestGetAccount(t *testing.T) {
	s := NewMemoryStore()
	s.PutAccount(Account{
		ID:              "acct-1",
		SponsorshipPlan: SponsorshipPlan{Name: "pro", MonthlyAllowanceUSD: 500},
	})

	account, err := s.GetAccount("acct-1")
	require.NoError(t, err)
	assert.Equal(t, 500.0, account.SponsorshipPlan.MonthlyAllowanceUSD)

	_, err = s.GetAccount("acct-2")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpsertIntentPreservesCreatedAt(t *testing.T) {
	s := NewMemoryStore()

	created := time.Now().Add(-time.Hour)
	require.NoError(t, s.UpsertIntent(models.BridgeIntentRecord{
		IntentID:  "intent-1",
		Status:    models.StatusCreated,
		CreatedAt: created,
	}))

	require.NoError(t, s.UpsertIntent(models.BridgeIntentRecord{
		IntentID:  "intent-1",
		Status:    models.StatusSettled,
		CreatedAt: time.Now(),
	}))

	record, err := s.GetIntent("intent-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSettled, record.Status)
	assert.WithinDuration(t, created, record.CreatedAt, time.Second)
	assert.False(t, record.UpdatedAt.IsZero())
}

func TestListIntentsFiltersByAccountAndTime(t *testing.T) {
	s := NewMemoryStore()
	cutoff := time.Now()

	require.NoError(t, s.UpsertIntent(models.BridgeIntentRecord{
		IntentID:  "old",
		AccountID: "acct-1",
		CreatedAt: cutoff.Add(-time.Hour),
	}))
	require.NoError(t, s.UpsertIntent(models.BridgeIntentRecord{
		IntentID:  "recent",
		AccountID: "acct-1",
		CreatedAt: cutoff.Add(time.Minute),
	}))
	require.NoError(t, s.UpsertIntent(models.BridgeIntentRecord{
		IntentID:  "other-account",
		AccountID: "acct-2",
		CreatedAt: cutoff.Add(time.Minute),
	}))

	records, err := s.ListIntents("acct-1", cutoff)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "recent", records[0].IntentID)
}

func TestGetIntentNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetIntent("missing")
	require.ErrorIs(t, err, models.ErrNotFound)
}
