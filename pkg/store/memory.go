package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/monbridge-hq/bridge-engine/pkg/models"
)

// MemoryStore is an in-memory AccountStore used by the daemon when no
// external store is wired, and by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
	intents  map[string]models.BridgeIntentRecord
}

var _ AccountStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
		intents:  make(map[string]models.BridgeIntentRecord),
	}
}

// PutAccount stores or replaces an account
func (s *MemoryStore) PutAccount(account Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
}

// GetAccount returns an account by id
func (s *MemoryStore) GetAccount(id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.accounts[id]
	if !exists {
		return Account{}, fmt.Errorf("account %s: %w", id, models.ErrNotFound)
	}
	return account, nil
}

// ListIntents returns the account's intent records created at or after since
func (s *MemoryStore) ListIntents(accountID string, since time.Time) ([]models.BridgeIntentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []models.BridgeIntentRecord
	for _, record := range s.intents {
		if record.AccountID != accountID {
			continue
		}
		if record.CreatedAt.Before(since) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// UpsertIntent creates or updates an intent record keyed by intent id
func (s *MemoryStore) UpsertIntent(record models.BridgeIntentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.intents[record.IntentID]
	if exists {
		record.CreatedAt = existing.CreatedAt
	}
	record.UpdatedAt = time.Now()
	s.intents[record.IntentID] = record
	return nil
}

// GetIntent returns an intent record by id
func (s *MemoryStore) GetIntent(intentID string) (models.BridgeIntentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.intents[intentID]
	if !exists {
		return models.BridgeIntentRecord{}, fmt.Errorf("intent %s: %w", intentID, models.ErrNotFound)
	}
	return record, nil
}
