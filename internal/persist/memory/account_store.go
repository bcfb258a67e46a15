// Package memory implements domain.AccountStore in process memory. It is the
// default backend and the one the test suite runs against.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/suilfg/marketsim/internal/domain"
)

// AccountStore keeps one serialized record per wallet identity, mirroring
// the text-blob layout of the durable backends so round-trip behavior is
// identical.
type AccountStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{records: make(map[string][]byte)}
}

// Load returns the record stored for the wallet. Missing and malformed
// records both surface as domain.ErrNotFound so the caller cold-starts the
// account.
func (s *AccountStore) Load(ctx context.Context, wallet string) (domain.AccountRecord, error) {
	s.mu.RLock()
	data, ok := s.records[wallet]
	s.mu.RUnlock()
	if !ok {
		return domain.AccountRecord{}, domain.ErrNotFound
	}

	var rec domain.AccountRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.AccountRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

// Save overwrites the wallet's record.
func (s *AccountStore) Save(ctx context.Context, wallet string, rec domain.AccountRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[wallet] = data
	s.mu.Unlock()
	return nil
}

// PutRaw stores an arbitrary payload under the wallet key. Tests use it to
// simulate corrupt persisted data.
func (s *AccountStore) PutRaw(wallet string, data []byte) {
	s.mu.Lock()
	s.records[wallet] = append([]byte(nil), data...)
	s.mu.Unlock()
}

// Compile-time interface check.
var _ domain.AccountStore = (*AccountStore)(nil)
