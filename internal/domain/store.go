package domain

import "context"

// AccountStore persists one AccountRecord per wallet identity. Load returns
// ErrNotFound when no record exists for the identity; implementations treat
// malformed stored data the same way so a corrupt record cold-starts the
// account instead of failing it.
type AccountStore interface {
	Load(ctx context.Context, wallet string) (AccountRecord, error)
	Save(ctx context.Context, wallet string, rec AccountRecord) error
}

// Snapshot is a consistent, immutable view of the whole engine state. Every
// mutation produces a new snapshot; observers never see a partial update.
type Snapshot struct {
	Markets  []Market           `json:"markets"`
	Accounts map[string]Account `json:"accounts"`
	TakenAt  int64              `json:"takenAt"` // epoch millis
}

// Market returns the snapshot's copy of a market, if present.
func (s Snapshot) Market(id string) (Market, bool) {
	for _, m := range s.Markets {
		if m.ID == id {
			return m, true
		}
	}
	return Market{}, false
}

// Account returns the snapshot's copy of an account, if bound.
func (s Snapshot) Account(wallet string) (Account, bool) {
	a, ok := s.Accounts[wallet]
	return a, ok
}
