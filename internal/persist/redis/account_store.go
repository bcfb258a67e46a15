package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/suilfg/marketsim/internal/domain"
)

const accountKeyPrefix = "account:"

// AccountStore persists account records as JSON strings keyed by wallet
// identity. Records have no TTL: an identity's balances survive until it
// explicitly overwrites them.
type AccountStore struct {
	client *Client
	logger *slog.Logger
}

var _ domain.AccountStore = (*AccountStore)(nil)

// NewAccountStore creates an account store backed by the given client.
func NewAccountStore(client *Client, logger *slog.Logger) *AccountStore {
	return &AccountStore{
		client: client,
		logger: logger.With(slog.String("component", "redis_account_store")),
	}
}

func accountKey(wallet string) string {
	return accountKeyPrefix + wallet
}

// Load fetches the persisted record for a wallet. Missing keys and records
// that no longer parse both report domain.ErrNotFound, so a corrupt entry
// degrades to a fresh-identity cold start instead of an outage.
func (s *AccountStore) Load(ctx context.Context, wallet string) (domain.AccountRecord, error) {
	raw, err := s.client.rdb.Get(ctx, accountKey(wallet)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.AccountRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.AccountRecord{}, fmt.Errorf("redis: load account %s: %w", wallet, err)
	}

	var rec domain.AccountRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn("discarding malformed account record",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		return domain.AccountRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

// Save overwrites the persisted record for a wallet.
func (s *AccountStore) Save(ctx context.Context, wallet string, rec domain.AccountRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: marshal account %s: %w", wallet, err)
	}
	if err := s.client.rdb.Set(ctx, accountKey(wallet), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis: save account %s: %w", wallet, err)
	}
	return nil
}
