package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suilfg/marketsim/internal/domain"
)

// AccountStore persists account records in the accounts table, one row per
// wallet identity with positions stored as JSONB.
type AccountStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ domain.AccountStore = (*AccountStore)(nil)

// NewAccountStore creates an account store backed by the given connection pool.
func NewAccountStore(pool *pgxpool.Pool, logger *slog.Logger) *AccountStore {
	return &AccountStore{
		pool:   pool,
		logger: logger.With(slog.String("component", "postgres_account_store")),
	}
}

// Load fetches the persisted record for a wallet. A missing row or a
// positions column that no longer parses both report domain.ErrNotFound.
func (s *AccountStore) Load(ctx context.Context, wallet string) (domain.AccountRecord, error) {
	const query = `
		SELECT usdc_balance, positions, has_claimed_today, last_claim_timestamp
		FROM accounts WHERE wallet = $1`

	var (
		rec          domain.AccountRecord
		rawPositions []byte
	)
	err := s.pool.QueryRow(ctx, query, wallet).Scan(
		&rec.USDCBalance, &rawPositions, &rec.HasClaimedToday, &rec.LastClaimTimestamp,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AccountRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.AccountRecord{}, fmt.Errorf("postgres: load account %s: %w", wallet, err)
	}

	if err := json.Unmarshal(rawPositions, &rec.Positions); err != nil {
		s.logger.Warn("discarding malformed account record",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		return domain.AccountRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

// Save upserts the persisted record for a wallet.
func (s *AccountStore) Save(ctx context.Context, wallet string, rec domain.AccountRecord) error {
	positions := rec.Positions
	if positions == nil {
		positions = []domain.Position{}
	}
	rawPositions, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("postgres: marshal positions for %s: %w", wallet, err)
	}

	const query = `
		INSERT INTO accounts (wallet, usdc_balance, positions, has_claimed_today, last_claim_timestamp, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (wallet) DO UPDATE SET
			usdc_balance         = EXCLUDED.usdc_balance,
			positions            = EXCLUDED.positions,
			has_claimed_today    = EXCLUDED.has_claimed_today,
			last_claim_timestamp = EXCLUDED.last_claim_timestamp,
			updated_at           = NOW()`

	if _, err := s.pool.Exec(ctx, query,
		wallet, rec.USDCBalance, rawPositions, rec.HasClaimedToday, rec.LastClaimTimestamp,
	); err != nil {
		return fmt.Errorf("postgres: save account %s: %w", wallet, err)
	}
	return nil
}
