package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suilfg/marketsim/internal/domain"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore()

	ts := int64(1735689600000)
	rec := domain.AccountRecord{
		USDCBalance: 123.45,
		Positions: []domain.Position{
			{MarketID: "bitcoin-200k", Outcome: domain.OutcomeYes, Shares: 100, AvgPrice: 0.65},
		},
		HasClaimedToday:    true,
		LastClaimTimestamp: &ts,
	}

	require.NoError(t, store.Save(ctx, "0xabc", rec))

	got, err := store.Load(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestIdentityIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore()

	require.NoError(t, store.Save(ctx, "0xaaa", domain.AccountRecord{USDCBalance: 50}))

	_, err := store.Load(ctx, "0xbbb")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMalformedRecordTreatedAsAbsent(t *testing.T) {
	store := NewAccountStore()
	store.PutRaw("0xabc", []byte("{not json"))

	_, err := store.Load(context.Background(), "0xabc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
