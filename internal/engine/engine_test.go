package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suilfg/marketsim/internal/catalog"
	"github.com/suilfg/marketsim/internal/domain"
	"github.com/suilfg/marketsim/internal/persist/memory"
	"github.com/suilfg/marketsim/internal/pricing"
)

const wallet = "0x00000000000000000000000000000000000000000000000000000000000000aa"

func testMarkets() []domain.Market {
	return []domain.Market{
		{
			ID:       "btc-200k",
			Title:    "Bitcoin > $200k",
			Category: domain.CategoryCrypto,
			Status:   domain.MarketStatusOpen,
			YesPrice: 0.50,
			NoPrice:  0.50,
		},
	}
}

// startEngine runs an engine for the duration of the test. Timings default
// to values long enough that background activity cannot interfere unless the
// test opts in.
func startEngine(t *testing.T, cfg Config, markets []domain.Market, store domain.AccountStore) *Engine {
	t.Helper()
	if store == nil {
		store = memory.NewAccountStore()
	}
	if cfg.DriftInterval == 0 {
		cfg.DriftInterval = time.Hour
	}
	if cfg.ApprovalDelay == 0 {
		cfg.ApprovalDelay = time.Hour
	}
	if cfg.RandSeed == 0 {
		cfg.RandSeed = 1
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := New(cfg, markets, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = e.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return e
}

func bindAndFund(t *testing.T, e *Engine, w string, amount float64) {
	t.Helper()
	ctx := context.Background()
	_, res := e.Bind(ctx, w)
	require.True(t, res.OK)
	if amount > 0 {
		require.True(t, e.Deposit(ctx, w, amount).OK)
	}
}

func TestBindCreatesDefaultAccount(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)

	acct, res := e.Bind(context.Background(), wallet)
	require.True(t, res.OK)
	assert.Equal(t, wallet, acct.Wallet)
	assert.Zero(t, acct.Balance)
	assert.Empty(t, acct.Positions)
	assert.False(t, acct.HasClaimedToday)
	assert.Nil(t, acct.LastClaimTimestamp)
}

func TestBuyAppliesBalanceLedgerAndImpact(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)
	ctx := context.Background()
	bindAndFund(t, e, wallet, 10000)

	res := e.Buy(ctx, wallet, "btc-200k", domain.OutcomeYes, 5000)
	require.True(t, res.OK)

	snap := e.Snapshot()
	m, ok := snap.Market("btc-200k")
	require.True(t, ok)
	assert.InDelta(t, 0.60, m.YesPrice, 1e-9)
	assert.InDelta(t, 0.40, m.NoPrice, 1e-9)
	assert.InDelta(t, 5000, m.TotalVolume, 1e-9)

	acct, ok := snap.Account(wallet)
	require.True(t, ok)
	assert.InDelta(t, 5000, acct.Balance, 1e-9)
	require.Len(t, acct.Positions, 1)
	assert.InDelta(t, 10000, acct.Positions[0].Shares, 1e-9)
	assert.InDelta(t, 0.50, acct.Positions[0].AvgPrice, 1e-9)
}

func TestBuyRejectionsLeaveStateUntouched(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)
	ctx := context.Background()
	bindAndFund(t, e, wallet, 100)
	before := e.Snapshot()

	cases := []struct {
		name   string
		res    domain.Result
		reason domain.Reason
	}{
		{"unbound wallet", e.Buy(ctx, "0xdead", "btc-200k", domain.OutcomeYes, 10), domain.ReasonUnknownAccount},
		{"insufficient balance", e.Buy(ctx, wallet, "btc-200k", domain.OutcomeYes, 100.01), domain.ReasonInsufficientBalance},
		{"unknown market", e.Buy(ctx, wallet, "no-such-market", domain.OutcomeYes, 10), domain.ReasonUnknownMarket},
		{"invalid outcome", e.Buy(ctx, wallet, "btc-200k", domain.Outcome("MAYBE"), 10), domain.ReasonInvalidOutcome},
		{"non-positive amount", e.Buy(ctx, wallet, "btc-200k", domain.OutcomeYes, 0), domain.ReasonInvalidAmount},
	}
	for _, tc := range cases {
		assert.False(t, tc.res.OK, tc.name)
		assert.Equal(t, tc.reason, tc.res.Reason, tc.name)
	}

	after := e.Snapshot()
	assert.Equal(t, before.Markets, after.Markets)
	assert.Equal(t, before.Accounts, after.Accounts)
}

func TestSellUsesPreTradePriceWithoutImpact(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)
	ctx := context.Background()
	bindAndFund(t, e, wallet, 5000)

	require.True(t, e.Buy(ctx, wallet, "btc-200k", domain.OutcomeYes, 5000).OK)
	// After the buy: yes=0.60, balance=0, 10000 shares @0.50.

	res := e.Sell(ctx, wallet, "btc-200k", domain.OutcomeYes, 4000)
	require.True(t, res.OK)

	snap := e.Snapshot()
	m, _ := snap.Market("btc-200k")
	// Sales do not move the market.
	assert.InDelta(t, 0.60, m.YesPrice, 1e-9)
	assert.InDelta(t, 5000, m.TotalVolume, 1e-9)

	acct, _ := snap.Account(wallet)
	assert.InDelta(t, 4000*0.60, acct.Balance, 1e-9)
	require.Len(t, acct.Positions, 1)
	assert.InDelta(t, 6000, acct.Positions[0].Shares, 1e-9)
	assert.InDelta(t, 0.50, acct.Positions[0].AvgPrice, 1e-9)
}

func TestSellDrainedPositionRemoved(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)
	ctx := context.Background()
	bindAndFund(t, e, wallet, 1000)
	require.True(t, e.Buy(ctx, wallet, "btc-200k", domain.OutcomeNo, 1000).OK)

	snap := e.Snapshot()
	acct, _ := snap.Account(wallet)
	require.Len(t, acct.Positions, 1)

	require.True(t, e.Sell(ctx, wallet, "btc-200k", domain.OutcomeNo, acct.Positions[0].Shares).OK)

	acct, _ = e.Snapshot().Account(wallet)
	assert.Empty(t, acct.Positions)
}

func TestSellRejections(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)
	ctx := context.Background()
	bindAndFund(t, e, wallet, 100)
	require.True(t, e.Buy(ctx, wallet, "btc-200k", domain.OutcomeYes, 100).OK)
	before := e.Snapshot()

	res := e.Sell(ctx, wallet, "btc-200k", domain.OutcomeYes, 10000)
	assert.False(t, res.OK)
	assert.Equal(t, domain.ReasonInsufficientShares, res.Reason)

	res = e.Sell(ctx, wallet, "btc-200k", domain.OutcomeNo, 1)
	assert.False(t, res.OK)
	assert.Equal(t, domain.ReasonInsufficientShares, res.Reason)

	after := e.Snapshot()
	assert.Equal(t, before.Accounts, after.Accounts)
	assert.Equal(t, before.Markets, after.Markets)
}

func TestDepositWithdrawPairRestoresBalance(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)
	ctx := context.Background()
	bindAndFund(t, e, wallet, 123.45)

	require.True(t, e.Deposit(ctx, wallet, 10).OK)
	require.True(t, e.Withdraw(ctx, wallet, 10).OK)

	acct, _ := e.Snapshot().Account(wallet)
	assert.InDelta(t, 123.45, acct.Balance, 1e-9)
}

func TestWithdrawNeverGoesNegative(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)
	ctx := context.Background()
	bindAndFund(t, e, wallet, 20)

	res := e.Withdraw(ctx, wallet, 20.01)
	assert.False(t, res.OK)
	assert.Equal(t, domain.ReasonInsufficientBalance, res.Reason)

	acct, _ := e.Snapshot().Account(wallet)
	assert.InDelta(t, 20, acct.Balance, 1e-9)
}

func TestConfirmFaucetClaim(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)
	ctx := context.Background()
	bindAndFund(t, e, wallet, 0)

	ts := time.Now().UnixMilli()
	require.True(t, e.ConfirmFaucetClaim(ctx, wallet, ts).OK)

	acct, _ := e.Snapshot().Account(wallet)
	assert.True(t, acct.HasClaimedToday)
	require.NotNil(t, acct.LastClaimTimestamp)
	assert.Equal(t, ts, *acct.LastClaimTimestamp)
}

func TestProposeMarketAutoOpensAfterDelay(t *testing.T) {
	e := startEngine(t, Config{ApprovalDelay: 60 * time.Millisecond}, testMarkets(), nil)
	ctx := context.Background()

	id, res := e.ProposeMarket(ctx, catalog.ProposeSpec{
		Title:           "ETH > $10k",
		Description:     "Will Ethereum exceed $10,000?",
		Category:        domain.CategoryCrypto,
		ResolutionDate:  time.Now().AddDate(1, 0, 0),
		InitialYesPrice: 0.30,
	})
	require.True(t, res.OK)
	require.NotEmpty(t, id)

	snap := e.Snapshot()
	// Inserted at the front of the catalog.
	require.NotEmpty(t, snap.Markets)
	assert.Equal(t, id, snap.Markets[0].ID)
	assert.Equal(t, domain.MarketStatusProposed, snap.Markets[0].Status)
	assert.InDelta(t, 0.70, snap.Markets[0].NoPrice, 1e-9)

	// Still proposed well before the delay elapses.
	time.Sleep(15 * time.Millisecond)
	m, _ := e.Snapshot().Market(id)
	assert.Equal(t, domain.MarketStatusProposed, m.Status)

	require.Eventually(t, func() bool {
		m, ok := e.Snapshot().Market(id)
		return ok && m.Status == domain.MarketStatusOpen
	}, 2*time.Second, 5*time.Millisecond, "proposal should auto-open")
}

func TestProposeMarketValidation(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)
	ctx := context.Background()

	_, res := e.ProposeMarket(ctx, catalog.ProposeSpec{
		Title:           "bad category",
		Category:        domain.MarketCategory("All"),
		InitialYesPrice: 0.5,
	})
	assert.Equal(t, domain.ReasonInvalidCategory, res.Reason)

	_, res = e.ProposeMarket(ctx, catalog.ProposeSpec{
		Title:           "bad price",
		Category:        domain.CategorySports,
		InitialYesPrice: 1.0,
	})
	assert.Equal(t, domain.ReasonInvalidPrice, res.Reason)
}

func TestTransitionMarket(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)
	ctx := context.Background()

	require.True(t, e.TransitionMarket(ctx, "btc-200k", domain.MarketStatusResolving).OK)
	m, _ := e.Snapshot().Market("btc-200k")
	assert.Equal(t, domain.MarketStatusResolving, m.Status)

	// Unreachable transition is an accepted no-op.
	require.True(t, e.TransitionMarket(ctx, "btc-200k", domain.MarketStatusOpen).OK)
	m, _ = e.Snapshot().Market("btc-200k")
	assert.Equal(t, domain.MarketStatusResolving, m.Status)

	res := e.TransitionMarket(ctx, "no-such-market", domain.MarketStatusResolved)
	assert.Equal(t, domain.ReasonUnknownMarket, res.Reason)
}

func TestDriftMovesPricesAndCapsHistory(t *testing.T) {
	markets := testMarkets()
	// Pre-load near the cap so eviction is exercised quickly.
	base := time.Now().Add(-3 * time.Hour)
	for i := 0; i < pricing.HistoryLimit-1; i++ {
		markets[0].PriceHistory = append(markets[0].PriceHistory, domain.PricePoint{
			Time:  base.Add(time.Duration(i) * time.Second).UnixMilli(),
			Value: 0.50,
		})
	}
	frozen := domain.Market{
		ID:       "settled",
		Status:   domain.MarketStatusResolved,
		YesPrice: 0.89,
		NoPrice:  0.11,
	}
	markets = append(markets, frozen)

	e := startEngine(t, Config{DriftInterval: 5 * time.Millisecond}, markets, nil)

	require.Eventually(t, func() bool {
		m, ok := e.Snapshot().Market("btc-200k")
		return ok && len(m.PriceHistory) == pricing.HistoryLimit
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)

	m, _ := e.Snapshot().Market("btc-200k")
	assert.Len(t, m.PriceHistory, pricing.HistoryLimit, "history never exceeds the cap")
	assert.GreaterOrEqual(t, m.YesPrice, pricing.MinPrice)
	assert.LessOrEqual(t, m.YesPrice, pricing.MaxPrice)
	assert.InDelta(t, 1.0, m.YesPrice+m.NoPrice, 0.005)
	for i := 1; i < len(m.PriceHistory); i++ {
		assert.LessOrEqual(t, m.PriceHistory[i-1].Time, m.PriceHistory[i].Time)
	}

	// Resolved markets are frozen.
	s, _ := e.Snapshot().Market("settled")
	assert.InDelta(t, 0.89, s.YesPrice, 1e-9)
	assert.Empty(t, s.PriceHistory)
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	e := startEngine(t, Config{}, testMarkets(), nil)
	ctx := context.Background()
	bindAndFund(t, e, wallet, 0)

	ch, cancel := e.Subscribe()
	defer cancel()

	require.True(t, e.Deposit(ctx, wallet, 42).OK)

	select {
	case snap := <-ch:
		acct, ok := snap.Account(wallet)
		require.True(t, ok)
		assert.InDelta(t, 42, acct.Balance, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestPersistenceRoundTripAndIsolation(t *testing.T) {
	store := memory.NewAccountStore()
	ctx := context.Background()

	e1 := startEngine(t, Config{}, testMarkets(), store)
	bindAndFund(t, e1, wallet, 500)
	require.True(t, e1.Buy(ctx, wallet, "btc-200k", domain.OutcomeYes, 200).OK)
	require.True(t, e1.ConfirmFaucetClaim(ctx, wallet, 1234).OK)

	want, _ := e1.Snapshot().Account(wallet)

	// Write-through saves are fire-and-forget.
	require.Eventually(t, func() bool {
		rec, err := store.Load(ctx, wallet)
		return err == nil && rec.USDCBalance == want.Balance && rec.HasClaimedToday
	}, 2*time.Second, 5*time.Millisecond)

	// A fresh engine over the same store restores the identity.
	e2 := startEngine(t, Config{}, testMarkets(), store)
	acct, res := e2.Bind(ctx, wallet)
	require.True(t, res.OK)
	assert.InDelta(t, want.Balance, acct.Balance, 1e-9)
	assert.Equal(t, want.Positions, acct.Positions)
	assert.True(t, acct.HasClaimedToday)
	require.NotNil(t, acct.LastClaimTimestamp)
	assert.Equal(t, int64(1234), *acct.LastClaimTimestamp)

	// A different identity never sees this data.
	other, res := e2.Bind(ctx, "0xbbbb")
	require.True(t, res.OK)
	assert.Zero(t, other.Balance)
	assert.Empty(t, other.Positions)
}

func TestMalformedPersistedStateColdStarts(t *testing.T) {
	store := memory.NewAccountStore()
	store.PutRaw(wallet, []byte("%% not json %%"))

	e := startEngine(t, Config{}, testMarkets(), store)
	acct, res := e.Bind(context.Background(), wallet)
	require.True(t, res.OK)
	assert.Zero(t, acct.Balance)
	assert.Empty(t, acct.Positions)
}

func TestActionsRejectedAfterShutdown(t *testing.T) {
	store := memory.NewAccountStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := New(Config{DriftInterval: time.Hour, ApprovalDelay: time.Hour, RandSeed: 1}, testMarkets(), store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = e.Run(ctx)
		close(done)
	}()

	_, res := e.Bind(context.Background(), wallet)
	require.True(t, res.OK)

	cancel()
	<-done

	res = e.Deposit(context.Background(), wallet, 10)
	assert.False(t, res.OK)
	assert.Equal(t, domain.ReasonEngineClosed, res.Reason)
}
