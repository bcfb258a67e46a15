package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/suilfg/marketsim/internal/catalog"
	"github.com/suilfg/marketsim/internal/domain"
	"github.com/suilfg/marketsim/internal/ledger"
	"github.com/suilfg/marketsim/internal/pricing"
)

// Bind attaches a wallet identity to the engine, creating the account on
// first contact. Persisted state for the identity is loaded before the loop
// is touched; a missing or unreadable record cold-starts the account with
// defaults. Re-binding an already attached identity keeps the live session
// state rather than clobbering it from storage.
func (e *Engine) Bind(ctx context.Context, wallet string) (domain.Account, domain.Result) {
	var rec domain.AccountRecord
	loaded, err := e.store.Load(ctx, wallet)
	switch {
	case err == nil:
		rec = loaded
	case errors.Is(err, domain.ErrNotFound):
		// Fresh identity, zero defaults.
	default:
		e.logger.Warn("engine: load account failed, starting cold",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
	}

	var bound domain.Account
	res := e.do(ctx, func(now time.Time) domain.Result {
		if acct, ok := e.accounts[wallet]; ok {
			bound = acct.Clone()
			return domain.Accepted()
		}
		acct := domain.AccountFromRecord(wallet, rec)
		e.accounts[wallet] = acct
		e.dirty = true
		bound = acct.Clone()
		return domain.Accepted()
	})
	return bound, res
}

// Buy spends amount USDC on the given outcome: balance decreases, the market
// takes the price impact, and the position ledger records the fill at the
// pre-impact price.
func (e *Engine) Buy(ctx context.Context, wallet, marketID string, o domain.Outcome, amount float64) domain.Result {
	return e.do(ctx, func(now time.Time) domain.Result {
		acct, ok := e.accounts[wallet]
		if !ok {
			return domain.Rejected(domain.ReasonUnknownAccount)
		}
		if !o.Valid() {
			return domain.Rejected(domain.ReasonInvalidOutcome)
		}
		if amount <= 0 {
			return domain.Rejected(domain.ReasonInvalidAmount)
		}
		if amount > acct.Balance {
			return domain.Rejected(domain.ReasonInsufficientBalance)
		}
		i, ok := e.marketIndex(marketID)
		if !ok {
			return domain.Rejected(domain.ReasonUnknownMarket)
		}

		q := pricing.ApplyBuy(&e.markets[i], o, amount, now)

		acct.Balance = pricing.Round2(acct.Balance - amount)
		acct.Positions = ledger.RecordBuy(acct.Positions, marketID, o, q.Shares, q.ExecPrice)
		e.accounts[wallet] = acct

		e.dirty = true
		e.persist(wallet)
		return domain.Accepted()
	})
}

// Sell liquidates shares at the standing pre-trade quote. The market price
// is not impacted by sales.
func (e *Engine) Sell(ctx context.Context, wallet, marketID string, o domain.Outcome, shares float64) domain.Result {
	return e.do(ctx, func(now time.Time) domain.Result {
		acct, ok := e.accounts[wallet]
		if !ok {
			return domain.Rejected(domain.ReasonUnknownAccount)
		}
		if !o.Valid() {
			return domain.Rejected(domain.ReasonInvalidOutcome)
		}
		if shares <= 0 {
			return domain.Rejected(domain.ReasonInvalidAmount)
		}
		i, ok := e.marketIndex(marketID)
		if !ok {
			return domain.Rejected(domain.ReasonUnknownMarket)
		}

		updated, ok := ledger.RecordSell(acct.Positions, marketID, o, shares)
		if !ok {
			return domain.Rejected(domain.ReasonInsufficientShares)
		}

		proceeds := shares * e.markets[i].Price(o)
		acct.Positions = updated
		acct.Balance = pricing.Round2(acct.Balance + proceeds)
		e.accounts[wallet] = acct

		e.dirty = true
		e.persist(wallet)
		return domain.Accepted()
	})
}

// Deposit credits the account balance.
func (e *Engine) Deposit(ctx context.Context, wallet string, amount float64) domain.Result {
	return e.do(ctx, func(now time.Time) domain.Result {
		acct, ok := e.accounts[wallet]
		if !ok {
			return domain.Rejected(domain.ReasonUnknownAccount)
		}
		if amount <= 0 {
			return domain.Rejected(domain.ReasonInvalidAmount)
		}
		acct.Balance = pricing.Round2(acct.Balance + amount)
		e.accounts[wallet] = acct

		e.dirty = true
		e.persist(wallet)
		return domain.Accepted()
	})
}

// Withdraw debits the account balance; it never drives the balance negative.
func (e *Engine) Withdraw(ctx context.Context, wallet string, amount float64) domain.Result {
	return e.do(ctx, func(now time.Time) domain.Result {
		acct, ok := e.accounts[wallet]
		if !ok {
			return domain.Rejected(domain.ReasonUnknownAccount)
		}
		if amount <= 0 {
			return domain.Rejected(domain.ReasonInvalidAmount)
		}
		if amount > acct.Balance {
			return domain.Rejected(domain.ReasonInsufficientBalance)
		}
		acct.Balance = pricing.Round2(acct.Balance - amount)
		e.accounts[wallet] = acct

		e.dirty = true
		e.persist(wallet)
		return domain.Accepted()
	})
}

// ConfirmFaucetClaim records a confirmed on-chain faucet claim. The engine
// only tracks the flag and timestamp; the claim transaction itself and any
// cooldown policy live with the caller.
func (e *Engine) ConfirmFaucetClaim(ctx context.Context, wallet string, claimedAt int64) domain.Result {
	return e.do(ctx, func(now time.Time) domain.Result {
		acct, ok := e.accounts[wallet]
		if !ok {
			return domain.Rejected(domain.ReasonUnknownAccount)
		}
		acct.HasClaimedToday = true
		acct.LastClaimTimestamp = &claimedAt
		e.accounts[wallet] = acct

		e.dirty = true
		e.persist(wallet)
		return domain.Accepted()
	})
}

// ProposeMarket creates a PROPOSED market at the front of the catalog and
// schedules its automatic approval. The new market's ID is returned with the
// result.
func (e *Engine) ProposeMarket(ctx context.Context, spec catalog.ProposeSpec) (string, domain.Result) {
	id := "market-" + uuid.NewString()

	res := e.do(ctx, func(now time.Time) domain.Result {
		if !spec.Category.Valid() {
			return domain.Rejected(domain.ReasonInvalidCategory)
		}
		if spec.InitialYesPrice <= 0 || spec.InitialYesPrice >= 1 {
			return domain.Rejected(domain.ReasonInvalidPrice)
		}

		m := catalog.New(spec, id, now)
		e.markets = append([]domain.Market{m}, e.markets...)
		e.scheduleApproval(id, now)

		e.dirty = true
		e.logger.Info("market proposed",
			slog.String("market_id", id),
			slog.String("category", string(spec.Category)),
		)
		return domain.Accepted()
	})
	if !res.OK {
		return "", res
	}
	return id, res
}

// TransitionMarket applies an externally triggered status change (resolution
// date reached, outcome settled). Unreachable transitions are ignored, not
// failed; only an unknown market is rejected.
func (e *Engine) TransitionMarket(ctx context.Context, marketID string, to domain.MarketStatus) domain.Result {
	return e.do(ctx, func(now time.Time) domain.Result {
		i, ok := e.marketIndex(marketID)
		if !ok {
			return domain.Rejected(domain.ReasonUnknownMarket)
		}
		if catalog.Transition(&e.markets[i], to) {
			e.dirty = true
		}
		return domain.Accepted()
	})
}
