// Package engine implements the market & position state engine: a single
// consistent snapshot of markets and accounts, mutated only by one goroutine.
// User actions are submitted as commands over an inbox channel; the drift
// ticker and pending proposal approvals are timers owned by the same loop, so
// no read-modify-write of the snapshot can ever interleave with another
// mutation. All timers die with Run.
package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/suilfg/marketsim/internal/catalog"
	"github.com/suilfg/marketsim/internal/domain"
	"github.com/suilfg/marketsim/internal/pricing"
)

const inboxSize = 64

// Config holds the engine's timing parameters. The zero value is usable:
// defaults match the reference design (2.5s drift tick, 60s proposal
// approval delay).
type Config struct {
	// DriftInterval is the period of the background price perturbation.
	DriftInterval time.Duration

	// ApprovalDelay is how long a proposed market waits before it is
	// automatically opened.
	ApprovalDelay time.Duration

	// RandSeed seeds the drift random source. Zero means seed from the
	// clock; tests set it for reproducible drift.
	RandSeed int64
}

func (c Config) withDefaults() Config {
	if c.DriftInterval <= 0 {
		c.DriftInterval = 2500 * time.Millisecond
	}
	if c.ApprovalDelay <= 0 {
		c.ApprovalDelay = 60 * time.Second
	}
	if c.RandSeed == 0 {
		c.RandSeed = time.Now().UnixNano()
	}
	return c
}

// command is one unit of work for the state loop. fn runs on the loop
// goroutine and may mutate engine state; the result is delivered on reply.
type command struct {
	fn    func(now time.Time) domain.Result
	reply chan domain.Result
}

// approval is a scheduled PROPOSED -> OPEN transition.
type approval struct {
	marketID string
	due      time.Time
}

// Engine owns the market catalog and every bound account. It is constructed
// explicitly and torn down by cancelling the context passed to Run; there is
// no package-level instance.
type Engine struct {
	cfg    Config
	store  domain.AccountStore
	logger *slog.Logger

	inbox chan command
	done  chan struct{}
	stop  sync.Once

	// State below is owned by the Run goroutine.
	markets   []domain.Market
	accounts  map[string]domain.Account
	approvals []approval
	rnd       *rand.Rand
	dirty     bool

	approvalTimer *time.Timer

	// latest is the most recently published snapshot, readable without
	// crossing the loop.
	latestMu sync.RWMutex
	latest   domain.Snapshot

	subMu   sync.Mutex
	subs    map[int]chan domain.Snapshot
	nextSub int
}

// New creates an Engine seeded with the given markets. store receives a
// write-through copy of every account mutation and is consulted once per
// identity on Bind.
func New(cfg Config, markets []domain.Market, store domain.AccountStore, logger *slog.Logger) *Engine {
	cfg = cfg.withDefaults()

	owned := make([]domain.Market, len(markets))
	for i, m := range markets {
		owned[i] = m.Clone()
	}

	e := &Engine{
		cfg:      cfg,
		store:    store,
		logger:   logger.With(slog.String("component", "engine")),
		inbox:    make(chan command, inboxSize),
		done:     make(chan struct{}),
		markets:  owned,
		accounts: make(map[string]domain.Account),
		rnd:      rand.New(rand.NewSource(cfg.RandSeed)),
		subs:     make(map[int]chan domain.Snapshot),
	}
	e.storeSnapshot(e.buildSnapshot(time.Now()))
	return e
}

// Run executes the state loop until ctx is cancelled. It must be called at
// most once; every action is rejected once it returns.
func (e *Engine) Run(ctx context.Context) error {
	defer e.shutdown()

	ticker := time.NewTicker(e.cfg.DriftInterval)
	defer ticker.Stop()

	// The approval timer idles until a proposal schedules it.
	e.approvalTimer = time.NewTimer(time.Hour)
	if !e.approvalTimer.Stop() {
		<-e.approvalTimer.C
	}
	defer e.approvalTimer.Stop()

	e.logger.InfoContext(ctx, "engine started",
		slog.Duration("drift_interval", e.cfg.DriftInterval),
		slog.Duration("approval_delay", e.cfg.ApprovalDelay),
		slog.Int("markets", len(e.markets)),
	)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping")
			return ctx.Err()

		case cmd := <-e.inbox:
			now := time.Now()
			res := cmd.fn(now)
			// Publish before replying so a caller that reads the snapshot
			// right after the action sees its own write.
			e.publishIfDirty(now)
			cmd.reply <- res

		case <-ticker.C:
			now := time.Now()
			e.applyDrift(now)
			e.publishIfDirty(now)

		case <-e.approvalTimer.C:
			now := time.Now()
			e.openDueProposals(now)
			e.rearmApprovals(now)
			e.publishIfDirty(now)
		}
	}
}

// shutdown marks the engine closed so submitters stop blocking, and detaches
// all subscribers.
func (e *Engine) shutdown() {
	e.stop.Do(func() { close(e.done) })

	e.subMu.Lock()
	for id, ch := range e.subs {
		close(ch)
		delete(e.subs, id)
	}
	e.subMu.Unlock()
}

// do submits fn to the state loop and waits for its result.
func (e *Engine) do(ctx context.Context, fn func(now time.Time) domain.Result) domain.Result {
	cmd := command{fn: fn, reply: make(chan domain.Result, 1)}

	select {
	case e.inbox <- cmd:
	case <-e.done:
		return domain.Rejected(domain.ReasonEngineClosed)
	case <-ctx.Done():
		return domain.Rejected(domain.ReasonEngineClosed)
	}

	select {
	case res := <-cmd.reply:
		return res
	case <-e.done:
		return domain.Rejected(domain.ReasonEngineClosed)
	}
}

// ---------------------------------------------------------------------------
// Loop-side helpers. Everything below runs on the Run goroutine only.
// ---------------------------------------------------------------------------

func (e *Engine) applyDrift(now time.Time) {
	for i := range e.markets {
		if !catalog.Drifts(e.markets[i].Status) {
			continue
		}
		pricing.ApplyDrift(&e.markets[i], e.rnd, now)
		e.dirty = true
	}
}

func (e *Engine) scheduleApproval(marketID string, now time.Time) {
	e.approvals = append(e.approvals, approval{
		marketID: marketID,
		due:      now.Add(e.cfg.ApprovalDelay),
	})
	sort.Slice(e.approvals, func(i, j int) bool {
		return e.approvals[i].due.Before(e.approvals[j].due)
	})
	e.rearmApprovals(now)
}

func (e *Engine) openDueProposals(now time.Time) {
	remaining := e.approvals[:0]
	for _, a := range e.approvals {
		if a.due.After(now) {
			remaining = append(remaining, a)
			continue
		}
		if i, ok := e.marketIndex(a.marketID); ok {
			if catalog.Transition(&e.markets[i], domain.MarketStatusOpen) {
				e.dirty = true
				e.logger.Info("proposal approved",
					slog.String("market_id", a.marketID),
				)
			}
		}
	}
	e.approvals = remaining
}

// rearmApprovals points the single approval timer at the earliest pending
// deadline, or leaves it stopped when none remain.
func (e *Engine) rearmApprovals(now time.Time) {
	if e.approvalTimer == nil {
		return
	}
	if !e.approvalTimer.Stop() {
		select {
		case <-e.approvalTimer.C:
		default:
		}
	}
	if len(e.approvals) == 0 {
		return
	}
	d := e.approvals[0].due.Sub(now)
	if d < 0 {
		d = 0
	}
	e.approvalTimer.Reset(d)
}

func (e *Engine) marketIndex(id string) (int, bool) {
	for i := range e.markets {
		if e.markets[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// persist fires a write-through save of the account's current state. The
// snapshot in memory stays authoritative: failures are logged and dropped.
func (e *Engine) persist(wallet string) {
	acct, ok := e.accounts[wallet]
	if !ok {
		return
	}
	rec := acct.Record()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.store.Save(ctx, wallet, rec); err != nil {
			e.logger.Warn("engine: persist account failed",
				slog.String("wallet", wallet),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (e *Engine) publishIfDirty(now time.Time) {
	if !e.dirty {
		return
	}
	e.dirty = false

	snap := e.buildSnapshot(now)
	e.storeSnapshot(snap)

	e.subMu.Lock()
	for _, ch := range e.subs {
		select {
		case ch <- snap:
		default:
			// Slow subscriber; drop rather than stall the loop.
		}
	}
	e.subMu.Unlock()
}

func (e *Engine) buildSnapshot(now time.Time) domain.Snapshot {
	markets := make([]domain.Market, len(e.markets))
	for i, m := range e.markets {
		markets[i] = m.Clone()
	}
	accounts := make(map[string]domain.Account, len(e.accounts))
	for w, a := range e.accounts {
		accounts[w] = a.Clone()
	}
	return domain.Snapshot{
		Markets:  markets,
		Accounts: accounts,
		TakenAt:  now.UnixMilli(),
	}
}

func (e *Engine) storeSnapshot(snap domain.Snapshot) {
	e.latestMu.Lock()
	e.latest = snap
	e.latestMu.Unlock()
}

// Snapshot returns the most recently published consistent view.
func (e *Engine) Snapshot() domain.Snapshot {
	e.latestMu.RLock()
	defer e.latestMu.RUnlock()
	return e.latest
}

// Subscribe registers an observer that receives every published snapshot.
// The returned cancel function detaches it; the channel is closed when the
// engine shuts down.
func (e *Engine) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 16)

	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subMu.Unlock()

	cancel := func() {
		e.subMu.Lock()
		if c, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(c)
		}
		e.subMu.Unlock()
	}
	return ch, cancel
}
