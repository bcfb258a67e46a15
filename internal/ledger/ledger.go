// Package ledger maintains a user's position set under weighted-average-cost
// accounting. Functions are pure: they return the updated position slice and
// never touch balances or market state.
package ledger

import (
	"github.com/suilfg/marketsim/internal/domain"
	"github.com/suilfg/marketsim/internal/pricing"
)

// Find returns the position for (marketID, outcome), if held.
func Find(positions []domain.Position, marketID string, o domain.Outcome) (domain.Position, bool) {
	for _, p := range positions {
		if p.MarketID == marketID && p.Outcome == o {
			return p, true
		}
	}
	return domain.Position{}, false
}

// RecordBuy merges a buy fill into the position set. An existing position
// for the same (market, outcome) accumulates shares and recomputes the
// volume-weighted average entry price; otherwise a new position is inserted
// at the execution price.
func RecordBuy(positions []domain.Position, marketID string, o domain.Outcome, shares, execPrice float64) []domain.Position {
	for i, p := range positions {
		if p.MarketID != marketID || p.Outcome != o {
			continue
		}
		total := p.Shares + shares
		avg := (p.AvgPrice*p.Shares + execPrice*shares) / total

		out := make([]domain.Position, len(positions))
		copy(out, positions)
		out[i].Shares = total
		out[i].AvgPrice = pricing.Round2(avg)
		return out
	}

	out := make([]domain.Position, len(positions), len(positions)+1)
	copy(out, positions)
	return append(out, domain.Position{
		MarketID: marketID,
		Outcome:  o,
		Shares:   shares,
		AvgPrice: execPrice,
	})
}

// RecordSell removes shares from a position. It reports false — leaving the
// set untouched — when no matching position exists or more shares are sold
// than held. A position drained to zero is dropped entirely; the average
// price of any remaining shares is not recomputed.
func RecordSell(positions []domain.Position, marketID string, o domain.Outcome, shares float64) ([]domain.Position, bool) {
	for i, p := range positions {
		if p.MarketID != marketID || p.Outcome != o {
			continue
		}
		if shares > p.Shares {
			return positions, false
		}

		remaining := p.Shares - shares
		if remaining <= 0 {
			out := make([]domain.Position, 0, len(positions)-1)
			out = append(out, positions[:i]...)
			out = append(out, positions[i+1:]...)
			return out, true
		}

		out := make([]domain.Position, len(positions))
		copy(out, positions)
		out[i].Shares = remaining
		return out, true
	}
	return positions, false
}
