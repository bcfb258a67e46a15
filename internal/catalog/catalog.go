// Package catalog owns market records: the seed set, runtime creation via
// proposals, and the status state machine.
package catalog

import (
	"time"

	"github.com/suilfg/marketsim/internal/domain"
	"github.com/suilfg/marketsim/internal/pricing"
)

// ProposeSpec carries the caller-validated inputs for a new market proposal.
type ProposeSpec struct {
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Category        domain.MarketCategory `json:"category"`
	ResolutionDate  time.Time             `json:"resolutionDate"`
	InitialYesPrice float64               `json:"initialYesPrice"`
}

// New builds a PROPOSED market from a proposal. The NO price is derived from
// the initial YES price and the history is seeded with a single point.
func New(spec ProposeSpec, id string, now time.Time) domain.Market {
	return domain.Market{
		ID:             id,
		Title:          spec.Title,
		Description:    spec.Description,
		Category:       spec.Category,
		Status:         domain.MarketStatusProposed,
		ResolutionDate: spec.ResolutionDate,
		YesPrice:       spec.InitialYesPrice,
		NoPrice:        pricing.Round2(1 - spec.InitialYesPrice),
		TotalVolume:    0,
		PriceHistory: []domain.PricePoint{
			{Time: now.UnixMilli(), Value: pricing.Round4(spec.InitialYesPrice)},
		},
	}
}

// Transition applies the status state machine and reports whether the market
// changed. Only the forward edges PROPOSED→OPEN, OPEN→RESOLVING and
// RESOLVING→RESOLVED exist; every other request is an ignored no-op so
// callers never need to branch on unreachable transitions.
func Transition(m *domain.Market, to domain.MarketStatus) bool {
	allowed := map[domain.MarketStatus]domain.MarketStatus{
		domain.MarketStatusProposed:  domain.MarketStatusOpen,
		domain.MarketStatusOpen:      domain.MarketStatusResolving,
		domain.MarketStatusResolving: domain.MarketStatusResolved,
	}
	if next, ok := allowed[m.Status]; ok && next == to {
		m.Status = to
		return true
	}
	return false
}

// Drifts reports whether a market in the given status participates in the
// background price drift. RESOLVED markets are frozen; everything else moves.
func Drifts(s domain.MarketStatus) bool {
	return s != domain.MarketStatusResolved
}
