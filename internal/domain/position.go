package domain

// Outcome is one of the two complementary sides of a binary market.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// Valid reports whether o is a recognised outcome.
func (o Outcome) Valid() bool {
	return o == OutcomeYes || o == OutcomeNo
}

// Position is a user's holding in one (market, outcome) pair. At most one
// position exists per pair; a position whose shares reach zero is removed
// rather than kept as a zero row. AvgPrice is the volume-weighted average
// entry price across all accumulating buys.
type Position struct {
	MarketID string  `json:"marketId"`
	Outcome  Outcome `json:"outcome"`
	Shares   float64 `json:"shares"`
	AvgPrice float64 `json:"avgPrice"`
}
