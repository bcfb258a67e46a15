package domain

import "time"

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	MarketStatusProposed  MarketStatus = "PROPOSED"
	MarketStatusOpen      MarketStatus = "OPEN"
	MarketStatusResolving MarketStatus = "RESOLVING"
	MarketStatusResolved  MarketStatus = "RESOLVED"
)

// MarketCategory is the category assigned to a real market. The catch-all
// "All" value used by list filters is deliberately a different type
// (FilterCategory) so it can never be stored on a market.
type MarketCategory string

const (
	CategoryCrypto    MarketCategory = "Crypto"
	CategoryPolitics  MarketCategory = "Politics"
	CategorySports    MarketCategory = "Sports"
	CategoryCommunity MarketCategory = "Community"
)

// Valid reports whether c is one of the assignable market categories.
func (c MarketCategory) Valid() bool {
	switch c {
	case CategoryCrypto, CategoryPolitics, CategorySports, CategoryCommunity:
		return true
	}
	return false
}

// FilterCategory is a market-list filter value: any MarketCategory, or
// FilterAll which matches every market.
type FilterCategory string

const FilterAll FilterCategory = "All"

// Valid reports whether f is FilterAll or a real market category.
func (f FilterCategory) Valid() bool {
	return f == FilterAll || MarketCategory(f).Valid()
}

// Matches reports whether a market with the given category passes the filter.
func (f FilterCategory) Matches(c MarketCategory) bool {
	return f == FilterAll || string(f) == string(c)
}

// PricePoint is a single sample in a market's price history. Time is epoch
// milliseconds; Value is the YES price at that instant.
type PricePoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// Market represents a binary-outcome prediction market. YesPrice and NoPrice
// always sum to 1 after 2-decimal rounding and each stays inside
// [0.01, 0.99]; PriceHistory is chronological and capped at the most recent
// 120 samples.
type Market struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Category       MarketCategory `json:"category"`
	Status         MarketStatus   `json:"status"`
	ResolutionDate time.Time      `json:"resolutionDate"`
	YesPrice       float64        `json:"yesPrice"`
	NoPrice        float64        `json:"noPrice"`
	TotalVolume    float64        `json:"totalVolume"`
	PriceHistory   []PricePoint   `json:"priceHistory"`
}

// Price returns the quoted price for the given outcome.
func (m Market) Price(o Outcome) float64 {
	if o == OutcomeYes {
		return m.YesPrice
	}
	return m.NoPrice
}

// Clone returns a deep copy of the market, including its price history.
func (m Market) Clone() Market {
	out := m
	out.PriceHistory = make([]PricePoint, len(m.PriceHistory))
	copy(out.PriceHistory, m.PriceHistory)
	return out
}
