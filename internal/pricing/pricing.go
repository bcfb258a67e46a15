// Package pricing implements the deterministic price-impact model and the
// background drift perturbation for binary markets. All functions are pure
// with respect to their inputs; the engine owns when they run.
package pricing

import (
	"math"
	"math/rand"
	"time"

	"github.com/suilfg/marketsim/internal/domain"
)

const (
	// LiquidityConstant is the synthetic pool depth: a trade of N USDC moves
	// the YES price by N / LiquidityConstant. Higher means lower slippage.
	LiquidityConstant = 50000.0

	// MinPrice and MaxPrice bound both outcome prices. Prices are clamped
	// here and never reach exactly 0 or 1, which also keeps the share
	// computation (amount / price) away from division by zero.
	MinPrice = 0.01
	MaxPrice = 0.99

	// DriftVolatility is the full width of the random per-tick perturbation:
	// the YES price moves by (rand-0.5) * DriftVolatility, i.e. at most
	// ±0.25% of the [0,1] range.
	DriftVolatility = 0.005

	// HistoryLimit caps a market's price history; the oldest samples are
	// evicted first.
	HistoryLimit = 120
)

// BuyQuote describes the execution of a buy: shares received, the price they
// executed at (the pre-impact quote), and the price impact applied to the
// market afterwards.
type BuyQuote struct {
	ExecPrice float64
	Shares    float64
	Impact    float64
}

// QuoteBuy computes the execution of spending amount USDC on the given
// outcome without mutating the market.
func QuoteBuy(m domain.Market, o domain.Outcome, amount float64) BuyQuote {
	price := m.Price(o)
	return BuyQuote{
		ExecPrice: price,
		Shares:    amount / price,
		Impact:    amount / LiquidityConstant,
	}
}

// ApplyBuy executes a buy against the market: shares are priced at the
// pre-impact quote, then the YES price moves by the impact (up for YES buys,
// down for NO buys since the outcomes are complementary), volume accumulates
// and a history sample is appended. Selling deliberately has no counterpart
// here: sale proceeds use the standing quote and leave the market untouched.
func ApplyBuy(m *domain.Market, o domain.Outcome, amount float64, now time.Time) BuyQuote {
	q := QuoteBuy(*m, o, amount)

	newYes := m.YesPrice
	if o == domain.OutcomeYes {
		newYes += q.Impact
	} else {
		newYes -= q.Impact
	}
	newYes = Clamp(newYes)

	m.YesPrice = Round2(newYes)
	m.NoPrice = Round2(1 - newYes)
	m.TotalVolume += amount
	appendSample(m, now, Round4(newYes))

	return q
}

// ApplyDrift perturbs the YES price by a bounded random delta, derives the
// NO price, and appends a history sample. rnd is owned by the caller so
// drift stays reproducible under a seeded source.
func ApplyDrift(m *domain.Market, rnd *rand.Rand, now time.Time) {
	newYes := Clamp(m.YesPrice + (rnd.Float64()-0.5)*DriftVolatility)

	m.YesPrice = Round2(newYes)
	m.NoPrice = Round2(1 - newYes)
	appendSample(m, now, Round4(newYes))
}

// Clamp bounds a price to [MinPrice, MaxPrice].
func Clamp(p float64) float64 {
	return math.Max(MinPrice, math.Min(MaxPrice, p))
}

// Round2 rounds to 2 decimal places (prices, balances).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to 4 decimal places (history samples).
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func appendSample(m *domain.Market, now time.Time, value float64) {
	m.PriceHistory = append(m.PriceHistory, domain.PricePoint{
		Time:  now.UnixMilli(),
		Value: value,
	})
	if n := len(m.PriceHistory); n > HistoryLimit {
		m.PriceHistory = append(m.PriceHistory[:0], m.PriceHistory[n-HistoryLimit:]...)
	}
}
