package catalog

import (
	"time"

	"github.com/suilfg/marketsim/internal/domain"
)

// seedHistory builds a daily price history ending at now, oldest first.
func seedHistory(now time.Time, values ...float64) []domain.PricePoint {
	points := make([]domain.PricePoint, 0, len(values))
	for i, v := range values {
		t := now.Add(-time.Duration(len(values)-1-i) * 24 * time.Hour)
		points = append(points, domain.PricePoint{Time: t.UnixMilli(), Value: v})
	}
	return points
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Seed returns the fixed demo market set loaded at process start.
func Seed(now time.Time) []domain.Market {
	return []domain.Market{
		{
			ID:             "bitcoin-200k",
			Title:          "Bitcoin > $200k by EOY 2025",
			Description:    "Will Bitcoin price exceed $200,000 by December 31, 2025?",
			Category:       domain.CategoryCrypto,
			Status:         domain.MarketStatusOpen,
			ResolutionDate: date(2025, time.December, 31),
			YesPrice:       0.65,
			NoPrice:        0.35,
			TotalVolume:    3456789,
			PriceHistory:   seedHistory(now, 0.62, 0.64, 0.66, 0.65, 0.63, 0.65, 0.66, 0.65),
		},
		{
			ID:             "sui-price-10",
			Title:          "SUI > $10.00 by Sept 2025",
			Description:    "Will SUI price be greater than $10.00 on September 1, 2025?",
			Category:       domain.CategoryCrypto,
			Status:         domain.MarketStatusOpen,
			ResolutionDate: date(2025, time.September, 1),
			YesPrice:       0.42,
			NoPrice:        0.58,
			TotalVolume:    1234567,
			PriceHistory:   seedHistory(now, 0.38, 0.40, 0.43, 0.41, 0.42, 0.43, 0.42, 0.42),
		},
		{
			ID:             "ai-agi-2026",
			Title:          "AGI achieved by 2026",
			Description:    "Will Artificial General Intelligence be demonstrated by a major AI company by December 31, 2026?",
			Category:       domain.CategoryPolitics,
			Status:         domain.MarketStatusOpen,
			ResolutionDate: date(2026, time.December, 31),
			YesPrice:       0.28,
			NoPrice:        0.72,
			TotalVolume:    2876543,
			PriceHistory:   seedHistory(now, 0.25, 0.27, 0.29, 0.28, 0.27, 0.28, 0.29, 0.28),
		},
		{
			ID:             "us-recession-2025",
			Title:          "US Recession in 2025",
			Description:    "Will the United States enter an official recession during 2025?",
			Category:       domain.CategoryPolitics,
			Status:         domain.MarketStatusOpen,
			ResolutionDate: date(2025, time.December, 31),
			YesPrice:       0.32,
			NoPrice:        0.68,
			TotalVolume:    1876543,
			PriceHistory:   seedHistory(now, 0.30, 0.31, 0.33, 0.32, 0.31, 0.32, 0.33, 0.32),
		},
		{
			ID:             "world-cup-2026",
			Title:          "Brazil wins 2026 World Cup",
			Description:    "Will Brazil win the 2026 FIFA World Cup?",
			Category:       domain.CategorySports,
			Status:         domain.MarketStatusOpen,
			ResolutionDate: date(2026, time.July, 19),
			YesPrice:       0.18,
			NoPrice:        0.82,
			TotalVolume:    987654,
			PriceHistory:   seedHistory(now, 0.20, 0.19, 0.17, 0.18, 0.19, 0.18, 0.17, 0.18),
		},
		{
			ID:             "tesla-500-2025",
			Title:          "Tesla stock hits $500 by 2025",
			Description:    "Will Tesla (TSLA) stock price reach $500 per share by December 31, 2025?",
			Category:       domain.CategoryCommunity,
			Status:         domain.MarketStatusOpen,
			ResolutionDate: date(2025, time.December, 31),
			YesPrice:       0.45,
			NoPrice:        0.55,
			TotalVolume:    654321,
			PriceHistory:   seedHistory(now, 0.43, 0.44, 0.46, 0.45, 0.44, 0.45, 0.46, 0.45),
		},
		{
			ID:             "ethereum-etf-2025",
			Title:          "Ethereum ETF approved in 2025",
			Description:    "Will a spot Ethereum ETF be approved in the United States by December 31, 2025?",
			Category:       domain.CategoryCrypto,
			Status:         domain.MarketStatusResolving,
			ResolutionDate: date(2025, time.December, 31),
			YesPrice:       0.78,
			NoPrice:        0.22,
			TotalVolume:    2345678,
			PriceHistory:   seedHistory(now, 0.75, 0.77, 0.79, 0.78, 0.76, 0.78, 0.79, 0.78),
		},
		{
			ID:             "solana-price-1000",
			Title:          "Solana > $1000 by EOY 2025",
			Description:    "Will Solana (SOL) price exceed $1000 by December 31, 2025?",
			Category:       domain.CategoryCrypto,
			Status:         domain.MarketStatusOpen,
			ResolutionDate: date(2025, time.December, 31),
			YesPrice:       0.12,
			NoPrice:        0.88,
			TotalVolume:    1567890,
			PriceHistory:   seedHistory(now, 0.10, 0.11, 0.13, 0.12, 0.11, 0.12, 0.13, 0.12),
		},
		{
			ID:             "trump-2028",
			Title:          "Trump runs for President in 2028",
			Description:    "Will Donald Trump announce a presidential campaign for the 2028 election?",
			Category:       domain.CategoryPolitics,
			Status:         domain.MarketStatusOpen,
			ResolutionDate: date(2027, time.December, 31),
			YesPrice:       0.34,
			NoPrice:        0.66,
			TotalVolume:    3456789,
			PriceHistory:   seedHistory(now, 0.32, 0.33, 0.35, 0.34, 0.33, 0.34, 0.35, 0.34),
		},
		{
			ID:             "climate-target-2030",
			Title:          "Global CO2 emissions peak by 2030",
			Description:    "Will global CO2 emissions reach their peak and begin declining by 2030?",
			Category:       domain.CategoryPolitics,
			Status:         domain.MarketStatusResolving,
			ResolutionDate: date(2030, time.December, 31),
			YesPrice:       0.23,
			NoPrice:        0.77,
			TotalVolume:    987654,
			PriceHistory:   seedHistory(now, 0.25, 0.24, 0.22, 0.23, 0.24, 0.23, 0.22, 0.23),
		},
		{
			ID:             "superbowl-2026",
			Title:          "Chiefs win Super Bowl 2026",
			Description:    "Will the Kansas City Chiefs win Super Bowl LX in 2026?",
			Category:       domain.CategorySports,
			Status:         domain.MarketStatusOpen,
			ResolutionDate: date(2026, time.February, 8),
			YesPrice:       0.14,
			NoPrice:        0.86,
			TotalVolume:    1234567,
			PriceHistory:   seedHistory(now, 0.16, 0.15, 0.13, 0.14, 0.15, 0.14, 0.13, 0.14),
		},
		{
			ID:             "olympics-2028",
			Title:          "USA tops Olympics medal count 2028",
			Description:    "Will the United States finish with the most total medals at the 2028 Los Angeles Olympics?",
			Category:       domain.CategorySports,
			Status:         domain.MarketStatusOpen,
			ResolutionDate: date(2028, time.August, 12),
			YesPrice:       0.67,
			NoPrice:        0.33,
			TotalVolume:    876543,
			PriceHistory:   seedHistory(now, 0.65, 0.66, 0.68, 0.67, 0.66, 0.67, 0.68, 0.67),
		},
		{
			ID:             "apple-3-trillion",
			Title:          "Apple hits $3T market cap in 2025",
			Description:    "Will Apple Inc. reach a $3 trillion market capitalization during 2025?",
			Category:       domain.CategoryCommunity,
			Status:         domain.MarketStatusResolved,
			ResolutionDate: date(2025, time.January, 15),
			YesPrice:       0.89,
			NoPrice:        0.11,
			TotalVolume:    5432109,
			PriceHistory:   seedHistory(now, 0.87, 0.88, 0.90, 0.89, 0.88, 0.89, 0.90, 0.89),
		},
		{
			ID:             "mars-mission-2026",
			Title:          "SpaceX Mars mission launches 2026",
			Description:    "Will SpaceX successfully launch a crewed mission to Mars in 2026?",
			Category:       domain.CategoryCommunity,
			Status:         domain.MarketStatusOpen,
			ResolutionDate: date(2026, time.December, 31),
			YesPrice:       0.31,
			NoPrice:        0.69,
			TotalVolume:    2109876,
			PriceHistory:   seedHistory(now, 0.29, 0.30, 0.32, 0.31, 0.30, 0.31, 0.32, 0.31),
		},
	}
}
