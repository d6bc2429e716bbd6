// Package valuation derives the portfolio view from positions, the
// market snapshot and the display-currency rate. It is pure: no state,
// no side effects, recomputed on every read.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/novacrypto/tracker/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// SnapshotReader is the slice of the market store valuation reads.
type SnapshotReader interface {
	Get(id string) (domain.CoinSnapshot, bool)
}

// Items prices every position against the current snapshot, converted to
// the display currency at the given rate. Positions whose coin has no
// snapshot are excluded from the view but stay untouched in the ledger.
func Items(positions []domain.Position, snapshots SnapshotReader, rate decimal.Decimal) []domain.PortfolioItem {
	items := make([]domain.PortfolioItem, 0, len(positions))
	for _, pos := range positions {
		coin, ok := snapshots.Get(pos.CoinID)
		if !ok {
			continue
		}

		currentValue := pos.Quantity.Mul(coin.Price.Decimal()).Mul(rate)
		avgConv := pos.AvgBuyPrice.Decimal().Mul(rate)
		totalCost := pos.Quantity.Mul(avgConv)
		profit := currentValue.Sub(totalCost)

		items = append(items, domain.PortfolioItem{
			Position:         pos,
			Coin:             coin,
			AvgBuyPriceConv:  avgConv,
			CurrentValue:     currentValue,
			TotalCost:        totalCost,
			Profit:           profit,
			ProfitPercentage: percentage(profit, totalCost),
		})
	}
	return items
}

// Stats aggregates the derived items. Best/worst performer are nil when
// there is nothing to rank.
func Stats(items []domain.PortfolioItem) domain.PortfolioStats {
	stats := domain.PortfolioStats{
		TotalBalance:          decimal.Zero,
		TotalInvested:         decimal.Zero,
		TotalProfit:           decimal.Zero,
		TotalProfitPercentage: decimal.Zero,
	}

	for _, item := range items {
		stats.TotalBalance = stats.TotalBalance.Add(item.CurrentValue)
		stats.TotalInvested = stats.TotalInvested.Add(item.TotalCost)
	}
	stats.TotalProfit = stats.TotalBalance.Sub(stats.TotalInvested)
	stats.TotalProfitPercentage = percentage(stats.TotalProfit, stats.TotalInvested)

	for i := range items {
		item := items[i]
		if stats.BestPerformer == nil || item.ProfitPercentage.GreaterThan(stats.BestPerformer.ProfitPercentage) {
			best := item
			stats.BestPerformer = &best
		}
		if stats.WorstPerformer == nil || item.ProfitPercentage.LessThan(stats.WorstPerformer.ProfitPercentage) {
			worst := item
			stats.WorstPerformer = &worst
		}
	}

	return stats
}

// percentage returns profit/cost*100 with an explicit zero-cost guard so
// the view never carries NaN or infinity.
func percentage(profit, cost decimal.Decimal) decimal.Decimal {
	if cost.IsZero() {
		return decimal.Zero
	}
	return profit.Div(cost).Mul(hundred)
}
