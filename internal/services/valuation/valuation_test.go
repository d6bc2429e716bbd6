package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novacrypto/tracker/internal/domain"
)

type fakeSnapshots map[string]domain.CoinSnapshot

func (f fakeSnapshots) Get(id string) (domain.CoinSnapshot, bool) {
	coin, ok := f[id]
	return coin, ok
}

func position(coinID string, qty, avg float64) domain.Position {
	return domain.Position{
		ID:          coinID + "-pos",
		CoinID:      coinID,
		Quantity:    decimal.NewFromFloat(qty),
		AvgBuyPrice: domain.USDFromFloat(avg),
	}
}

var one = decimal.NewFromInt(1)

func TestItemsPricing(t *testing.T) {
	snapshots := fakeSnapshots{
		"bitcoin": {ID: "bitcoin", Name: "Bitcoin", Price: domain.USDFromFloat(60000)},
	}
	items := Items([]domain.Position{position("bitcoin", 2, 50000)}, snapshots, one)

	require.Len(t, items, 1)
	item := items[0]
	assert.True(t, item.CurrentValue.Equal(decimal.NewFromInt(120000)))
	assert.True(t, item.TotalCost.Equal(decimal.NewFromInt(100000)))
	assert.True(t, item.Profit.Equal(decimal.NewFromInt(20000)))
	assert.True(t, item.ProfitPercentage.Equal(decimal.NewFromInt(20)), "got %s", item.ProfitPercentage)
}

func TestItemsAppliesDisplayRate(t *testing.T) {
	snapshots := fakeSnapshots{
		"bitcoin": {ID: "bitcoin", Price: domain.USDFromFloat(60000)},
	}
	rate := decimal.NewFromFloat(0.92) // eur

	items := Items([]domain.Position{position("bitcoin", 1, 50000)}, snapshots, rate)

	require.Len(t, items, 1)
	assert.True(t, items[0].CurrentValue.Equal(decimal.NewFromInt(60000).Mul(rate)))
	assert.True(t, items[0].AvgBuyPriceConv.Equal(decimal.NewFromInt(50000).Mul(rate)))
	assert.True(t, items[0].ProfitPercentage.Equal(decimal.NewFromInt(20)),
		"percentage is rate-invariant")
}

func TestItemsSkipsCoinsWithoutSnapshot(t *testing.T) {
	snapshots := fakeSnapshots{
		"bitcoin": {ID: "bitcoin", Price: domain.USDFromFloat(60000)},
	}
	items := Items([]domain.Position{
		position("bitcoin", 1, 50000),
		position("ghostcoin", 100, 3),
	}, snapshots, one)

	require.Len(t, items, 1, "positions without market data are excluded from the view")
	assert.Equal(t, "bitcoin", items[0].CoinID)
}

func TestStatsAggregation(t *testing.T) {
	snapshots := fakeSnapshots{
		"bitcoin":  {ID: "bitcoin", Price: domain.USDFromFloat(60000)},
		"ethereum": {ID: "ethereum", Price: domain.USDFromFloat(2500)},
	}
	items := Items([]domain.Position{
		position("bitcoin", 1, 50000),  // +20%
		position("ethereum", 10, 3000), // -16.67%
	}, snapshots, one)

	stats := Stats(items)

	assert.True(t, stats.TotalBalance.Equal(decimal.NewFromInt(85000)))
	assert.True(t, stats.TotalInvested.Equal(decimal.NewFromInt(80000)))
	assert.True(t, stats.TotalProfit.Equal(decimal.NewFromInt(5000)))

	require.NotNil(t, stats.BestPerformer)
	require.NotNil(t, stats.WorstPerformer)
	assert.Equal(t, "bitcoin", stats.BestPerformer.CoinID)
	assert.Equal(t, "ethereum", stats.WorstPerformer.CoinID)
}

func TestStatsEmptyPortfolio(t *testing.T) {
	stats := Stats(nil)

	assert.True(t, stats.TotalBalance.IsZero())
	assert.True(t, stats.TotalProfitPercentage.IsZero(), "zero invested must not divide by zero")
	assert.Nil(t, stats.BestPerformer)
	assert.Nil(t, stats.WorstPerformer)
}

func TestStatsSinglePositionIsBestAndWorst(t *testing.T) {
	snapshots := fakeSnapshots{
		"bitcoin": {ID: "bitcoin", Price: domain.USDFromFloat(60000)},
	}
	stats := Stats(Items([]domain.Position{position("bitcoin", 1, 50000)}, snapshots, one))

	require.NotNil(t, stats.BestPerformer)
	require.NotNil(t, stats.WorstPerformer)
	assert.Equal(t, stats.BestPerformer.CoinID, stats.WorstPerformer.CoinID)
}
