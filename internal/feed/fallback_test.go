package feed

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackSnapshotIsAlwaysValid(t *testing.T) {
	coins := FallbackSnapshot()
	require.Len(t, coins, len(seedCoins))

	for i, coin := range coins {
		seed := seedCoins[i]
		assert.Equal(t, seed.id, coin.ID)
		assert.Equal(t, seed.symbol, coin.Symbol)
		assert.True(t, coin.Price.IsPositive(), "%s price must be positive", coin.ID)
		assert.Len(t, coin.Sparkline, sparklinePoints)

		// price jitter stays within +-1% of the seed
		seedPrice := decimal.NewFromFloat(seed.price)
		delta := coin.Price.Decimal().Sub(seedPrice).Abs()
		bound := seedPrice.Mul(decimal.NewFromFloat(0.011))
		assert.True(t, delta.LessThanOrEqual(bound),
			"%s jittered too far: %s off %s", coin.ID, coin.Price, seedPrice)

		for _, point := range coin.Sparkline {
			assert.True(t, point.IsPositive())
		}
	}
}

func TestFallbackSnapshotVariesBetweenCalls(t *testing.T) {
	a := FallbackSnapshot()
	b := FallbackSnapshot()
	require.Equal(t, len(a), len(b))

	same := true
	for i := range a {
		if !a[i].Price.Equal(b[i].Price) {
			same = false
			break
		}
	}
	assert.False(t, same, "repeated fallbacks should not be byte-identical")
}
