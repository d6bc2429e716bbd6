package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPositionValidation(t *testing.T) {
	tests := []struct {
		name     string
		quantity decimal.Decimal
		price    USD
		wantErr  bool
	}{
		{"valid", decimal.NewFromInt(1), USDFromFloat(100), false},
		{"zero quantity", decimal.Zero, USDFromFloat(100), true},
		{"negative quantity", decimal.NewFromInt(-1), USDFromFloat(100), true},
		{"zero price", decimal.NewFromInt(1), USDFromFloat(0), true},
		{"negative price", decimal.NewFromInt(1), USDFromFloat(-1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := NewPosition("bitcoin", tt.quantity, tt.price)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, pos.ID)
			assert.Equal(t, "bitcoin", pos.CoinID)
		})
	}
}

func TestAddLotWeightedAverage(t *testing.T) {
	pos, err := NewPosition("ethereum", decimal.NewFromInt(10), USDFromFloat(2000))
	require.NoError(t, err)

	pos.AddLot(decimal.NewFromInt(10), USDFromFloat(3000))

	assert.True(t, pos.Quantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, pos.AvgBuyPrice.Equal(USDFromFloat(2500)), "avg is %s", pos.AvgBuyPrice)
}

func TestAddLotOrderIndependent(t *testing.T) {
	a, err := NewPosition("bitcoin", decimal.NewFromInt(2), USDFromFloat(50000))
	require.NoError(t, err)
	a.AddLot(decimal.NewFromInt(3), USDFromFloat(60000))

	b, err := NewPosition("bitcoin", decimal.NewFromInt(3), USDFromFloat(60000))
	require.NoError(t, err)
	b.AddLot(decimal.NewFromInt(2), USDFromFloat(50000))

	assert.True(t, a.AvgBuyPrice.Equal(b.AvgBuyPrice),
		"weighted average must not depend on lot order: %s vs %s", a.AvgBuyPrice, b.AvgBuyPrice)
	assert.True(t, a.Quantity.Equal(b.Quantity))
}

func TestReduceKeepsCostBasis(t *testing.T) {
	pos, err := NewPosition("solana", decimal.NewFromInt(100), USDFromFloat(140))
	require.NoError(t, err)

	pos.Reduce(decimal.NewFromInt(40))

	assert.True(t, pos.Quantity.Equal(decimal.NewFromInt(60)))
	assert.True(t, pos.AvgBuyPrice.Equal(USDFromFloat(140)))
	assert.True(t, pos.CostBasis().Equal(USDFromFloat(8400)))
}
