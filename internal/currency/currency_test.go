package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novacrypto/tracker/internal/domain"
)

func TestRateLookup(t *testing.T) {
	table := NewTable()

	assert.True(t, table.Rate("usd").Equal(decimal.NewFromInt(1)))
	assert.True(t, table.Rate("INR").Equal(decimal.NewFromFloat(83.5)), "codes are case-insensitive")
	assert.True(t, table.Rate("xyz").Equal(decimal.NewFromInt(1)), "unknown codes degrade to USD display")

	assert.True(t, table.Known("eur"))
	assert.False(t, table.Known("xyz"))
}

func TestCodesStableOrder(t *testing.T) {
	table := NewTable()
	codes := table.Codes()

	require.Len(t, codes, 7)
	assert.Equal(t, []string{"aud", "cad", "eur", "gbp", "inr", "jpy", "usd"}, codes)
}

func TestSymbols(t *testing.T) {
	table := NewTable()

	tests := []struct {
		code string
		want string
	}{
		{"usd", "$"},
		{"eur", "€"},
		{"gbp", "£"},
		{"inr", "₹"},
		{"jpy", "¥"},
		{"aud", "A$"},
		{"cad", "C$"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Symbol(tt.code))
		})
	}
}

func TestConversionRoundTrip(t *testing.T) {
	table := NewTable()

	display := decimal.NewFromInt(8350)
	usd := table.ToUSD(display, "inr")
	assert.True(t, usd.Equal(domain.USDFromFloat(100)), "got %s", usd)

	back := table.FromUSD(usd, "inr")
	assert.True(t, back.Equal(display))

	// usd display is the identity
	same := table.ToUSD(decimal.NewFromFloat(42.5), "usd")
	assert.True(t, same.Equal(domain.USDFromFloat(42.5)))
}
