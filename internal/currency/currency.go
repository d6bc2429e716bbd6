// Package currency holds the static display-currency conversion table.
// Rates are relative to a USD base and applied only at the read/command
// boundary; nothing past that boundary ever stores a converted amount.
package currency

import (
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/novacrypto/tracker/internal/domain"
)

// defaultRates mirrors the fixed table the tracker ships with. The feed
// and engine are rate-agnostic, so refreshing these is a data change only.
var defaultRates = map[string]decimal.Decimal{
	"usd": decimal.NewFromInt(1),
	"inr": decimal.NewFromFloat(83.5),
	"eur": decimal.NewFromFloat(0.92),
	"gbp": decimal.NewFromFloat(0.79),
	"jpy": decimal.NewFromFloat(151.5),
	"aud": decimal.NewFromFloat(1.52),
	"cad": decimal.NewFromFloat(1.36),
}

// symbolOverrides disambiguates currencies whose ISO grapheme is a bare
// dollar sign.
var symbolOverrides = map[string]string{
	"aud": "A$",
	"cad": "C$",
}

// Table answers rate and symbol lookups for display currencies.
type Table struct {
	rates map[string]decimal.Decimal
}

// NewTable returns a table seeded with the shipped rates.
func NewTable() *Table {
	rates := make(map[string]decimal.Decimal, len(defaultRates))
	for code, rate := range defaultRates {
		rates[code] = rate
	}
	return &Table{rates: rates}
}

// Rate returns the USD->code exchange rate. Unknown codes fall back to 1
// so a bad config degrades to USD display rather than failing.
func (t *Table) Rate(code string) decimal.Decimal {
	if rate, ok := t.rates[strings.ToLower(code)]; ok {
		return rate
	}
	return decimal.NewFromInt(1)
}

// Known reports whether the code is present in the table.
func (t *Table) Known(code string) bool {
	_, ok := t.rates[strings.ToLower(code)]
	return ok
}

// Codes lists the supported currency codes in stable order.
func (t *Table) Codes() []string {
	codes := make([]string, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Symbol returns the display symbol for the code, resolved through the
// ISO currency registry with a couple of overrides.
func (t *Table) Symbol(code string) string {
	lower := strings.ToLower(code)
	if sym, ok := symbolOverrides[lower]; ok {
		return sym
	}
	if cur := money.GetCurrency(strings.ToUpper(code)); cur != nil {
		return cur.Grapheme
	}
	return "$"
}

// ToUSD converts a display-currency amount to USD. This is the only way
// to construct a USD value from user input.
func (t *Table) ToUSD(amount decimal.Decimal, code string) domain.USD {
	return domain.NewUSD(amount.Div(t.Rate(code)))
}

// FromUSD converts a USD amount to the display currency.
func (t *Table) FromUSD(amount domain.USD, code string) decimal.Decimal {
	return amount.Decimal().Mul(t.Rate(code))
}
