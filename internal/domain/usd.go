package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// USD is an amount denominated in US dollars. The settlement engine
// accepts only USD values, so display-currency amounts cannot reach it
// without an explicit conversion.
type USD struct {
	amount decimal.Decimal
}

// NewUSD wraps a decimal as a USD amount.
func NewUSD(amount decimal.Decimal) USD {
	return USD{amount: amount}
}

// USDFromFloat wraps a float as a USD amount. Intended for tests and
// seed data only.
func USDFromFloat(amount float64) USD {
	return USD{amount: decimal.NewFromFloat(amount)}
}

// Decimal returns the underlying decimal value.
func (u USD) Decimal() decimal.Decimal { return u.amount }

func (u USD) Add(v USD) USD { return USD{amount: u.amount.Add(v.amount)} }
func (u USD) Sub(v USD) USD { return USD{amount: u.amount.Sub(v.amount)} }

// MulQuantity multiplies a per-unit price by a quantity, yielding a total.
func (u USD) MulQuantity(qty decimal.Decimal) USD {
	return USD{amount: u.amount.Mul(qty)}
}

func (u USD) LessThan(v USD) bool    { return u.amount.LessThan(v.amount) }
func (u USD) GreaterThan(v USD) bool { return u.amount.GreaterThan(v.amount) }
func (u USD) IsPositive() bool       { return u.amount.IsPositive() }
func (u USD) IsZero() bool           { return u.amount.IsZero() }
func (u USD) Equal(v USD) bool       { return u.amount.Equal(v.amount) }

// String returns the plain decimal representation.
func (u USD) String() string { return u.amount.String() }

// MarshalJSON encodes the amount as a decimal string so persisted records
// survive without float drift.
func (u USD) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.amount.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted decimal strings and bare numbers;
// older persisted records used the latter.
func (u *USD) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		u.amount = decimal.Zero
		return nil
	}
	parsed, err := decimal.NewFromString(s)
	if err != nil {
		return errors.Wrap(err, "decode usd amount")
	}
	u.amount = parsed
	return nil
}
