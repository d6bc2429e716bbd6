package domain

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Position is a held quantity of one coin plus its cost basis.
// Quantity is always positive: a position whose quantity would drop to a
// negligible residue is removed from the ledger instead of being kept at
// zero.
type Position struct {
	ID          string          `json:"id"`
	CoinID      string          `json:"coin_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	AvgBuyPrice USD             `json:"avg_buy_price"`
}

// NewPosition creates a position opened by the first buy of a coin.
func NewPosition(coinID string, quantity decimal.Decimal, price USD) (Position, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return Position{}, errors.New("position quantity must be greater than zero")
	}
	if !price.IsPositive() {
		return Position{}, errors.New("position price must be greater than zero")
	}

	return Position{
		ID:          uuid.NewString(),
		CoinID:      coinID,
		Quantity:    quantity,
		AvgBuyPrice: price,
	}, nil
}

// AddLot folds another purchase into the position, recomputing the
// weighted-average cost basis:
//
//	newAvg = (oldQty*oldAvg + qty*price) / (oldQty + qty)
func (p *Position) AddLot(quantity decimal.Decimal, price USD) {
	total := p.Quantity.Add(quantity)
	existing := p.AvgBuyPrice.MulQuantity(p.Quantity)
	added := price.MulQuantity(quantity)
	p.AvgBuyPrice = NewUSD(existing.Add(added).Decimal().Div(total))
	p.Quantity = total
}

// Reduce removes quantity from the position after a sell. Cost basis is
// per-unit and is unaffected by partial sells.
func (p *Position) Reduce(quantity decimal.Decimal) {
	p.Quantity = p.Quantity.Sub(quantity)
}

// CostBasis returns quantity times average buy price in USD.
func (p *Position) CostBasis() USD {
	return p.AvgBuyPrice.MulQuantity(p.Quantity)
}
