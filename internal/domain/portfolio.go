package domain

import "github.com/shopspring/decimal"

// PortfolioItem is the derived view of one position priced against the
// current market snapshot. All monetary fields are already converted to
// the display currency, so they are plain decimals rather than USD.
type PortfolioItem struct {
	Position
	Coin             CoinSnapshot    `json:"coin"`
	AvgBuyPriceConv  decimal.Decimal `json:"avg_buy_price_display"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	Profit           decimal.Decimal `json:"profit"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
}

// PortfolioStats aggregates the derived view. Best/worst performer are nil
// when there are no renderable positions. Never a source of truth for
// quantity or cost basis.
type PortfolioStats struct {
	TotalBalance          decimal.Decimal `json:"total_balance"`
	TotalInvested         decimal.Decimal `json:"total_invested"`
	TotalProfit           decimal.Decimal `json:"total_profit"`
	TotalProfitPercentage decimal.Decimal `json:"total_profit_percentage"`
	BestPerformer         *PortfolioItem  `json:"best_performer,omitempty"`
	WorstPerformer        *PortfolioItem  `json:"worst_performer,omitempty"`
}
