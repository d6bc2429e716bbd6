// Package domain defines core data structures used throughout the tracker.
package domain

import "github.com/shopspring/decimal"

// CoinSnapshot is the latest known market view of one tradable asset.
// Monetary fields are denominated in USD; display-currency conversion
// happens only at the read boundary.
type CoinSnapshot struct {
	ID        string            `json:"id"`
	Symbol    string            `json:"symbol"`
	Name      string            `json:"name"`
	Price     USD               `json:"price"`
	Change24h decimal.Decimal   `json:"change_24h"`
	Image     string            `json:"image,omitempty"`
	MarketCap decimal.Decimal   `json:"market_cap"`
	Volume24h decimal.Decimal   `json:"volume_24h"`
	High24h   USD               `json:"high_24h"`
	Low24h    USD               `json:"low_24h"`
	Sparkline []decimal.Decimal `json:"sparkline,omitempty"`
}
