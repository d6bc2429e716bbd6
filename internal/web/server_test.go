package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novacrypto/tracker/internal/domain"
	"github.com/novacrypto/tracker/internal/services/analysis"
)

type stubReader struct{}

func (stubReader) Market() []domain.CoinSnapshot {
	return []domain.CoinSnapshot{{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Price: domain.USDFromFloat(50000)}}
}

func (stubReader) Portfolio() []domain.PortfolioItem {
	return []domain.PortfolioItem{{
		Position:     domain.Position{ID: "pos-1", CoinID: "bitcoin", Quantity: decimal.NewFromInt(1)},
		CurrentValue: decimal.NewFromInt(50000),
	}}
}

func (s stubReader) Stats() domain.PortfolioStats {
	return domain.PortfolioStats{
		TotalBalance:  decimal.NewFromInt(50000),
		TotalInvested: decimal.NewFromInt(40000),
		TotalProfit:   decimal.NewFromInt(10000),
	}
}

func (stubReader) Balance() decimal.Decimal { return decimal.NewFromInt(900) }

func (stubReader) Transactions() []domain.Transaction {
	return []domain.Transaction{{ID: "tx-1", Type: domain.TxBuy}}
}

func (stubReader) Signals() []analysis.Signal {
	return []analysis.Signal{{CoinID: "bitcoin", Trend: analysis.TrendBullish}}
}

func (stubReader) CurrencySymbol() string { return "$" }

func TestPortfolioEndpoint(t *testing.T) {
	srv := NewServer(":0", stubReader{})
	rec := httptest.NewRecorder()

	srv.handlePortfolio(rec, httptest.NewRequest(http.MethodGet, "/portfolio", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload struct {
		Stats          domain.PortfolioStats `json:"stats"`
		Items          []json.RawMessage     `json:"items"`
		CashBalance    decimal.Decimal       `json:"cash_balance"`
		CurrencySymbol string                `json:"currency_symbol"`
		Signals        []analysis.Signal     `json:"signals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, payload.Stats.TotalProfit.Equal(decimal.NewFromInt(10000)))
	assert.Len(t, payload.Items, 1)
	assert.True(t, payload.CashBalance.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, "$", payload.CurrencySymbol)
	require.Len(t, payload.Signals, 1)
	assert.Equal(t, analysis.TrendBullish, payload.Signals[0].Trend)
}

func TestMarketEndpoint(t *testing.T) {
	srv := NewServer(":0", stubReader{})
	rec := httptest.NewRecorder()

	srv.handleMarket(rec, httptest.NewRequest(http.MethodGet, "/market", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var coins []domain.CoinSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &coins))
	require.Len(t, coins, 1)
	assert.Equal(t, "bitcoin", coins[0].ID)
	assert.True(t, coins[0].Price.Equal(domain.USDFromFloat(50000)))
}

func TestTransactionsEndpoint(t *testing.T) {
	srv := NewServer(":0", stubReader{})
	rec := httptest.NewRecorder()

	srv.handleTransactions(rec, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var txs []domain.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxBuy, txs[0].Type)
}
