package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType identifies the kind of ledger entry. Direction is
// encoded by the type, never by the sign of the amounts.
type TransactionType string

const (
	TxBuy      TransactionType = "BUY"
	TxSell     TransactionType = "SELL"
	TxDeposit  TransactionType = "DEPOSIT"
	TxWithdraw TransactionType = "WITHDRAW"
)

// Transaction is an immutable ledger entry created by exactly one settled
// operation. Coin fields are empty for banking entries.
type Transaction struct {
	ID         string          `json:"id"`
	Type       TransactionType `json:"type"`
	CoinID     string          `json:"coin_id,omitempty"`
	CoinName   string          `json:"coin_name,omitempty"`
	CoinSymbol string          `json:"coin_symbol,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      USD             `json:"price"`
	Total      USD             `json:"total"`
	Timestamp  int64           `json:"timestamp"` // epoch milliseconds
}

// NewTradeTransaction records a settled BUY or SELL.
func NewTradeTransaction(typ TransactionType, coin CoinSnapshot, quantity decimal.Decimal, price USD) Transaction {
	return Transaction{
		ID:         uuid.NewString(),
		Type:       typ,
		CoinID:     coin.ID,
		CoinName:   coin.Name,
		CoinSymbol: coin.Symbol,
		Quantity:   quantity,
		Price:      price,
		Total:      price.MulQuantity(quantity),
		Timestamp:  time.Now().UnixMilli(),
	}
}

// NewBankingTransaction records a settled DEPOSIT or WITHDRAW.
func NewBankingTransaction(typ TransactionType, amount USD) Transaction {
	return Transaction{
		ID:        uuid.NewString(),
		Type:      typ,
		Quantity:  amount.Decimal(),
		Total:     amount,
		Timestamp: time.Now().UnixMilli(),
	}
}
