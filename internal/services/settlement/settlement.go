// Package settlement applies trade and banking operations as atomic
// transitions over {balance, positions, transaction log}. Every amount
// crossing this boundary is already USD; callers convert display-currency
// input before invoking the engine.
package settlement

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/novacrypto/tracker/internal/domain"
)

// Business-rule violations. Expected failures, returned, never panicked.
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrAmountNotPositive    = errors.New("amount must be positive")
	ErrPriceNotPositive     = errors.New("price must be positive")
	ErrPositionNotFound     = errors.New("position not found")
)

// positionEpsilon is the quantity below which a position is treated as
// exhausted and removed, guarding against floating-point residue from the
// UI. Fixed at 1e-8 (satoshi granularity).
var positionEpsilon = decimal.New(1, -8)

// Store persists the session state after every successful operation.
type Store interface {
	Save(state domain.UserState) error
}

// SnapshotReader supplies the best-available market price for
// liquidations.
type SnapshotReader interface {
	Get(id string) (domain.CoinSnapshot, bool)
}

// Result is the outcome of one settled operation.
type Result struct {
	Transaction domain.Transaction
	State       domain.UserState
	// Degraded marks a liquidation that had to fall back to the
	// position's cost basis because the coin has no market snapshot.
	Degraded bool
}

// Session owns one user's mutable financial state. Operations are
// serialized by a single-writer mutex so each commit is atomic even when
// callers arrive from multiple goroutines.
type Session struct {
	mu        sync.Mutex
	state     domain.UserState
	store     Store
	snapshots SnapshotReader
	l         *zap.Logger
}

// NewSession creates a session around previously loaded (or fresh) state.
func NewSession(state domain.UserState, store Store, snapshots SnapshotReader, l *zap.Logger) *Session {
	if l == nil {
		l = zap.NewNop()
	}
	if state.Positions == nil {
		state.Positions = []domain.Position{}
	}
	if state.Transactions == nil {
		state.Transactions = []domain.Transaction{}
	}
	return &Session{state: state, store: store, snapshots: snapshots, l: l}
}

// State returns a deep copy of the current state.
func (s *Session) State() domain.UserState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Balance returns the current cash balance.
func (s *Session) Balance() domain.USD {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Balance
}

// Positions returns a copy of the open positions.
func (s *Session) Positions() []domain.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Position, len(s.state.Positions))
	copy(out, s.state.Positions)
	return out
}

// Buy settles a purchase of quantity units at the given per-unit price.
// The price is the one the user confirmed; the engine never re-reads the
// market mid-operation.
func (s *Session) Buy(coinID string, quantity decimal.Decimal, price domain.USD) (Result, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return Result{}, ErrAmountNotPositive
	}
	if !price.IsPositive() {
		return Result{}, ErrPriceNotPositive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cost := price.MulQuantity(quantity)
	if s.state.Balance.LessThan(cost) {
		return Result{}, errors.Wrapf(ErrInsufficientFunds,
			"buy requires %s, balance is %s", cost, s.state.Balance)
	}

	s.state.Balance = s.state.Balance.Sub(cost)

	if idx := s.findPositionByCoin(coinID); idx >= 0 {
		s.state.Positions[idx].AddLot(quantity, price)
	} else {
		pos, err := domain.NewPosition(coinID, quantity, price)
		if err != nil {
			// unreachable given the validations above
			return Result{}, err
		}
		s.state.Positions = append(s.state.Positions, pos)
	}

	tx := domain.NewTradeTransaction(domain.TxBuy, s.coinInfo(coinID), quantity, price)
	s.commit(tx)

	s.l.Info("buy settled",
		zap.String("coin", coinID),
		zap.String("quantity", quantity.String()),
		zap.String("price", price.String()),
		zap.String("balance", s.state.Balance.String()))

	return Result{Transaction: tx, State: s.state.Clone()}, nil
}

// Sell settles a sale of quantity units at the given per-unit price. The
// remaining position keeps its cost basis; a position reduced to within
// epsilon of zero is removed entirely.
func (s *Session) Sell(coinID string, quantity decimal.Decimal, price domain.USD) (Result, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return Result{}, ErrAmountNotPositive
	}
	if !price.IsPositive() {
		return Result{}, ErrPriceNotPositive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findPositionByCoin(coinID)
	if idx < 0 || s.state.Positions[idx].Quantity.LessThan(quantity) {
		return Result{}, errors.Wrapf(ErrInsufficientHoldings, "sell %s of %s", quantity, coinID)
	}

	tx := s.sellLocked(idx, quantity, price)

	s.l.Info("sell settled",
		zap.String("coin", coinID),
		zap.String("quantity", quantity.String()),
		zap.String("price", price.String()),
		zap.String("balance", s.state.Balance.String()))

	return Result{Transaction: tx, State: s.state.Clone()}, nil
}

// Liquidate closes the identified position in full at the best available
// market price, falling back to the position's own average cost when the
// coin has no snapshot. It is a SELL, not a silent removal: the ledger
// entry is identical in shape.
func (s *Session) Liquidate(positionID string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.state.Positions {
		if s.state.Positions[i].ID == positionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Result{}, errors.Wrapf(ErrPositionNotFound, "position %s", positionID)
	}

	pos := s.state.Positions[idx]
	price := pos.AvgBuyPrice
	degraded := true
	if s.snapshots != nil {
		if coin, ok := s.snapshots.Get(pos.CoinID); ok && coin.Price.IsPositive() {
			price = coin.Price
			degraded = false
		}
	}
	if degraded {
		s.l.Warn("liquidating without market snapshot, using cost basis",
			zap.String("coin", pos.CoinID),
			zap.String("price", price.String()))
	}

	tx := s.sellLocked(idx, pos.Quantity, price)

	s.l.Info("position liquidated",
		zap.String("coin", pos.CoinID),
		zap.String("quantity", tx.Quantity.String()),
		zap.String("price", price.String()),
		zap.Bool("degraded", degraded))

	return Result{Transaction: tx, State: s.state.Clone(), Degraded: degraded}, nil
}

// Deposit adds cash to the balance. No upper bound.
func (s *Session) Deposit(amount domain.USD) (Result, error) {
	if !amount.IsPositive() {
		return Result{}, ErrAmountNotPositive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Balance = s.state.Balance.Add(amount)
	tx := domain.NewBankingTransaction(domain.TxDeposit, amount)
	s.commit(tx)

	s.l.Info("deposit settled",
		zap.String("amount", amount.String()),
		zap.String("balance", s.state.Balance.String()))

	return Result{Transaction: tx, State: s.state.Clone()}, nil
}

// Withdraw removes cash from the balance, rejecting overdrafts.
func (s *Session) Withdraw(amount domain.USD) (Result, error) {
	if !amount.IsPositive() {
		return Result{}, ErrAmountNotPositive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Balance.LessThan(amount) {
		return Result{}, errors.Wrapf(ErrInsufficientFunds,
			"withdraw %s, balance is %s", amount, s.state.Balance)
	}

	s.state.Balance = s.state.Balance.Sub(amount)
	tx := domain.NewBankingTransaction(domain.TxWithdraw, amount)
	s.commit(tx)

	s.l.Info("withdraw settled",
		zap.String("amount", amount.String()),
		zap.String("balance", s.state.Balance.String()))

	return Result{Transaction: tx, State: s.state.Clone()}, nil
}

// sellLocked applies the shared sell transition. Preconditions are the
// caller's responsibility; s.mu must be held.
func (s *Session) sellLocked(idx int, quantity decimal.Decimal, price domain.USD) domain.Transaction {
	pos := &s.state.Positions[idx]
	coinID := pos.CoinID

	s.state.Balance = s.state.Balance.Add(price.MulQuantity(quantity))
	pos.Reduce(quantity)

	if pos.Quantity.LessThanOrEqual(positionEpsilon) {
		s.state.Positions = append(s.state.Positions[:idx], s.state.Positions[idx+1:]...)
	}

	tx := domain.NewTradeTransaction(domain.TxSell, s.coinInfo(coinID), quantity, price)
	s.commit(tx)
	return tx
}

// commit prepends the transaction to the log and persists the new state.
// A persistence failure is logged, not rolled back: the in-memory state
// is the source of truth for the session and the next successful save
// rewrites the full record.
func (s *Session) commit(tx domain.Transaction) {
	s.state.Transactions = append([]domain.Transaction{tx}, s.state.Transactions...)

	if s.store == nil {
		return
	}
	if err := s.store.Save(s.state.Clone()); err != nil {
		s.l.Warn("failed to persist session state", zap.Error(err))
	}
}

func (s *Session) findPositionByCoin(coinID string) int {
	for i := range s.state.Positions {
		if s.state.Positions[i].CoinID == coinID {
			return i
		}
	}
	return -1
}

// coinInfo resolves display fields for the ledger entry. Settlement
// proceeds even for coins with no snapshot (delisted mid-session).
func (s *Session) coinInfo(coinID string) domain.CoinSnapshot {
	if s.snapshots != nil {
		if coin, ok := s.snapshots.Get(coinID); ok {
			return coin
		}
	}
	return domain.CoinSnapshot{ID: coinID, Name: "Unknown", Symbol: "???"}
}
