package domain

// UserState is everything the settlement engine owns for one user:
// cash balance, open positions and the append-only transaction log
// (most-recent-first). It is the unit of persistence.
type UserState struct {
	UserID       string        `json:"user_id"`
	Balance      USD           `json:"balance"`
	Positions    []Position    `json:"positions"`
	Transactions []Transaction `json:"transactions"`
}

// Clone returns a deep copy so callers can hand the state out without
// exposing the engine's internal slices.
func (s UserState) Clone() UserState {
	out := s
	out.Positions = make([]Position, len(s.Positions))
	copy(out.Positions, s.Positions)
	out.Transactions = make([]Transaction, len(s.Transactions))
	copy(out.Transactions, s.Transactions)
	return out
}
