// Package market implements the in-memory snapshot store for coin market
// data. The price feed is the sole writer; valuation and the web surface
// only read.
package market

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/novacrypto/tracker/internal/domain"
)

// Store holds the latest known snapshot per coin. Full refreshes and
// stream ticks both land here; a refresh never reverts a price that a
// fresher tick already wrote.
type Store struct {
	mu       sync.RWMutex
	coins    map[string]domain.CoinSnapshot
	order    []string
	lastTick map[string]time.Time
	l        *zap.Logger
}

// NewStore creates an empty snapshot store.
func NewStore(l *zap.Logger) *Store {
	if l == nil {
		l = zap.NewNop()
	}
	return &Store{
		coins:    make(map[string]domain.CoinSnapshot),
		lastTick: make(map[string]time.Time),
		l:        l,
	}
}

// ApplySnapshot replaces metadata wholesale from a full market fetch that
// started at fetchedAt. The price field of a coin is kept when a stream
// tick arrived after the fetch began. Coins absent from the new snapshot
// are retained with their last known data so positions in them stay
// valuable.
func (s *Store) ApplySnapshot(coins []domain.CoinSnapshot, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := make([]string, 0, len(coins))
	seen := make(map[string]struct{}, len(coins))

	for _, coin := range coins {
		if tickAt, ok := s.lastTick[coin.ID]; ok && tickAt.After(fetchedAt) {
			if existing, held := s.coins[coin.ID]; held {
				coin.Price = existing.Price
			}
		}
		s.coins[coin.ID] = coin
		order = append(order, coin.ID)
		seen[coin.ID] = struct{}{}
	}

	// keep delisted coins at the tail of the ordering
	for _, id := range s.order {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, held := s.coins[id]; held {
			order = append(order, id)
			seen[id] = struct{}{}
			s.l.Debug("coin missing from snapshot, retaining last known data", zap.String("coin", id))
		}
	}

	s.order = order
}

// ApplyTicks applies a partial price patch from the stream, last write
// wins. Unknown coin ids are ignored. Returns the number of prices
// actually applied.
func (s *Store) ApplyTicks(prices map[string]domain.USD, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for id, price := range prices {
		coin, ok := s.coins[id]
		if !ok {
			continue
		}
		coin.Price = price
		s.coins[id] = coin
		s.lastTick[id] = now
		applied++
	}
	return applied
}

// Get returns a copy of the snapshot for the coin.
func (s *Store) Get(id string) (domain.CoinSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coin, ok := s.coins[id]
	return coin, ok
}

// All returns copies of every snapshot in market order.
func (s *Store) All() []domain.CoinSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CoinSnapshot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.coins[id])
	}
	return out
}

// IDs returns the coin ids currently known, in market order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
