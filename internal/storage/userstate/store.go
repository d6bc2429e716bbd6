// Package userstate persists per-user session state in a write-ahead
// log. Every settled operation appends the full state record; recovery
// replays the log and keeps the last record per user.
package userstate

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/novacrypto/tracker/internal/domain"
)

const (
	defaultStateDir  = "./wal/state"
	segmentThreshold = 1000
	maxSegments      = 100
	stateKeyPrefix   = "user_state_"
)

// Store is the WAL-backed persistence collaborator of the settlement
// engine.
type Store struct {
	wal *gowal.Wal
	mu  sync.Mutex
}

// NewStore opens (or creates) the WAL under dir. An empty dir selects the
// default location.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = defaultStateDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "state_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init user state WAL")
	}

	return &Store{wal: wal}, nil
}

// Save journals the full state for the user.
func (s *Store) Save(state domain.UserState) error {
	if s == nil || s.wal == nil {
		return errors.New("user state store is not initialized")
	}
	if state.UserID == "" {
		return errors.New("user id is required")
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "marshal user state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Write(s.wal.CurrentIndex()+1, stateKeyPrefix+state.UserID, payload)
}

// Load replays the WAL and returns the last state recorded for the user,
// or nil when none exists. Records written by older versions may lack
// fields; missing slices default to empty and a missing balance to zero.
func (s *Store) Load(userID string) (*domain.UserState, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("user state store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKeyPrefix + userID
	var found *domain.UserState

	for msg := range s.wal.Iterator() {
		if msg.Key != key {
			continue
		}
		var state domain.UserState
		if err := json.Unmarshal(msg.Value, &state); err != nil {
			// a corrupt record must not block recovery; newer records win
			continue
		}
		found = &state
	}

	if found == nil {
		return nil, nil
	}

	found.UserID = userID
	if found.Positions == nil {
		found.Positions = []domain.Position{}
	}
	if found.Transactions == nil {
		found.Transactions = []domain.Transaction{}
	}
	return found, nil
}

// Close flushes and closes the underlying WAL.
func (s *Store) Close() error {
	if s == nil || s.wal == nil {
		return nil
	}
	return s.wal.Close()
}
