package feed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/novacrypto/tracker/internal/domain"
	"github.com/novacrypto/tracker/internal/market"
	"github.com/novacrypto/tracker/pkg/retrier"
)

// DefaultRefreshInterval is how often the full snapshot is re-fetched to
// pick up listings and metadata the stream cannot provide.
const DefaultRefreshInterval = 60 * time.Second

var errStreamDown = errors.New("price stream unavailable")

// Service composes the polling fetcher and the streaming source into one
// feed that keeps the market store current. The snapshot loop runs on a
// fixed interval regardless of streaming activity; the stream is
// re-subscribed whenever the snapshot's coin set changes.
type Service struct {
	fetcher  *Fetcher
	stream   *Stream
	store    *market.Store
	interval time.Duration
	l        *zap.Logger

	mu         sync.Mutex
	sub        *Subscription
	subKey     string
	generation int
}

// NewService wires the feed components together. A nil stream disables
// streaming entirely; a zero interval selects the default refresh
// cadence.
func NewService(fetcher *Fetcher, stream *Stream, store *market.Store, interval time.Duration, l *zap.Logger) *Service {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		fetcher:  fetcher,
		stream:   stream,
		store:    store,
		interval: interval,
		l:        l,
	}
}

// Run fetches once immediately, then refreshes on the configured interval
// until ctx is cancelled. The stream subscription is torn down on exit.
func (s *Service) Run(ctx context.Context) error {
	s.Refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.Teardown()

	for {
		select {
		case <-ctx.Done():
			s.l.Info("feed stopping")
			return ctx.Err()
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh performs one full snapshot fetch and reconciles the stream
// subscription with the resulting coin set.
func (s *Service) Refresh(ctx context.Context) {
	fetchedAt := time.Now()
	coins := s.fetcher.FetchSnapshot(ctx)
	s.store.ApplySnapshot(coins, fetchedAt)
	s.l.Debug("market snapshot refreshed", zap.Int("coins", len(coins)))

	s.resubscribeIfChanged(ctx)
}

// Teardown closes the stream subscription if one is open. Idempotent.
func (s *Service) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

func (s *Service) teardownLocked() {
	s.generation++
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
	s.subKey = ""
}

func (s *Service) resubscribeIfChanged(ctx context.Context) {
	// a nil stream means streaming is disabled; stay on polling only
	if s.stream == nil {
		return
	}

	ids := StreamableIDs(s.store.IDs())
	key := strings.Join(ids, ",")

	s.mu.Lock()
	defer s.mu.Unlock()

	if key == s.subKey && s.sub != nil {
		return
	}

	s.teardownLocked()
	if len(ids) == 0 {
		return
	}
	s.subscribeLocked(ctx, ids, key)
}

// subscribeLocked opens the stream and arranges a reconnect with backoff
// when the connection drops for any reason other than a deliberate
// teardown or a newer subscription replacing this one.
func (s *Service) subscribeLocked(ctx context.Context, ids []string, key string) {
	sub, err := s.stream.Subscribe(ids, func(prices map[string]domain.USD) {
		s.store.ApplyTicks(prices, time.Now())
	})
	if err != nil {
		s.l.Warn("stream subscribe failed, staying on polling only", zap.Error(err))
		return
	}

	s.sub = sub
	s.subKey = key
	gen := s.generation

	if sub.Done() == nil {
		return
	}

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done():
		}

		s.mu.Lock()
		stale := gen != s.generation
		s.mu.Unlock()
		if stale || ctx.Err() != nil {
			return
		}

		s.l.Warn("price stream disconnected, reconnecting")
		r := retrier.New(retrier.WithMaxRetries(3))
		_ = r.Do(ctx, func(ctx context.Context) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if gen != s.generation {
				return nil
			}
			s.teardownLocked()
			gen = s.generation
			s.subscribeLocked(ctx, ids, key)
			if s.sub == nil {
				return errStreamDown
			}
			return nil
		})
	}()
}
