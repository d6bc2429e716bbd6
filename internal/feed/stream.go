package feed

import (
	"strings"
	"sync"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/novacrypto/tracker/internal/domain"
)

// idToSymbol maps internal coin ids to the exchange tickers the stream
// multiplexes. Coins without a mapping simply never stream; their price
// only moves on full refreshes.
var idToSymbol = map[string]string{
	"bitcoin":       "BTCUSDT",
	"ethereum":      "ETHUSDT",
	"solana":        "SOLUSDT",
	"binancecoin":   "BNBUSDT",
	"ripple":        "XRPUSDT",
	"cardano":       "ADAUSDT",
	"avalanche-2":   "AVAXUSDT",
	"polkadot":      "DOTUSDT",
	"dogecoin":      "DOGEUSDT",
	"chainlink":     "LINKUSDT",
	"matic-network": "MATICUSDT",
	"shiba-inu":     "SHIBUSDT",
	"litecoin":      "LTCUSDT",
	"uniswap":       "UNIUSDT",
}

var symbolToID = func() map[string]string {
	m := make(map[string]string, len(idToSymbol))
	for id, sym := range idToSymbol {
		m[sym] = id
	}
	return m
}()

// TickHandler receives a partial price patch keyed by coin id.
type TickHandler func(prices map[string]domain.USD)

// Subscription is the teardown handle of one open stream.
type Subscription struct {
	stop func()
	done <-chan struct{}
	once sync.Once
}

// Unsubscribe closes the underlying connection. Safe to call any number
// of times, including on a subscription that never opened.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.stop == nil {
		return
	}
	s.once.Do(s.stop)
}

// Done is closed when the underlying connection has terminated, whether
// by Unsubscribe or a transport failure. Nil when no connection opened.
func (s *Subscription) Done() <-chan struct{} {
	if s == nil {
		return nil
	}
	return s.done
}

// Stream opens miniTicker subscriptions against the exchange websocket.
type Stream struct {
	l *zap.Logger
}

// NewStream creates the streaming price source.
func NewStream(l *zap.Logger) *Stream {
	if l == nil {
		l = zap.NewNop()
	}
	return &Stream{l: l}
}

// StreamableIDs filters coinIDs down to those with an exchange mapping,
// preserving order.
func StreamableIDs(coinIDs []string) []string {
	out := make([]string, 0, len(coinIDs))
	for _, id := range coinIDs {
		if _, ok := idToSymbol[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Subscribe opens one combined stream for every coin in coinIDs that has
// an exchange mapping; unmapped ids are silently skipped. Each tick is
// delivered to onTicks as a single-coin patch in USD. Malformed ticks are
// logged and dropped. The returned subscription is never nil.
func (s *Stream) Subscribe(coinIDs []string, onTicks TickHandler) (*Subscription, error) {
	symbols := make([]string, 0, len(coinIDs))
	for _, id := range coinIDs {
		if sym, ok := idToSymbol[id]; ok {
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		return &Subscription{}, nil
	}

	handler := func(event *binance.WsMarketStatEvent) {
		if event == nil {
			return
		}
		id, ok := symbolToID[strings.ToUpper(event.Symbol)]
		if !ok {
			return
		}
		price, err := decimal.NewFromString(event.LastPrice)
		if err != nil || !price.IsPositive() {
			s.l.Warn("dropping malformed stream tick",
				zap.String("symbol", event.Symbol),
				zap.String("price", event.LastPrice),
				zap.Error(err))
			return
		}
		onTicks(map[string]domain.USD{id: domain.NewUSD(price)})
	}

	errHandler := func(err error) {
		s.l.Warn("price stream error", zap.Error(err))
	}

	doneC, stopC, err := binance.WsCombinedMarketStatServe(symbols, handler, errHandler)
	if err != nil {
		// non-fatal: the caller keeps running on polled snapshots
		return &Subscription{}, err
	}

	s.l.Info("price stream connected", zap.Int("symbols", len(symbols)))

	return &Subscription{
		stop: func() { close(stopC) },
		done: doneC,
	}, nil
}
