// Package feed ingests market data from the outside world: a periodic
// full-snapshot fetch over HTTP and a streaming per-symbol price feed.
// Feed failures degrade to fallback or cached data and never reach the
// settlement or valuation layers.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/novacrypto/tracker/internal/domain"
	"github.com/novacrypto/tracker/pkg/retrier"
)

const (
	// DefaultSnapshotURL is the CoinGecko-compatible markets endpoint the
	// fetcher polls for the full market list.
	DefaultSnapshotURL = "https://api.coingecko.com/api/v3/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=20&page=1&sparkline=true&price_change_percentage=24h"

	fetchTimeout = 8 * time.Second
)

// marketEntry mirrors the wire format of one market object.
type marketEntry struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
	Change24h    float64 `json:"price_change_percentage_24h"`
	Image        string  `json:"image"`
	MarketCap    float64 `json:"market_cap"`
	TotalVolume  float64 `json:"total_volume"`
	High24h      float64 `json:"high_24h"`
	Low24h       float64 `json:"low_24h"`
	Sparkline    *struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

// Fetcher retrieves the full market snapshot with a bounded timeout and a
// synthetic fallback. FetchSnapshot never fails.
type Fetcher struct {
	url     string
	client  *http.Client
	retrier *retrier.Retrier
	l       *zap.Logger
}

// NewFetcher creates a snapshot fetcher for the given endpoint. An empty
// url selects the default endpoint.
func NewFetcher(url string, l *zap.Logger) *Fetcher {
	if url == "" {
		url = DefaultSnapshotURL
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: fetchTimeout},
		retrier: retrier.New(
			retrier.WithMaxRetries(1),
			retrier.WithInitialInterval(500*time.Millisecond),
		),
		l: l,
	}
}

// FetchSnapshot fetches the full market list in USD. Any failure, from
// network errors to malformed payloads, yields the synthetic fallback
// dataset instead of an error.
func (f *Fetcher) FetchSnapshot(ctx context.Context) []domain.CoinSnapshot {
	coins, err := retrier.DoWithData(f.retrier, ctx, f.fetchOnce)
	if err != nil {
		f.l.Warn("market snapshot fetch failed, using fallback data", zap.Error(err))
		return FallbackSnapshot()
	}
	return coins
}

func (f *Fetcher) fetchOnce(ctx context.Context) ([]domain.CoinSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build snapshot request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch market snapshot")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market endpoint returned status %d", resp.StatusCode)
	}

	var entries []marketEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "decode market snapshot")
	}
	if len(entries) == 0 {
		return nil, errors.New("market endpoint returned empty list")
	}

	coins := make([]domain.CoinSnapshot, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" || !validPrice(e.CurrentPrice) {
			f.l.Debug("dropping malformed market entry", zap.String("coin", e.ID))
			continue
		}
		coins = append(coins, convertEntry(e))
	}
	if len(coins) == 0 {
		return nil, errors.New("market snapshot had no valid entries")
	}
	return coins, nil
}

func convertEntry(e marketEntry) domain.CoinSnapshot {
	coin := domain.CoinSnapshot{
		ID:        e.ID,
		Symbol:    e.Symbol,
		Name:      e.Name,
		Price:     domain.USDFromFloat(e.CurrentPrice),
		Change24h: decimal.NewFromFloat(sanitize(e.Change24h)),
		Image:     e.Image,
		MarketCap: decimal.NewFromFloat(sanitize(e.MarketCap)),
		Volume24h: decimal.NewFromFloat(sanitize(e.TotalVolume)),
		High24h:   domain.USDFromFloat(sanitize(e.High24h)),
		Low24h:    domain.USDFromFloat(sanitize(e.Low24h)),
	}
	if e.Sparkline != nil {
		coin.Sparkline = make([]decimal.Decimal, 0, len(e.Sparkline.Price))
		for _, p := range e.Sparkline.Price {
			if validPrice(p) {
				coin.Sparkline = append(coin.Sparkline, decimal.NewFromFloat(p))
			}
		}
	}
	return coin
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
