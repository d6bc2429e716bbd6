// Package internal wires the tracker core together: price feed, market
// store, settlement session and the derived portfolio view.
package internal

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/novacrypto/tracker/config"
	"github.com/novacrypto/tracker/internal/currency"
	"github.com/novacrypto/tracker/internal/domain"
	"github.com/novacrypto/tracker/internal/feed"
	"github.com/novacrypto/tracker/internal/market"
	"github.com/novacrypto/tracker/internal/services/analysis"
	"github.com/novacrypto/tracker/internal/services/settlement"
	"github.com/novacrypto/tracker/internal/services/valuation"
	"github.com/novacrypto/tracker/internal/storage/userstate"
	"github.com/novacrypto/tracker/internal/web"
)

// Tracker is one user session of the portfolio tracker. It owns the feed
// loop and exposes the command and read surfaces the UI calls.
type Tracker struct {
	cfg     config.Config
	rates   *currency.Table
	store   *market.Store
	feed    *feed.Service
	session *settlement.Session
	persist *userstate.Store
	web     *web.Server
	l       *zap.Logger
}

// NewTracker builds a tracker from config, restoring persisted state when
// present and seeding a fresh session with the configured opening deposit
// otherwise.
func NewTracker(cfg config.Config, l *zap.Logger) (*Tracker, error) {
	if l == nil {
		l = zap.NewNop()
	}

	rates := currency.NewTable()
	store := market.NewStore(l.Named("market"))

	persist, err := userstate.NewStore(cfg.WALDir)
	if err != nil {
		return nil, errors.Wrap(err, "open user state store")
	}

	state, err := persist.Load(cfg.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "load user state")
	}
	fresh := state == nil
	if fresh {
		state = &domain.UserState{UserID: cfg.UserID}
	}

	session := settlement.NewSession(*state, persist, store, l.Named("settlement"))

	// the opening balance is configured in the display currency, like
	// every other amount crossing the command surface
	if fresh && cfg.StartingBalance.IsPositive() {
		if _, err := session.Deposit(rates.ToUSD(cfg.StartingBalance, cfg.Currency)); err != nil {
			return nil, errors.Wrap(err, "apply opening deposit")
		}
	}

	fetcher := feed.NewFetcher(cfg.SnapshotURL, l.Named("feed"))
	var stream *feed.Stream
	if cfg.Streaming {
		stream = feed.NewStream(l.Named("stream"))
	}
	feedSvc := feed.NewService(fetcher, stream, store, cfg.RefreshInterval, l.Named("feed"))

	t := &Tracker{
		cfg:     cfg,
		rates:   rates,
		store:   store,
		feed:    feedSvc,
		session: session,
		persist: persist,
		l:       l,
	}

	if cfg.WebAddr != "" {
		t.web = web.NewServer(cfg.WebAddr, t)
	}

	return t, nil
}

// Run drives the feed loop (and the web surface when configured) until
// ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) error {
	if t.web != nil {
		go func() {
			if err := t.web.Start(ctx); err != nil {
				t.l.Error("web server stopped", zap.Error(err))
			}
		}()
	}
	return t.feed.Run(ctx)
}

// Close releases the persistence store.
func (t *Tracker) Close() error {
	return t.persist.Close()
}

// Market returns the current snapshot list in market order.
func (t *Tracker) Market() []domain.CoinSnapshot {
	return t.store.All()
}

// Portfolio returns the derived per-position view in the display
// currency.
func (t *Tracker) Portfolio() []domain.PortfolioItem {
	return valuation.Items(t.session.Positions(), t.store, t.rates.Rate(t.cfg.Currency))
}

// Stats returns the aggregate portfolio statistics in the display
// currency.
func (t *Tracker) Stats() domain.PortfolioStats {
	return valuation.Stats(t.Portfolio())
}

// Balance returns the cash balance converted to the display currency.
func (t *Tracker) Balance() decimal.Decimal {
	return t.rates.FromUSD(t.session.Balance(), t.cfg.Currency)
}

// Signals returns trend signals for every coin with enough history.
func (t *Tracker) Signals() []analysis.Signal {
	return analysis.AnalyzeAll(t.store.All())
}

// Buy settles a purchase. Quantity is in coin units; price is per unit in
// the display currency and is converted to USD at this boundary, using
// the price the user confirmed rather than re-reading the market.
func (t *Tracker) Buy(coinID string, quantity, price decimal.Decimal) (settlement.Result, domain.PortfolioStats, error) {
	res, err := t.session.Buy(coinID, quantity, t.rates.ToUSD(price, t.cfg.Currency))
	return res, t.Stats(), err
}

// Sell settles a sale. Same conventions as Buy.
func (t *Tracker) Sell(coinID string, quantity, price decimal.Decimal) (settlement.Result, domain.PortfolioStats, error) {
	res, err := t.session.Sell(coinID, quantity, t.rates.ToUSD(price, t.cfg.Currency))
	return res, t.Stats(), err
}

// DeletePosition liquidates the position in full at the best available
// market price.
func (t *Tracker) DeletePosition(positionID string) (settlement.Result, domain.PortfolioStats, error) {
	res, err := t.session.Liquidate(positionID)
	return res, t.Stats(), err
}

// Deposit adds cash, amount in the display currency.
func (t *Tracker) Deposit(amount decimal.Decimal) (settlement.Result, domain.PortfolioStats, error) {
	res, err := t.session.Deposit(t.rates.ToUSD(amount, t.cfg.Currency))
	return res, t.Stats(), err
}

// Withdraw removes cash, amount in the display currency.
func (t *Tracker) Withdraw(amount decimal.Decimal) (settlement.Result, domain.PortfolioStats, error) {
	res, err := t.session.Withdraw(t.rates.ToUSD(amount, t.cfg.Currency))
	return res, t.Stats(), err
}

// Transactions returns the ledger, most recent first.
func (t *Tracker) Transactions() []domain.Transaction {
	return t.session.State().Transactions
}

// CurrencySymbol returns the display symbol of the configured currency.
func (t *Tracker) CurrencySymbol() string {
	return t.rates.Symbol(t.cfg.Currency)
}
