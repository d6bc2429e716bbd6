// Package web exposes the read-only portfolio surface over HTTP: a JSON
// snapshot endpoint and an SSE stream of derived stats. It never mutates
// state; commands enter the core through the Tracker API, not here.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/novacrypto/tracker/internal/domain"
	"github.com/novacrypto/tracker/internal/services/analysis"
)

const statsPollInterval = 2 * time.Second

// PortfolioReader is the read surface the server publishes.
type PortfolioReader interface {
	Market() []domain.CoinSnapshot
	Portfolio() []domain.PortfolioItem
	Stats() domain.PortfolioStats
	Balance() decimal.Decimal
	Transactions() []domain.Transaction
	Signals() []analysis.Signal
	CurrencySymbol() string
}

// Server serves the JSON and SSE endpoints.
type Server struct {
	Addr   string
	Reader PortfolioReader
}

// NewServer creates a new web server instance.
func NewServer(addr string, reader PortfolioReader) *Server {
	return &Server{Addr: addr, Reader: reader}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/portfolio", s.handlePortfolio)
	mux.HandleFunc("/portfolio/stream", s.handleStatsStream)
	mux.HandleFunc("/market", s.handleMarket)
	mux.HandleFunc("/transactions", s.handleTransactions)

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// portfolioPayload is the full derived view served to UIs.
type portfolioPayload struct {
	Stats          domain.PortfolioStats  `json:"stats"`
	Items          []domain.PortfolioItem `json:"items"`
	CashBalance    decimal.Decimal        `json:"cash_balance"`
	CurrencySymbol string                 `json:"currency_symbol"`
	Signals        []analysis.Signal      `json:"signals,omitempty"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, portfolioPayload{
		Stats:          s.Reader.Stats(),
		Items:          s.Reader.Portfolio(),
		CashBalance:    s.Reader.Balance(),
		CurrencySymbol: s.Reader.CurrencySymbol(),
		Signals:        s.Reader.Signals(),
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Reader.Market())
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Reader.Transactions())
}

func (s *Server) handleStatsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// comment heartbeat so proxies keep the connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(statsPollInterval)
	defer pollTicker.Stop()

	send := func() {
		payload, err := json.Marshal(s.Reader.Stats())
		if err != nil {
			log.Printf("stats stream marshal: %v", err)
			return
		}
		fmt.Fprintf(w, "event: stats\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	send()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			send()
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json response: %v", err)
	}
}
