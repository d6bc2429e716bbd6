// Command tracker runs the portfolio valuation and trade settlement
// engine. It keeps a simulated USD wallet, values positions against a
// live market snapshot refreshed from the price API and a websocket
// tick stream, and persists every confirmed trade to a write-ahead log.
//
// Usage:
//
//	tracker --config config.yaml
//	tracker (uses CLI arguments)
//	tracker --setup (interactive configuration wizard)
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/novacrypto/tracker/config"
	"github.com/novacrypto/tracker/internal"
	"github.com/novacrypto/tracker/internal/setup"
	"go.uber.org/zap"
)

const setupConfigPath = "config.yaml"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--setup" {
		if err := setup.RunTUI(setupConfigPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	tracker, err := internal.NewTracker(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer tracker.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tracker.Run(ctx); err != nil {
		logger.Fatal("tracker stopped", zap.Error(err))
	}
}
