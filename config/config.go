// Package config loads tracker configuration from a YAML file or CLI
// flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of one tracker instance.
type Config struct {
	UserID          string
	Currency        string
	SnapshotURL     string
	RefreshInterval time.Duration
	Streaming       bool
	WALDir          string
	WebAddr         string
	StartingBalance decimal.Decimal
}

// configTmp is the YAML shadow of Config; decimal and default handling
// happens during conversion.
type configTmp struct {
	UserID             string `yaml:"user_id"`
	Currency           string `yaml:"currency"`
	SnapshotURL        string `yaml:"snapshot_url,omitempty"`
	RefreshIntervalStr string `yaml:"refresh_interval,omitempty"`
	Streaming          *bool  `yaml:"streaming,omitempty"`
	WALDir             string `yaml:"wal_dir,omitempty"`
	WebAddr            string `yaml:"web_addr,omitempty"`
	StartingBalanceStr string `yaml:"starting_balance,omitempty"`
}

// Get resolves configuration: --config selects a YAML file, otherwise
// CLI flags apply.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	userID := flag.String("user", "local", "user id owning the session")
	cur := flag.String("currency", "usd", "display currency code, example: eur")
	refresh := flag.Duration("refreshinterval", 60*time.Second, "full market snapshot refresh interval")
	streaming := flag.Bool("streaming", true, "enable the websocket price stream")
	walDir := flag.String("waldir", "", "directory for the state WAL")
	webAddr := flag.String("webaddr", "", "listen address of the read-only web surface, empty disables")
	startBalance := flag.String("startbalance", "10000", "opening deposit in the display currency for a fresh session")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	balance, err := decimal.NewFromString(*startBalance)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --startbalance provided, --startbalance=%s", *startBalance)
	}

	cfg := Config{
		UserID:          *userID,
		Currency:        *cur,
		RefreshInterval: *refresh,
		Streaming:       *streaming,
		WALDir:          *walDir,
		WebAddr:         *webAddr,
		StartingBalance: balance,
	}
	return cfg, cfg.validate()
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Config{
		UserID:          tmp.UserID,
		Currency:        tmp.Currency,
		SnapshotURL:     tmp.SnapshotURL,
		RefreshInterval: 60 * time.Second,
		Streaming:       true,
		WALDir:          tmp.WALDir,
		WebAddr:         tmp.WebAddr,
		StartingBalance: decimal.Zero,
	}
	if tmp.Streaming != nil {
		cfg.Streaming = *tmp.Streaming
	}
	if tmp.RefreshIntervalStr != "" {
		interval, err := time.ParseDuration(tmp.RefreshIntervalStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid refresh_interval %q in %s", tmp.RefreshIntervalStr, path)
		}
		cfg.RefreshInterval = interval
	}
	if tmp.StartingBalanceStr != "" {
		balance, err := decimal.NewFromString(tmp.StartingBalanceStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid starting_balance %q in %s", tmp.StartingBalanceStr, path)
		}
		cfg.StartingBalance = balance
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if c.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if c.StartingBalance.IsNegative() {
		return fmt.Errorf("starting balance cannot be negative")
	}
	return nil
}
