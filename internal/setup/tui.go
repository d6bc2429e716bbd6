// Package setup implements the first-run configuration wizard.
package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/novacrypto/tracker/internal/currency"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// wizardConfig mirrors the YAML layout config.Get consumes.
type wizardConfig struct {
	UserID          string `yaml:"user_id"`
	Currency        string `yaml:"currency"`
	RefreshInterval string `yaml:"refresh_interval"`
	Streaming       bool   `yaml:"streaming"`
	WebAddr         string `yaml:"web_addr,omitempty"`
	StartingBalance string `yaml:"starting_balance"`
}

// RunTUI launches the terminal configuration wizard and writes the
// resulting YAML to path.
func RunTUI(path string) error {
	var (
		userID          string
		currencyCode    string
		refreshStr      string
		streaming       bool
		webAddr         string
		startBalanceStr string
		confirm         bool
	)

	// defaults
	userID = "local"
	refreshStr = "60s"
	streaming = true
	startBalanceStr = "10000"

	rates := currency.NewTable()
	currencyOptions := make([]huh.Option[string], 0, len(rates.Codes()))
	for _, code := range rates.Codes() {
		currencyOptions = append(currencyOptions,
			huh.NewOption(fmt.Sprintf("%s (%s)", code, rates.Symbol(code)), code))
	}

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("TRACKER CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Set up your portfolio session.\n"))

	fmt.Println(stepStyle.Render("STEP 1: SESSION"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("User ID").
				Description("Identifies the persisted session").
				Value(&userID).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("user id cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Opening Balance").
				Description("Deposited into a fresh session, in your display currency (e.g. 10000)").
				Value(&startBalanceStr).
				Validate(func(s string) error {
					amount, err := decimal.NewFromString(s)
					if err != nil {
						return fmt.Errorf("invalid amount")
					}
					if amount.IsNegative() {
						return fmt.Errorf("balance cannot be negative")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRACKER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: DISPLAY CURRENCY"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Display currency").
				Options(currencyOptions...).
				Value(&currencyCode),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRACKER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: MARKET FEED"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Snapshot Refresh Interval").
				Description("Duration string (e.g. 30s, 60s, 5m)").
				Value(&refreshStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
			huh.NewConfirm().
				Title("Enable live price streaming?").
				Value(&streaming),
			huh.NewInput().
				Title("Web Address").
				Description("Listen address for the read-only web surface, empty disables (e.g. :8080)").
				Value(&webAddr),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRACKER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("REVIEW"))
	fmt.Printf("  user: %s\n  currency: %s\n  refresh: %s\n  streaming: %v\n  web: %s\n  opening balance: %s\n\n",
		userID, currencyCode, refreshStr, streaming, webAddr, startBalanceStr)
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Write configuration to %s?", path)).
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup aborted")
	}

	out, err := yaml.Marshal(wizardConfig{
		UserID:          userID,
		Currency:        currencyCode,
		RefreshInterval: refreshStr,
		Streaming:       streaming,
		WebAddr:         webAddr,
		StartingBalance: startBalanceStr,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
