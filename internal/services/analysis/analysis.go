// Package analysis derives trend signals from sparkline price history.
// It uses the cinar/indicator library for EMA and RSI and classifies each
// coin's 7-day momentum.
package analysis

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/novacrypto/tracker/internal/domain"
)

// Trend classifies a coin's recent price momentum.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

const (
	emaPeriod = 20
	rsiPeriod = 14
	// minPoints covers the indicator warmup.
	minPoints = emaPeriod + rsiPeriod
)

var (
	rsiOverbought = decimal.NewFromInt(70)
	rsiOversold   = decimal.NewFromInt(30)
)

// Signal is the derived trend view of one coin.
type Signal struct {
	CoinID string          `json:"coin_id"`
	Trend  Trend           `json:"trend"`
	EMA20  decimal.Decimal `json:"ema_20"`
	RSI14  decimal.Decimal `json:"rsi_14"`
}

// Analyze computes the trend signal for one coin from its sparkline.
// Coins without enough history return an error; callers skip them.
func Analyze(coin domain.CoinSnapshot) (Signal, error) {
	if len(coin.Sparkline) < minPoints {
		return Signal{}, errors.Errorf("not enough sparkline points for %s: need %d, got %d",
			coin.ID, minPoints, len(coin.Sparkline))
	}

	closes := make([]float64, len(coin.Sparkline))
	for i, p := range coin.Sparkline {
		closes[i], _ = p.Float64()
	}

	ema := trend.NewEmaWithPeriod[float64](emaPeriod)
	emaValues := helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes)))
	if len(emaValues) == 0 {
		return Signal{}, errors.Errorf("ema produced no values for %s", coin.ID)
	}

	rsi := momentum.NewRsiWithPeriod[float64](rsiPeriod)
	rsiValues := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes)))
	if len(rsiValues) == 0 {
		return Signal{}, errors.Errorf("rsi produced no values for %s", coin.ID)
	}

	lastEMA := decimal.NewFromFloat(emaValues[len(emaValues)-1])
	lastRSI := decimal.NewFromFloat(rsiValues[len(rsiValues)-1])
	lastPrice := coin.Sparkline[len(coin.Sparkline)-1]

	return Signal{
		CoinID: coin.ID,
		Trend:  classify(lastPrice, lastEMA, lastRSI),
		EMA20:  lastEMA,
		RSI14:  lastRSI,
	}, nil
}

// AnalyzeAll computes signals for every coin with enough history.
func AnalyzeAll(coins []domain.CoinSnapshot) []Signal {
	signals := make([]Signal, 0, len(coins))
	for _, coin := range coins {
		signal, err := Analyze(coin)
		if err != nil {
			continue
		}
		signals = append(signals, signal)
	}
	return signals
}

// classify combines price-vs-EMA direction with RSI extremes. RSI
// extremes override the EMA read: an overbought coin above its EMA is
// still overbought.
func classify(price, ema, rsi decimal.Decimal) Trend {
	switch {
	case rsi.GreaterThanOrEqual(rsiOverbought):
		return TrendBearish
	case rsi.LessThanOrEqual(rsiOversold):
		return TrendBullish
	case price.GreaterThan(ema):
		return TrendBullish
	case price.LessThan(ema):
		return TrendBearish
	default:
		return TrendNeutral
	}
}
