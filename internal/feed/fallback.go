package feed

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/novacrypto/tracker/internal/domain"
)

const sparklinePoints = 168 // hourly points over 7 days

// seedCoin is one entry of the deterministic fallback dataset used when
// the market endpoint is unreachable or returns garbage.
type seedCoin struct {
	id        string
	symbol    string
	name      string
	price     float64
	change24h float64
	image     string
	marketCap float64
	volume24h float64
	high24h   float64
	low24h    float64
}

var seedCoins = []seedCoin{
	{"bitcoin", "BTC", "Bitcoin", 64230.50, 2.4, "https://cryptologos.cc/logos/bitcoin-btc-logo.png", 1200000000000, 35000000000, 65000, 63000},
	{"ethereum", "ETH", "Ethereum", 3450.12, -1.2, "https://cryptologos.cc/logos/ethereum-eth-logo.png", 400000000000, 15000000000, 3550, 3400},
	{"solana", "SOL", "Solana", 145.60, 5.8, "https://cryptologos.cc/logos/solana-sol-logo.png", 65000000000, 4000000000, 150, 138},
	{"binancecoin", "BNB", "BNB", 590.20, 0.5, "https://cryptologos.cc/logos/bnb-bnb-logo.png", 87000000000, 1200000000, 600, 585},
	{"ripple", "XRP", "XRP", 0.62, -0.8, "https://cryptologos.cc/logos/xrp-xrp-logo.png", 34000000000, 1500000000, 0.64, 0.61},
	{"cardano", "ADA", "Cardano", 0.45, 1.1, "https://cryptologos.cc/logos/cardano-ada-logo.png", 16000000000, 400000000, 0.46, 0.44},
	{"avalanche-2", "AVAX", "Avalanche", 35.40, 3.2, "https://cryptologos.cc/logos/avalanche-avax-logo.png", 13000000000, 600000000, 36.50, 34.00},
	{"polkadot", "DOT", "Polkadot", 7.20, -2.5, "https://cryptologos.cc/logos/polkadot-new-dot-logo.png", 10000000000, 250000000, 7.50, 7.10},
	{"dogecoin", "DOGE", "Dogecoin", 0.12, 8.4, "https://cryptologos.cc/logos/dogecoin-doge-logo.png", 18000000000, 2000000000, 0.13, 0.11},
	{"chainlink", "LINK", "Chainlink", 13.50, -1.5, "https://cryptologos.cc/logos/chainlink-link-logo.png", 8000000000, 350000000, 14.00, 13.20},
	{"matic-network", "MATIC", "Polygon", 0.70, 0.8, "https://cryptologos.cc/logos/polygon-matic-logo.png", 6500000000, 280000000, 0.72, 0.69},
	{"shiba-inu", "SHIB", "Shiba Inu", 0.000024, 4.2, "https://cryptologos.cc/logos/shiba-inu-shib-logo.png", 14000000000, 500000000, 0.000025, 0.000023},
	{"litecoin", "LTC", "Litecoin", 85.20, 0.3, "https://cryptologos.cc/logos/litecoin-ltc-logo.png", 6000000000, 400000000, 86.50, 84.00},
	{"uniswap", "UNI", "Uniswap", 10.50, -0.5, "https://cryptologos.cc/logos/uniswap-uni-logo.png", 7500000000, 150000000, 11.00, 10.20},
}

// FallbackSnapshot builds the synthetic market list from the seed set.
// Prices get a small jitter so repeated fallbacks still look alive, and
// the sparkline is a bounded random walk around the seed price. It cannot
// fail and always yields positive, finite prices.
func FallbackSnapshot() []domain.CoinSnapshot {
	coins := make([]domain.CoinSnapshot, 0, len(seedCoins))
	for _, seed := range seedCoins {
		price := seed.price * (1 + (rand.Float64()*0.02 - 0.01)) // +-1%

		sparkline := make([]decimal.Decimal, sparklinePoints)
		for i := range sparkline {
			jittered := seed.price * (1 + (rand.Float64()*0.1 - 0.05)) // +-5%
			sparkline[i] = decimal.NewFromFloat(jittered)
		}

		coins = append(coins, domain.CoinSnapshot{
			ID:        seed.id,
			Symbol:    seed.symbol,
			Name:      seed.name,
			Price:     domain.USDFromFloat(price),
			Change24h: decimal.NewFromFloat(seed.change24h),
			Image:     seed.image,
			MarketCap: decimal.NewFromFloat(seed.marketCap),
			Volume24h: decimal.NewFromFloat(seed.volume24h),
			High24h:   domain.USDFromFloat(seed.high24h),
			Low24h:    domain.USDFromFloat(seed.low24h),
			Sparkline: sparkline,
		})
	}
	return coins
}
