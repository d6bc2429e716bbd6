package feed

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novacrypto/tracker/internal/domain"
	"github.com/novacrypto/tracker/internal/market"
)

// bitcoin has an exchange mapping, so a live stream would subscribe to it
const streamableBody = `[
	{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":64000,
	 "price_change_percentage_24h":1.0,"market_cap":1200000000000,
	 "total_volume":35000000000,"high_24h":65000,"low_24h":63000}
]`

func TestRefreshWithoutStreamStaysOnPolling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(streamableBody))
	}))
	defer srv.Close()

	store := market.NewStore(nil)
	svc := NewService(NewFetcher(srv.URL, nil), nil, store, time.Hour, nil)

	svc.Refresh(t.Context())

	coin, ok := store.Get("bitcoin")
	require.True(t, ok, "polling must still populate the store")
	assert.True(t, coin.Price.Equal(domain.USDFromFloat(64000)))

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Nil(t, svc.sub, "disabled streaming must never open a subscription")
	assert.Empty(t, svc.subKey)
}

func TestTeardownIdempotent(t *testing.T) {
	svc := NewService(NewFetcher("http://127.0.0.1:1/markets", nil), nil, market.NewStore(nil), time.Hour, nil)
	svc.Teardown()
	svc.Teardown()
}
