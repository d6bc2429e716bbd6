package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novacrypto/tracker/internal/domain"
)

func TestStreamableIDsFiltersAndPreservesOrder(t *testing.T) {
	in := []string{"ethereum", "ghostcoin", "bitcoin", "another-unknown", "solana"}
	assert.Equal(t, []string{"ethereum", "bitcoin", "solana"}, StreamableIDs(in))
	assert.Empty(t, StreamableIDs(nil))
	assert.Empty(t, StreamableIDs([]string{"nothing-mapped"}))
}

func TestSymbolMappingIsBijective(t *testing.T) {
	require.Equal(t, len(idToSymbol), len(symbolToID), "duplicate exchange symbols would drop ticks")
	for id, sym := range idToSymbol {
		assert.Equal(t, id, symbolToID[sym])
	}
}

func TestSubscribeWithoutMappedCoinsIsNoOp(t *testing.T) {
	stream := NewStream(nil)

	sub, err := stream.Subscribe([]string{"ghostcoin"}, func(map[string]domain.USD) {
		t.Fatal("no ticks expected")
	})
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Nil(t, sub.Done())

	// teardown is always safe, even repeated and on never-opened streams
	sub.Unsubscribe()
	sub.Unsubscribe()

	var nilSub *Subscription
	nilSub.Unsubscribe()
	assert.Nil(t, nilSub.Done())
}
