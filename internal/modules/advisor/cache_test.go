package advisor

import (
	"testing"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_StableAcrossMapOrder(t *testing.T) {
	a := DefaultRequest()
	b := DefaultRequest()

	a.Allocations = domain.AllocationMap{}
	b.Allocations = domain.AllocationMap{}
	tickers := []string{"LIT", "URA", "COPX", "DRIV", "FAN", "PICK", "XME", "GRID"}
	for i, t := range tickers {
		a.Allocations[t] = float64(i)
	}
	for i := len(tickers) - 1; i >= 0; i-- {
		b.Allocations[tickers[i]] = float64(i)
	}

	ka, err := Key(a)
	require.NoError(t, err)
	kb, err := Key(b)
	require.NoError(t, err)

	assert.Equal(t, ka, kb)
	assert.Len(t, ka, 64)
}

func TestKey_SingleKeyForRebuiltMaps(t *testing.T) {
	keys := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		req := DefaultRequest()
		req.Allocations = domain.AllocationMap{"LIT": 10, "URA": 20, "COPX": 30, "DRIV": 40}

		key, err := Key(req)
		require.NoError(t, err)
		keys[key] = struct{}{}
	}
	assert.Len(t, keys, 1)
}

func TestKey_DiffersOnAllocation(t *testing.T) {
	a := DefaultRequest()
	a.Allocations = domain.AllocationMap{"LIT": 10}
	b := DefaultRequest()
	b.Allocations = domain.AllocationMap{"LIT": 20}

	ka, err := Key(a)
	require.NoError(t, err)
	kb, err := Key(b)
	require.NoError(t, err)
	assert.NotEqual(t, ka, kb)
}

func TestKey_DiffersOnInput(t *testing.T) {
	a := DefaultRequest()
	b := DefaultRequest()
	b.Preferences.EVPreference = true

	ka, err := Key(a)
	require.NoError(t, err)
	kb, err := Key(b)
	require.NoError(t, err)

	assert.NotEqual(t, ka, kb)
}

func TestCache_Bounded(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)
	assert.True(t, c.Enabled())

	c.Add("a", &Advice{})
	c.Add("b", &Advice{})
	c.Add("c", &Advice{})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry is evicted")

	c.Purge()
	assert.Zero(t, c.Len())
}

func TestCache_Disabled(t *testing.T) {
	c, err := NewCache(0)
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	c.Add("a", &Advice{})
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())

	var nilCache *Cache
	_, ok = nilCache.Get("a")
	assert.False(t, ok)
}
