package advisor

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache memoises advice by a hash of the request that produced it
type Cache struct {
	entries *lru.Cache[string, *Advice]
}

// NewCache creates a cache holding at most size results. A size of 0 or less disables caching.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return &Cache{}, nil
	}
	entries, err := lru.New[string, *Advice](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create advice cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Enabled reports whether results are retained
func (c *Cache) Enabled() bool {
	return c != nil && c.entries != nil
}

// Get returns a cached result
func (c *Cache) Get(key string) (*Advice, bool) {
	if !c.Enabled() {
		return nil, false
	}
	return c.entries.Get(key)
}

// Add stores a result
func (c *Cache) Add(key string, advice *Advice) {
	if !c.Enabled() {
		return
	}
	c.entries.Add(key, advice)
}

// Len returns the number of cached results
func (c *Cache) Len() int {
	if !c.Enabled() {
		return 0
	}
	return c.entries.Len()
}

// Purge drops every cached result
func (c *Cache) Purge() {
	if c.Enabled() {
		c.entries.Purge()
	}
}

type allocationEntry struct {
	Ticker string  `msgpack:"ticker"`
	Pct    float64 `msgpack:"pct"`
}

type requestKey struct {
	Request     Request           `msgpack:"request"`
	Allocations []allocationEntry `msgpack:"allocations"`
}

// Key computes a deterministic SHA-256 key for a request.
// Allocations are encoded as a ticker-sorted list since msgpack only sorts
// the keys of its fast-path map types.
func Key(req Request) (string, error) {
	tickers := req.Allocations.Tickers()
	entries := make([]allocationEntry, len(tickers))
	for i, ticker := range tickers {
		entries[i] = allocationEntry{Ticker: ticker, Pct: req.Allocations[ticker]}
	}
	req.Allocations = nil

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(requestKey{Request: req, Allocations: entries}); err != nil {
		return "", fmt.Errorf("failed to encode advice request: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}
