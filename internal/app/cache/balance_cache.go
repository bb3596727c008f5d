package cache

import "balance_chart/internal/domain/entity"

// BalanceCache maps address -> network -> committed FetchResult.
// A value is never modified after construction: Set returns a new cache that shares
// untouched address maps with its parent, so older snapshots stay consistent.
type BalanceCache struct {
	entries map[string]map[string]entity.FetchResult
	size    int
}

// New returns an empty cache.
func New() *BalanceCache {
	return &BalanceCache{entries: map[string]map[string]entity.FetchResult{}}
}

// Get returns the committed result for (address, network). The boolean is false while the pair is pending.
func (c *BalanceCache) Get(address, network string) (entity.FetchResult, bool) {
	if c == nil {
		return entity.FetchResult{}, false
	}
	byNetwork, ok := c.entries[address]
	if !ok {
		return entity.FetchResult{}, false
	}
	r, ok := byNetwork[network]
	return r, ok
}

// Set returns a copy of c with result stored under (address, network). Existing entries for the
// same pair are replaced.
func (c *BalanceCache) Set(address, network string, result entity.FetchResult) *BalanceCache {
	if c == nil {
		c = New()
	}

	next := &BalanceCache{
		entries: make(map[string]map[string]entity.FetchResult, len(c.entries)+1),
		size:    c.size,
	}
	for addr, byNetwork := range c.entries {
		next.entries[addr] = byNetwork
	}

	old := c.entries[address]
	byNetwork := make(map[string]entity.FetchResult, len(old)+1)
	for n, r := range old {
		byNetwork[n] = r
	}
	if _, exists := byNetwork[network]; !exists {
		next.size++
	}
	byNetwork[network] = result
	next.entries[address] = byNetwork

	return next
}

// Len returns the number of (address, network) entries.
func (c *BalanceCache) Len() int {
	if c == nil {
		return 0
	}
	return c.size
}

