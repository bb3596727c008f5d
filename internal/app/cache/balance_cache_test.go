package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balance_chart/internal/domain/entity"
)

func records(symbols ...string) []entity.BalanceRecord {
	out := make([]entity.BalanceRecord, 0, len(symbols))
	for i, s := range symbols {
		out = append(out, entity.BalanceRecord{Value: float64(i + 1), Symbol: s})
	}
	return out
}

func TestBalanceCache_GetMissingIsPending(t *testing.T) {
	c := New()
	_, ok := c.Get("0xA", "bsc")
	assert.False(t, ok)

	var nilCache *BalanceCache
	_, ok = nilCache.Get("0xA", "bsc")
	assert.False(t, ok)
	assert.Zero(t, nilCache.Len())
}

func TestBalanceCache_SetDoesNotMutateReceiver(t *testing.T) {
	c0 := New()
	c1 := c0.Set("0xA", "bsc", entity.SuccessResult(records("BNB")))
	c2 := c1.Set("0xA", "ethereum", entity.ErrorResult(entity.NoBalancesMessage))
	c3 := c2.Set("0xA", "bsc", entity.SuccessResult(records("BNB", "CAKE")))

	_, ok := c0.Get("0xA", "bsc")
	assert.False(t, ok, "empty snapshot must stay empty")

	r1, ok := c1.Get("0xA", "bsc")
	require.True(t, ok)
	assert.Len(t, r1.Balances, 1)
	_, ok = c1.Get("0xA", "ethereum")
	assert.False(t, ok, "older snapshot must not see later networks")

	r3, ok := c3.Get("0xA", "bsc")
	require.True(t, ok)
	assert.Len(t, r3.Balances, 2)

	r2, ok := c2.Get("0xA", "bsc")
	require.True(t, ok)
	assert.Len(t, r2.Balances, 1, "overwrite must not leak into the previous snapshot")

	assert.Equal(t, 0, c0.Len())
	assert.Equal(t, 1, c1.Len())
	assert.Equal(t, 2, c2.Len())
	assert.Equal(t, 2, c3.Len())
}

func TestBalanceCache_SetIsIdempotent(t *testing.T) {
	result := entity.SuccessResult(records("TKA"))
	once := New().Set("0xA", "bsc", result)
	twice := once.Set("0xA", "bsc", result)

	assert.Equal(t, once.Len(), twice.Len())
	r1, _ := once.Get("0xA", "bsc")
	r2, _ := twice.Get("0xA", "bsc")
	assert.Equal(t, r1, r2)
}

func TestBalanceCache_AddressesAreIndependent(t *testing.T) {
	c := New().
		Set("0xA", "bsc", entity.SuccessResult(records("A"))).
		Set("0xB", "bsc", entity.ErrorResult("boom"))

	ra, ok := c.Get("0xA", "bsc")
	require.True(t, ok)
	assert.False(t, ra.IsError())

	rb, ok := c.Get("0xB", "bsc")
	require.True(t, ok)
	assert.True(t, rb.IsError())
	assert.Equal(t, "boom", rb.Message)
	_, ok = c.Get("0xB", "ethereum")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s := NewStore()
	before := s.Snapshot()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Update(func(c *BalanceCache) *BalanceCache {
				return c.Set("0xA", string(rune('a'+i%26))+"net", entity.SuccessResult(nil))
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 26, s.Snapshot().Len())
	assert.Equal(t, 0, before.Len())
}
