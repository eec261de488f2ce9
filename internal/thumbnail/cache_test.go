package thumbnail

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLRU_BasicOperations(t *testing.T) {
	cache := NewLRU[string, int](3)

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("c", 3)

	val, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, val)

	val, ok = cache.Get("notfound")
	assert.False(t, ok)
	assert.Equal(t, 0, val)

	assert.Equal(t, 3, cache.Len())
	assert.Equal(t, 3, cache.Cap())
}

func TestLRU_Eviction(t *testing.T) {
	cache := NewLRU[string, int](2)

	assert.False(t, cache.Set("a", 1))
	assert.False(t, cache.Set("b", 2))
	assert.True(t, cache.Set("c", 3), "inserting past capacity should evict")

	_, ok := cache.Get("a")
	assert.False(t, ok, "a should have been evicted")
	assert.Equal(t, []string{"c", "b"}, cache.Keys())
}

func TestLRU_GetUpdatesRecency(t *testing.T) {
	cache := NewLRU[string, int](2)

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Get("a")
	cache.Set("c", 3)

	_, ok := cache.Get("a")
	assert.True(t, ok, "a should still exist")
	_, ok = cache.Get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRU_PeekDoesNotUpdateRecency(t *testing.T) {
	cache := NewLRU[string, int](2)

	cache.Set("a", 1)
	cache.Set("b", 2)

	val, ok := cache.Peek("a")
	require.True(t, ok)
	assert.Equal(t, 1, val)

	cache.Set("c", 3)
	_, ok = cache.Peek("a")
	assert.False(t, ok, "peek must not protect a from eviction")
}

func TestLRU_UpdateExisting(t *testing.T) {
	cache := NewLRU[string, int](2)

	cache.Set("a", 1)
	cache.Set("b", 2)
	assert.False(t, cache.Set("a", 100))

	val, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 100, val)
	assert.Equal(t, 2, cache.Len())
}

func TestLRU_RemoveAndClear(t *testing.T) {
	cache := NewLRU[string, int](3)

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Remove("b")
	cache.Remove("notfound")
	assert.Equal(t, 1, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	assert.Empty(t, cache.Keys())
}

func TestLRU_ZeroCapacity(t *testing.T) {
	cache := NewLRU[string, int](0)
	cache.Set("a", 1)
	cache.Set("b", 2)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, []string{"b"}, cache.Keys())
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	cache := NewLRU[int, int](DefaultCacheSize)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				cache.Set(g*1000+i, i)
				cache.Get(g*1000 + i/2)
				assert.LessOrEqual(t, cache.Len(), DefaultCacheSize)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, DefaultCacheSize, cache.Len())
}

// The cache always holds exactly the most recently touched keys, up to capacity.
func TestLRU_RetainsMostRecentKeys(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 8).Draw(t, "capacity")
		cache := NewLRU[string, int](capacity)

		// model: most recent first
		var model []string
		touch := func(k string) {
			for i, m := range model {
				if m == k {
					model = append(model[:i], model[i+1:]...)
					break
				}
			}
			model = append([]string{k}, model...)
			if len(model) > capacity {
				model = model[:capacity]
			}
		}

		ops := rapid.IntRange(1, 60).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			key := fmt.Sprintf("u%d", rapid.IntRange(0, 12).Draw(t, "key"))
			if rapid.Bool().Draw(t, "get") {
				if _, ok := cache.Get(key); ok {
					touch(key)
				}
				continue
			}
			cache.Set(key, i)
			touch(key)
		}

		if cache.Len() > capacity {
			t.Fatalf("len %d exceeds capacity %d", cache.Len(), capacity)
		}
		got := cache.Keys()
		if fmt.Sprint(got) != fmt.Sprint(model) {
			t.Fatalf("keys = %v, want %v", got, model)
		}
	})
}
