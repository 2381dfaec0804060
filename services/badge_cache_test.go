package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadgeCacheLifecycle(t *testing.T) {
	cache := NewBadgeCache()

	assert.Equal(t, 0, cache.Count(1))

	cache.Add(1, 2)
	cache.Add(1, 1)
	cache.Add(1, 0)  // no-op
	cache.Add(1, -3) // no-op
	assert.Equal(t, 3, cache.Count(1))
	assert.Equal(t, 0, cache.Count(2))

	cache.Invalidate(1)
	assert.Equal(t, 0, cache.Count(1))
}

func TestBadgeCacheConcurrentAdds(t *testing.T) {
	cache := NewBadgeCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Add(7, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, cache.Count(7))
}
