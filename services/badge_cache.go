// services/badge_cache.go - Unseen-unlock counters.
package services

import "sync"

// BadgeCache tracks how many achievement unlocks a user has not looked at
// yet. The write path adds to it when evaluation unlocks something; reading
// the achievements page invalidates it. It is a cache over derived state,
// never the source of truth.
type BadgeCache struct {
	mu     sync.Mutex
	counts map[uint]int
}

func NewBadgeCache() *BadgeCache {
	return &BadgeCache{counts: make(map[uint]int)}
}

// Add bumps the user's unseen count.
func (c *BadgeCache) Add(userID uint, n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[userID] += n
}

// Count returns the user's unseen count.
func (c *BadgeCache) Count(userID uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[userID]
}

// Invalidate clears the user's count; called when the unlocks are shown.
func (c *BadgeCache) Invalidate(userID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, userID)
}
