package inmemory

import (
	"sync"
	"time"

	familydomain "famconomy-go/internal/domain/family"
)

type InMemoryFamilyCache struct {
	mu    sync.RWMutex
	items map[uint]familyItem
}

type familyItem struct {
	value     familydomain.Family
	expiresAt time.Time
}

func NewInMemoryFamilyCache() *InMemoryFamilyCache {
	return &InMemoryFamilyCache{
		items: make(map[uint]familyItem),
	}
}

func (c *InMemoryFamilyCache) GetByUserID(userID uint) (*familydomain.Family, bool) {
	now := time.Now()

	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[userID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := item.value
	return &value, true
}

func (c *InMemoryFamilyCache) SetByUserID(userID uint, family *familydomain.Family, ttl time.Duration) {
	if family == nil || ttl <= 0 {
		c.DeleteByUserID(userID)
		return
	}

	c.mu.Lock()
	c.items[userID] = familyItem{
		value:     *family,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *InMemoryFamilyCache) DeleteByUserID(userID uint) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}

func (c *InMemoryFamilyCache) Clear() {
	c.mu.Lock()
	c.items = make(map[uint]familyItem)
	c.mu.Unlock()
}
