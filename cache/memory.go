package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/resilience-labs/climatechat/schema"
)

type memEntry struct {
	key     string
	value   *schema.CacheEntry
	expires time.Time
	element *list.Element
}

// MemoryStore is an in-process TTL LRU. It backs deployments without
// redis and doubles as the fallback store when redis is unreachable.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*memEntry
	order    *list.List
}

// NewMemoryStore creates a MemoryStore with capacity and default TTL.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = 512
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryStore{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*memEntry, capacity),
		order:    list.New(),
	}
}

func (c *MemoryStore) Get(_ context.Context, key string) (*schema.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		if ent.expires.IsZero() || time.Now().Before(ent.expires) {
			c.order.MoveToFront(ent.element)
			return ent.value, true
		}
		c.removeEntry(ent)
	}
	return nil, false
}

func (c *MemoryStore) Set(_ context.Context, key string, value *schema.CacheEntry, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		ent.value = value
		ent.expires = c.computeExpiry(ttl)
		c.order.MoveToFront(ent.element)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	elem := c.order.PushFront(key)
	c.items[key] = &memEntry{
		key:     key,
		value:   value,
		expires: c.computeExpiry(ttl),
		element: elem,
	}
}

// Purge drops every entry.
func (c *MemoryStore) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*memEntry, c.capacity)
	c.order.Init()
}

func (c *MemoryStore) Close() error {
	c.Purge()
	return nil
}

func (c *MemoryStore) computeExpiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func (c *MemoryStore) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	key := elem.Value.(string)
	if ent, ok := c.items[key]; ok {
		c.removeEntry(ent)
	}
}

func (c *MemoryStore) removeEntry(ent *memEntry) {
	if ent.element != nil {
		c.order.Remove(ent.element)
	}
	delete(c.items, ent.key)
}
