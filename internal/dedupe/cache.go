package dedupe

import (
	"sync"
	"time"
)

type revision struct {
	hash string
	ts   time.Time
	seq  uint64
}

type entry struct {
	id  string
	ts  time.Time
	seq uint64
}

// Cache remembers the last indexed revision of each bill so unchanged
// updates can be skipped. It holds at most capacity bills for ttl each.
type Cache struct {
	mu       sync.Mutex
	items    map[string]revision
	order    []entry
	seq      uint64
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache with the provided capacity and ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]revision, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Unchanged reports whether id was recorded with hash inside the ttl window.
func (c *Cache) Unchanged(id, hash string) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	rev, ok := c.items[id]
	return ok && rev.hash == hash && now.Sub(rev.ts) <= c.ttl
}

// Record stores hash as the current revision of id.
func (c *Cache) Record(id, hash string) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.items[id] = revision{hash: hash, ts: now, seq: c.seq}
	c.order = append(c.order, entry{id: id, ts: now, seq: c.seq})
	c.compact(now)
}

// Len returns the number of tracked bills.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		if rev, ok := c.items[oldest.id]; ok && rev.seq == oldest.seq {
			delete(c.items, oldest.id)
		}
	}
}
