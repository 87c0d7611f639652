package dedupe

import "time"

func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}
