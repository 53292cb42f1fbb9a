package crawler

import (
	"context"
	"sync"
	"time"
)

// Cache holds the most recent crawl result for a single site. The bot crawls
// one district website, so one slot with a TTL is all that is needed; an
// expired entry is re-crawled on the next request and every waiter shares
// that one crawl.
type Cache struct {
	crawler *Crawler
	seedURL string
	ttl     time.Duration
	now     func() time.Time

	mu        sync.Mutex
	text      string
	fetchedAt time.Time
}

// NewCache creates a cache in front of the crawler for one seed URL.
func NewCache(c *Crawler, seedURL string, ttl time.Duration) *Cache {
	return &Cache{crawler: c, seedURL: seedURL, ttl: ttl, now: time.Now}
}

// Get returns the cached site text, crawling first when the slot is empty or
// stale. Concurrent callers block on the same crawl rather than racing their
// own.
func (c *Cache) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.text != "" && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.text, nil
	}

	text, err := c.crawler.Crawl(ctx, c.seedURL)
	if err != nil {
		// Serve stale text over no text at all.
		if c.text != "" {
			return c.text, nil
		}
		return "", err
	}

	c.text = text
	c.fetchedAt = c.now()
	return text, nil
}

// Invalidate empties the slot so the next Get re-crawls.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.text = ""
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}
