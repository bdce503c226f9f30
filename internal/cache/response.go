package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2"
)

const DefaultResponseCacheSize = 256

type ResponseCacheEntry struct {
	Body string
	// CapturedAt is the capture time of the station map the body was rendered from.
	CapturedAt time.Time
	ExpiresAt  time.Time
}

// ResponseCache keeps rendered API bodies keyed by the normalized request.
// An entry only answers for the station map it was rendered from.
type ResponseCache struct {
	lru   *lru.Cache[string, *ResponseCacheEntry]
	ttl   time.Duration
	clock clock
	mu    sync.Mutex
}

func NewResponseCache(size int, ttl time.Duration) (*ResponseCache, error) {
	if size <= 0 {
		size = DefaultResponseCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultStationTTL
	}

	lruCache, err := lru.New[string, *ResponseCacheEntry](size)
	if err != nil {
		return nil, err
	}

	return &ResponseCache{
		lru:   lruCache,
		ttl:   ttl,
		clock: systemClock{},
	}, nil
}

func (c *ResponseCache) Add(key, body string, capturedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, &ResponseCacheEntry{
		Body:       body,
		CapturedAt: capturedAt,
		ExpiresAt:  c.clock.Now().Add(c.ttl),
	})
}

// Get returns the body stored under key if it was rendered from the map
// captured at capturedAt and has not expired.
func (c *ResponseCache) Get(key string, capturedAt time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(key)
	if !ok {
		return "", false
	}

	if !entry.CapturedAt.Equal(capturedAt) || !c.clock.Now().Before(entry.ExpiresAt) {
		c.lru.Remove(key)
		return "", false
	}

	return entry.Body, true
}

func (c *ResponseCache) Len() int {
	return c.lru.Len()
}

func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
