package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"tietotesti/internal/domain"

	"golang.org/x/sync/singleflight"
)

// CategoryLoader fetches categories from the backing store.
type CategoryLoader interface {
	ListCategories(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error)
}

// CategoryNameCache caches the id -> name map with TTL to avoid a category
// scan on every leaderboard render.
type CategoryNameCache struct {
	loader CategoryLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu        sync.RWMutex
	names     map[int64]string
	expiresAt time.Time
	// gen is bumped by Invalidate; a load started under an older gen is not cached.
	gen uint64
}

func NewCategoryNameCache(loader CategoryLoader, ttl time.Duration) *CategoryNameCache {
	return &CategoryNameCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CategoryNameCache) CategoryNames(ctx context.Context) (map[int64]string, error) {
	if names, ok := c.cached(c.clock()); ok {
		return names, nil
	}

	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("names:"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		now := c.clock()
		if names, ok := c.cached(now); ok {
			return names, nil
		}

		categories, err := c.loader.ListCategories(ctx, domain.CategoryFilter{})
		if err != nil {
			return nil, err
		}
		names := make(map[int64]string, len(categories))
		for _, cat := range categories {
			names[cat.ID] = cat.Name
		}

		c.mu.Lock()
		if c.gen == gen {
			c.names = names
			c.expiresAt = now.Add(c.ttlWithJitter())
		}
		c.mu.Unlock()
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[int64]string), nil
}

// Invalidate drops the cached map; the next read reloads it.
func (c *CategoryNameCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	c.names = nil
	c.expiresAt = time.Time{}
	c.gen++
	c.mu.Unlock()
}

func (c *CategoryNameCache) cached(now time.Time) (map[int64]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.names != nil && c.expiresAt.After(now) {
		return c.names, true
	}
	return nil, false
}

func (c *CategoryNameCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
