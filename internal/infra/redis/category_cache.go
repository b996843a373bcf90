package redis

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"tietotesti/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CategoryLoader fetches categories from the backing store.
type CategoryLoader interface {
	ListCategories(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error)
}

const (
	// namesKey holds every category as HSET categories:names {id} {name}.
	namesKey = "categories:names"
	// genKey is bumped on every Invalidate so a fill that loaded before it
	// does not write a stale hash afterwards.
	genKey = "categories:names:gen"
)

var errStaleFill = errors.New("category names changed during load")

// CategoryNameCache shares the id -> name map across instances through a Redis
// hash and falls back to the loader on a miss.
type CategoryNameCache struct {
	client *redis.Client
	loader CategoryLoader
	ttl    time.Duration
	log    logrus.FieldLogger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCategoryNameCache(client *redis.Client, loader CategoryLoader, ttl time.Duration, log logrus.FieldLogger) *CategoryNameCache {
	return &CategoryNameCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CategoryNameCache) CategoryNames(ctx context.Context) (map[int64]string, error) {
	if names, ok := c.fromCache(ctx); ok {
		return names, nil
	}

	gen, err := c.generation(ctx, c.client)
	if err != nil {
		c.log.WithError(err).Warn("reading category names generation failed")
	}

	result, err, _ := c.sf.Do(namesKey+":"+strconv.FormatInt(gen, 10), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if names, ok := c.fromCache(ctx); ok {
			return names, nil
		}

		categories, err := c.loader.ListCategories(ctx, domain.CategoryFilter{})
		if err != nil {
			return nil, err
		}
		names := make(map[int64]string, len(categories))
		fields := make(map[string]interface{}, len(categories))
		for _, cat := range categories {
			names[cat.ID] = cat.Name
			fields[strconv.FormatInt(cat.ID, 10)] = cat.Name
		}
		if len(fields) == 0 {
			return names, nil
		}

		if err := c.store(ctx, gen, fields); err != nil {
			// The loaded map is still returned; only sharing it was skipped.
			if errors.Is(err, errStaleFill) || errors.Is(err, redis.TxFailedErr) {
				c.log.Debug("category names invalidated during load, not cached")
			} else {
				c.log.WithError(err).Warn("caching category names in redis failed")
			}
		}
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[int64]string), nil
}

// store writes the hash unless genKey moved past gen.
func (c *CategoryNameCache) store(ctx context.Context, gen int64, fields map[string]interface{}) error {
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, namesKey)
			pipe.HSet(ctx, namesKey, fields)
			if ttl := c.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, namesKey, ttl)
			}
			return nil
		})
		return err
	}, genKey)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *CategoryNameCache) generation(ctx context.Context, cmd getter) (int64, error) {
	gen, err := cmd.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Invalidate removes the shared hash so every instance reloads.
func (c *CategoryNameCache) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Del(ctx, namesKey)
		return nil
	})
	if err != nil {
		c.log.WithError(err).Warn("invalidating category names failed")
	}
}

func (c *CategoryNameCache) fromCache(ctx context.Context) (map[int64]string, bool) {
	raw, err := c.client.HGetAll(ctx, namesKey).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	names := make(map[int64]string, len(raw))
	for field, name := range raw {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		names[id] = name
	}
	return names, true
}

func (c *CategoryNameCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
