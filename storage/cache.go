package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"start-page/domain"
)

var errStaleRead = errors.New("cache generation changed during read")

type backend[T domain.Item, P any] interface {
	SelectAllOrdered(ctx context.Context, order domain.Order) ([]T, error)
	Insert(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, patch P) error
	Delete(ctx context.Context, id string) error
}

// Cache wraps a collection with Redis-backed caching for ordered reads. Every
// successful write evicts the cached reads of the collection and bumps its
// generation; a read only fills the cache if no write happened while it ran.
// Redis failures fall back to the backing collection.
type Cache[T domain.Item, P any] struct {
	base   backend[T, P]
	redis  *redis.Client
	ttl    time.Duration
	prefix string
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
// prefix scopes the keys, typically table and partition.
func NewCache[T domain.Item, P any](base backend[T, P], client *redis.Client, ttl time.Duration, prefix string) *Cache[T, P] {
	if base == nil {
		panic("storage.NewCache: base collection is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache[T, P]{base: base, redis: client, ttl: ttl, prefix: prefix}
}

// CacheCollection wraps c using its table and partition as the key prefix.
func CacheCollection[T domain.Item, P any](c *Collection[T, P], client *redis.Client, ttl time.Duration) *Cache[T, P] {
	return NewCache[T, P](c, client, ttl, c.Name()+":"+c.Partition())
}

func (c *Cache[T, P]) SelectAllOrdered(ctx context.Context, order domain.Order) ([]T, error) {
	key := c.orderKey(order)
	if items, ok := c.load(ctx, key); ok {
		return items, nil
	}

	gen, genOK := c.generation(ctx)
	items, err := c.base.SelectAllOrdered(ctx, order)
	if err != nil {
		return nil, err
	}

	if genOK {
		c.store(ctx, key, gen, items)
	}
	return items, nil
}

func (c *Cache[T, P]) Insert(ctx context.Context, item T) (T, error) {
	created, err := c.base.Insert(ctx, item)
	if err != nil {
		return created, err
	}
	c.evict(ctx)
	return created, nil
}

func (c *Cache[T, P]) Update(ctx context.Context, id string, patch P) error {
	if err := c.base.Update(ctx, id, patch); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache[T, P]) Delete(ctx context.Context, id string) error {
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache[T, P]) load(ctx context.Context, key string) ([]T, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("key", key).Debug("cache read failed")
			_ = c.redis.Del(ctx, key).Err()
		}
		return nil, false
	}
	var items []T
	if err := sonic.Unmarshal(data, &items); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return items, true
}

func (c *Cache[T, P]) generation(ctx context.Context) (string, bool) {
	if c.redis == nil {
		return "", false
	}
	gen, err := c.redis.Get(ctx, c.genKey()).Result()
	if err == redis.Nil {
		return "", true
	}
	if err != nil {
		log.WithError(err).WithField("prefix", c.prefix).Debug("cache generation read failed")
		return "", false
	}
	return gen, true
}

// store writes items under key unless a write bumped the generation since gen
// was read.
func (c *Cache[T, P]) store(ctx context.Context, key, gen string, items []T) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(items)
	if err != nil {
		return
	}
	genKey := c.genKey()
	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != gen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			pipe.SAdd(ctx, c.indexKey(), key)
			pipe.Expire(ctx, c.indexKey(), c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		log.WithField("key", key).Debug("cache fill skipped after concurrent write")
	default:
		log.WithError(err).WithField("key", key).Debug("cache write failed")
	}
}

func (c *Cache[T, P]) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Incr(ctx, c.genKey()).Err(); err != nil {
		log.WithError(err).WithField("prefix", c.prefix).Warn("cache generation bump failed")
	}
	keys, err := c.redis.SMembers(ctx, c.indexKey()).Result()
	if err != nil {
		log.WithError(err).WithField("prefix", c.prefix).Warn("cache evict failed")
		return
	}
	_, _ = c.redis.Del(ctx, append(keys, c.indexKey())...).Result()
}

func (c *Cache[T, P]) orderKey(order domain.Order) string {
	dir := "asc"
	if order.Descending {
		dir = "desc"
	}
	return fmt.Sprintf("list:%s:%s:%s:%d", c.prefix, order.Field, dir, order.Limit)
}

func (c *Cache[T, P]) indexKey() string {
	return "list:" + c.prefix + ":keys"
}

func (c *Cache[T, P]) genKey() string {
	return "list:" + c.prefix + ":gen"
}
