package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/japaniel/hanreader/pkg/metrics"
)

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized lookup results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to redisURL (redis://host:port/db) and pings it.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

// Set stores value with the configured TTL (0 means no expiration).
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CacheKey generates a cache key for a stem, e.g. "hanreader:dict:ko:사랑".
func CacheKey(stem, language string) string {
	return "hanreader:dict:" + strings.ToLower(language) + ":" + Normalize(stem)
}

// CachedLookup serves stems from a Cache and sends only the misses to the
// wrapped Lookup, in one call.
type CachedLookup struct {
	inner    Lookup
	cache    Cache
	language string
	logger   *zap.Logger
}

// NewCachedLookup wraps inner with cache.
func NewCachedLookup(inner Lookup, cache Cache, language string, logger *zap.Logger) *CachedLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLookup{inner: inner, cache: cache, language: language, logger: logger}
}

func (c *CachedLookup) Lookup(ctx context.Context, stems []string) ([][]Entry, error) {
	out := make([][]Entry, len(stems))
	var missIdx []int
	var missStems []string

	for i, stem := range stems {
		raw, err := c.cache.Get(ctx, CacheKey(stem, c.language))
		if err == nil {
			var entries []Entry
			if err := json.Unmarshal(raw, &entries); err == nil {
				out[i] = entries
				metrics.DictionaryCacheTotal.WithLabelValues("hit").Inc()
				continue
			}
		} else if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("dictionary cache read failed", zap.String("stem", stem), zap.Error(err))
		}
		metrics.DictionaryCacheTotal.WithLabelValues("miss").Inc()
		missIdx = append(missIdx, i)
		missStems = append(missStems, stem)
	}

	if len(missStems) == 0 {
		return out, nil
	}

	fetched, err := c.inner.Lookup(ctx, missStems)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		if j >= len(fetched) {
			// Not answered: keep the position short so it stays pending.
			return out[:i], nil
		}
		out[i] = fetched[j]
		raw, err := json.Marshal(fetched[j])
		if err != nil {
			continue
		}
		if err := c.cache.Set(ctx, CacheKey(stems[i], c.language), raw); err != nil {
			c.logger.Warn("dictionary cache write failed", zap.String("stem", stems[i]), zap.Error(err))
		}
	}
	return out, nil
}
