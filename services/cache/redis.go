package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/services/metrics"
)

// RedisCache stores JSON encoded values in Redis.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

var _ core.Cache = (*RedisCache)(nil)

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", conf.Addr)
	}
	return client, nil
}

// NewRedisCache namespaces every key with prefix (ex: "lilypad:").
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		metrics.CacheMiss()
		return false, nil
	}
	if err != nil {
		metrics.CacheError()
		return false, errors.Wrapf(err, "getting %q", key)
	}

	if err = json.Unmarshal(data, dst); err != nil {
		metrics.CacheError()
		return false, errors.Wrapf(err, "decoding %q", key)
	}
	metrics.CacheHit()
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	return errors.Wrapf(c.client.Set(ctx, c.prefix+key, data, ttl).Err(), "setting %q", key)
}
