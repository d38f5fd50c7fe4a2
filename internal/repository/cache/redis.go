package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skyatlas/tilestream/pkg/logger"
)

// RedisCache shares tile bytes across processes, so several hosts pointed at
// the same upstream hit it once per tile. Entries expire after the
// configured TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisCache(cfg RedisConfig, l logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	l.Info("redis cache initialized", "addr", cfg.Addr, "ttl", ttl)

	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: l,
	}, nil
}

var _ TileCache = (*RedisCache)(nil)

func (c *RedisCache) keyFor(k TileCacheKey) string {
	return fmt.Sprintf("tile:%d:%d:%d", k.Z, k.X, k.Y)
}

func (c *RedisCache) Get(k TileCacheKey) (TileCacheValue, bool, error) {
	c.logger.Debug("redis cache get", "z", k.Z, "x", k.X, "y", k.Y)

	data, err := c.client.Get(context.Background(), c.keyFor(k)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		c.logger.Error("redis cache get failed", "z", k.Z, "x", k.X, "y", k.Y, "error", err)
		return nil, false, fmt.Errorf("redis get error: %w", err)
	}

	return data, true, nil
}

func (c *RedisCache) Set(k TileCacheKey, v TileCacheValue) error {
	c.logger.Debug("redis cache set", "z", k.Z, "x", k.X, "y", k.Y)

	if err := c.client.Set(context.Background(), c.keyFor(k), []byte(v), c.ttl).Err(); err != nil {
		c.logger.Error("redis cache set failed", "z", k.Z, "x", k.X, "y", k.Y, "error", err)
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
