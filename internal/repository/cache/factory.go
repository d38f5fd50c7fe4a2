package cache

import (
	"fmt"

	"github.com/skyatlas/tilestream/pkg/config"
	"github.com/skyatlas/tilestream/pkg/logger"
)

// New creates a tile byte cache based on the configured backend. A nil
// cache (backend "disabled") makes the fetcher go straight to upstream.
func New(cfg config.Cache, redisCfg config.Redis, l logger.Logger) (TileCache, error) {
	switch cfg.Backend {
	case "memory":
		l.Info("using in-memory tile cache")
		return NewMapCache(), nil
	case "sqlite":
		l.Info("using sqlite tile cache", "path", cfg.SQLitePath)
		return NewSQLiteCache(cfg.SQLitePath, l)
	case "redis":
		l.Info("using redis tile cache", "addr", redisCfg.Addr)
		return NewRedisCache(RedisConfig{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
			TTL:      redisCfg.TTL,
		}, l)
	case "filesystem":
		l.Info("using filesystem tile cache", "dir", cfg.Dir)
		return NewFilesystemCache(cfg.Dir)
	case "disabled":
		l.Info("tile cache disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: memory, sqlite, redis, filesystem, disabled)", cfg.Backend)
	}
}
