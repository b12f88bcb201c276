package store

import (
	"fmt"

	"github.com/codetesla51/kvcache/config"
	"github.com/redis/go-redis/v9"
)

// Open creates the Store selected by cfg.Driver. Network backends connect
// lazily, so a down server is not an error here.
func Open(cfg config.Store) (Store, error) {
	switch cfg.Driver {
	case "", config.DriverRedis:
		return NewRedisStore(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  cfg.OpTimeout,
			ReadTimeout:  cfg.OpTimeout,
			WriteTimeout: cfg.OpTimeout,
		}), nil
	case config.DriverMemcached:
		return NewMemcachedStore(cfg.MemcachedAddr, cfg.OpTimeout), nil
	case config.DriverPostgres:
		return NewDatabaseStore(cfg.PostgresDSN)
	case config.DriverBolt:
		return NewBoltStore(cfg.BoltPath)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
