package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisAddr is the standard local Redis endpoint.
const DefaultRedisAddr = "127.0.0.1:6379"

type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis connection handle. go-redis dials lazily, so
// no round trip happens here; use Ping to test the connection.
func NewRedisStore(opts *redis.Options) *RedisStore {
	if opts == nil {
		opts = &redis.Options{}
	}
	if opts.Addr == "" {
		opts.Addr = DefaultRedisAddr
	}
	return &RedisStore{client: redis.NewClient(opts)}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.wrap(r.client.Ping(ctx).Err())
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", r.wrap(err)
	}
	return val, nil
}

// Set stores value with SETEX, so ttl is sent in whole seconds.
func (r *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < time.Second {
		return fmt.Errorf("redis: ttl %s is below one second", ttl)
	}
	return r.wrap(r.client.SetEx(ctx, key, value, ttl.Truncate(time.Second)).Err())
}

// Delete removes key from Redis
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.wrap(r.client.Del(ctx, key).Err())
}

func (r *RedisStore) Close() error {
	err := r.client.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}

// wrap classifies a go-redis error. Server replies (WRONGTYPE and friends) and
// caller cancellation pass through; anything else means Redis could not be
// reached.
func (r *RedisStore) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return err
	}
	return unavailable(err)
}
