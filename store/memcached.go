package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// DefaultMemcachedAddr is the standard local memcached endpoint.
const DefaultMemcachedAddr = "127.0.0.1:11211"

// memcached treats expirations above 30 days as absolute unix timestamps.
const maxRelativeExpiration = 30 * 24 * time.Hour

type MemcachedStore struct {
	mc *memcache.Client
}

func NewMemcachedStore(addr string, timeout time.Duration) *MemcachedStore {
	if addr == "" {
		addr = DefaultMemcachedAddr
	}
	mc := memcache.New(addr)
	if timeout > 0 {
		mc.Timeout = timeout
	}
	return &MemcachedStore{mc: mc}
}

// gomemcache has no context support; ctx is only checked before the call.
func (m *MemcachedStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.wrap(m.mc.Ping())
}

func (m *MemcachedStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	item, err := m.mc.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", m.wrap(err)
	}
	return string(item.Value), nil
}

func (m *MemcachedStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl < time.Second || ttl > maxRelativeExpiration {
		return fmt.Errorf("memcached: ttl %s out of range", ttl)
	}
	return m.wrap(m.mc.Set(&memcache.Item{
		Key:        key,
		Value:      []byte(value),
		Expiration: int32(ttl / time.Second),
	}))
}

func (m *MemcachedStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := m.mc.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return m.wrap(err)
}

func (m *MemcachedStore) Close() error {
	return m.mc.Close()
}

// wrap leaves protocol-level rejections alone and reports everything else as
// the server being unreachable.
func (m *MemcachedStore) wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, memcache.ErrMalformedKey),
		errors.Is(err, memcache.ErrNotStored),
		errors.Is(err, memcache.ErrCASConflict):
		return err
	}
	return unavailable(err)
}
