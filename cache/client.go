// Package cache is a thin client over an external key-value store. It holds a
// single connection handle and no data of its own: every call is a round trip.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codetesla51/kvcache/store"
	"go.uber.org/zap"
)

// ErrInvalidDuration is returned by Set for expirations that are not a
// positive whole number of seconds.
var ErrInvalidDuration = errors.New("cache: duration must be a positive whole number of seconds")

// Defaults used when no Option overrides them.
const (
	DefaultOpTimeout      = 2 * time.Second
	DefaultHealthInterval = 5 * time.Second
)

type connState int32

const (
	stateUnknown connState = iota
	stateUp
	stateDown
)

// Client is a facade over one store connection. It is safe for concurrent use.
type Client struct {
	store          store.Store
	logger         *zap.Logger
	metrics        *metrics
	opTimeout      time.Duration
	healthInterval time.Duration

	stateMu sync.Mutex
	state   connState
	alive   atomic.Bool

	closed    atomic.Bool
	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New wraps s and pings it once before returning. A failed ping is logged,
// not returned: the client starts disconnected and the health monitor keeps
// probing until the store answers.
func New(ctx context.Context, s store.Store, opts ...Option) *Client {
	o := options{
		logger:         zap.NewNop(),
		opTimeout:      DefaultOpTimeout,
		healthInterval: DefaultHealthInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		store:          s,
		logger:         o.logger,
		metrics:        newMetrics(o.registerer),
		opTimeout:      o.opTimeout,
		healthInterval: o.healthInterval,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}

	_ = c.Ping(ctx)

	if c.healthInterval > 0 {
		go c.monitor()
	} else {
		close(c.done)
	}
	return c
}

// IsAlive reports whether the most recent contact with the store succeeded.
func (c *Client) IsAlive() bool {
	return c.alive.Load()
}

// Ping checks the connection and updates IsAlive.
func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return store.ErrClosed
	}
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	err := c.store.Ping(opCtx)
	if err != nil {
		if !c.closed.Load() && ctx.Err() == nil {
			c.markDown(err)
		}
		return fmt.Errorf("cache: ping: %w", err)
	}
	c.markUp()
	return nil
}

// Get returns the value stored under key. A missing or expired key yields
// ok == false and a nil error.
func (c *Client) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	if c.closed.Load() {
		return "", false, store.ErrClosed
	}
	start := time.Now()
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	value, err = c.store.Get(opCtx, key)
	switch {
	case err == nil:
		c.observe(ctx, nil)
		c.metrics.record(opGet, resultOK, start)
		return value, true, nil
	case errors.Is(err, store.ErrNotFound):
		c.observe(ctx, nil)
		c.metrics.record(opGet, resultMiss, start)
		return "", false, nil
	default:
		c.observe(ctx, err)
		c.metrics.record(opGet, resultError, start)
		return "", false, fmt.Errorf("cache: get %q: %w", key, err)
	}
}

// Set stores value under key and returns once the store has acknowledged
// the write. The store removes the key after duration.
func (c *Client) Set(ctx context.Context, key, value string, duration time.Duration) error {
	if c.closed.Load() {
		return store.ErrClosed
	}
	start := time.Now()
	if duration <= 0 || duration%time.Second != 0 {
		c.metrics.record(opSet, resultInvalid, start)
		return fmt.Errorf("%w: got %s", ErrInvalidDuration, duration)
	}
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.store.Set(opCtx, key, value, duration); err != nil {
		c.observe(ctx, err)
		c.metrics.record(opSet, resultError, start)
		return fmt.Errorf("cache: set %q: %w", key, err)
	}
	c.observe(ctx, nil)
	c.metrics.record(opSet, resultOK, start)
	return nil
}

// SetSeconds is Set with the expiration given in seconds.
func (c *Client) SetSeconds(ctx context.Context, key, value string, seconds int) error {
	return c.Set(ctx, key, value, time.Duration(seconds)*time.Second)
}

// Del removes key. Deleting a key that does not exist is not an error.
func (c *Client) Del(ctx context.Context, key string) error {
	if c.closed.Load() {
		return store.ErrClosed
	}
	start := time.Now()
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.store.Delete(opCtx, key); err != nil {
		c.observe(ctx, err)
		c.metrics.record(opDel, resultError, start)
		return fmt.Errorf("cache: del %q: %w", key, err)
	}
	c.observe(ctx, nil)
	c.metrics.record(opDel, resultOK, start)
	return nil
}

// Close stops the health monitor and closes the store connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.stop)
		<-c.done
		c.alive.Store(false)
		c.metrics.connected.Set(0)
		err = c.store.Close()
	})
	return err
}

func (c *Client) monitor() {
	defer close(c.done)
	ticker := time.NewTicker(c.healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			_ = c.Ping(context.Background())
		}
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

// observe updates the connection state from an operation result. Only
// failures to reach the store count against it; a call cut short by the
// caller's own context says nothing about the connection.
func (c *Client) observe(ctx context.Context, err error) {
	switch {
	case err == nil:
		c.markUp()
	case ctx.Err() != nil:
	case errors.Is(err, store.ErrUnavailable):
		c.markDown(err)
	}
}

func (c *Client) markUp() {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.state == stateUp {
		return
	}
	c.state = stateUp
	c.alive.Store(true)
	c.metrics.connected.Set(1)
	c.logger.Info("store client connected")
}

func (c *Client) markDown(err error) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.state == stateDown {
		return
	}
	c.state = stateDown
	c.alive.Store(false)
	c.metrics.connected.Set(0)
	c.logger.Error("store client not connected to the server", zap.Error(err))
}
