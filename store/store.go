package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key is missing or has expired.
	ErrNotFound = errors.New("store: key not found")
	// ErrUnavailable wraps any failure to reach the backing service.
	ErrUnavailable = errors.New("store: unavailable")
	// ErrClosed is returned once Close has been called.
	ErrClosed = errors.New("store: closed")
)

// Store is a connection handle to a key-value service with TTL support.
// Implementations must be safe for concurrent use.
type Store interface {
	// Ping checks that the backing service answers.
	Ping(ctx context.Context) error

	// Get returns the value for key, or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key; the backing service removes it after ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

func unavailable(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
