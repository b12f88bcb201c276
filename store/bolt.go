package store

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
)

const defaultBoltBucket = "kvcache"

// BoltStore persists entries in a local bbolt file. Each value is stored as
// an 8-byte big-endian unix-nanosecond expiry followed by the raw value.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, unavailable(err)
	}
	bucket := []byte(defaultBoltBucket)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db, bucket: bucket, now: time.Now}, nil
}

func (s *BoltStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wrap(s.db.View(func(tx *bolt.Tx) error { return nil }))
}

func (s *BoltStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if expired(v, s.now()) {
			return nil
		}
		out = string(v[8:])
		found = true
		return nil
	})
	if err != nil {
		return "", s.wrap(err)
	}
	if !found {
		return "", ErrNotFound
	}
	return out, nil
}

func (s *BoltStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(s.now().Add(ttl).UnixNano()))
	copy(buf[8:], value)

	return s.wrap(s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), buf)
	}))
}

func (s *BoltStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wrap(s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	}))
}

// Compact removes expired entries and returns how many were dropped.
func (s *BoltStore) Compact(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	removed := 0
	now := s.now()
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			if expired(v, now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, s.wrap(err)
}

// expired reports whether a stored record is unreadable or past its expiry.
func expired(v []byte, now time.Time) bool {
	if len(v) < 8 {
		return true
	}
	expiresAt := time.Unix(0, int64(binary.BigEndian.Uint64(v[:8])))
	return !now.Before(expiresAt)
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) wrap(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}
