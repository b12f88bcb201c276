package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/codetesla51/kvcache/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Store
		want any
	}{
		{"default is redis", config.Store{}, &RedisStore{}},
		{"redis", config.Store{Driver: config.DriverRedis, RedisAddr: "127.0.0.1:6390", OpTimeout: time.Second}, &RedisStore{}},
		{"memcached", config.Store{Driver: config.DriverMemcached}, &MemcachedStore{}},
		{"bolt", config.Store{Driver: config.DriverBolt, BoltPath: filepath.Join(t.TempDir(), "kv.db")}, &BoltStore{}},
		{"memory", config.Store{Driver: config.DriverMemory}, &MemoryStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg)
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.Store{Driver: "etcd"})
	require.Error(t, err)
}
