package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const EnvPrefix = "kvcache"

// Supported store drivers.
const (
	DriverRedis     = "redis"
	DriverMemcached = "memcached"
	DriverPostgres  = "postgres"
	DriverBolt      = "bolt"
	DriverMemory    = "memory"
)

type Store struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MemcachedAddr string
	PostgresDSN   string
	BoltPath      string
	OpTimeout     time.Duration
}

type Config struct {
	Store          Store
	HealthInterval time.Duration
	LogLevel       string
	LogFormat      string
}

// Flags returns the flag set every config key is read from. Bind it with
// Bind so env vars and config files can fill in the rest.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.String("driver", DriverRedis, "the store driver: redis, memcached, postgres, bolt or memory")
	fs.String("redis-addr", "127.0.0.1:6379", "the redis server address")
	fs.String("redis-password", "", "the redis password")
	fs.Int("redis-db", 0, "the redis logical database")
	fs.String("memcached-addr", "127.0.0.1:11211", "the memcached server address")
	fs.String("postgres-dsn", "", "the postgres connection string")
	fs.String("bolt-path", "kvcache.db", "path to the bolt database file")
	fs.Duration("op-timeout", 2*time.Second, "timeout applied to each store round trip")
	fs.Duration("health-interval", 5*time.Second, "how often the connection is checked")
	fs.String("log-level", "info", "the log level to run at")
	fs.String("log-format", "json", "the log format: json or console")
	return fs
}

// Bind wires fs and KVCACHE_* environment variables into v.
func Bind(v *viper.Viper, fs *pflag.FlagSet) error {
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v.BindPFlags(fs)
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Store: Store{
			Driver:        strings.ToLower(v.GetString("driver")),
			RedisAddr:     v.GetString("redis-addr"),
			RedisPassword: v.GetString("redis-password"),
			RedisDB:       v.GetInt("redis-db"),
			MemcachedAddr: v.GetString("memcached-addr"),
			PostgresDSN:   v.GetString("postgres-dsn"),
			BoltPath:      v.GetString("bolt-path"),
			OpTimeout:     v.GetDuration("op-timeout"),
		},
		HealthInterval: v.GetDuration("health-interval"),
		LogLevel:       v.GetString("log-level"),
		LogFormat:      v.GetString("log-format"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverRedis, DriverMemcached, DriverBolt, DriverMemory:
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("config: postgres-dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverBolt && c.Store.BoltPath == "" {
		return fmt.Errorf("config: bolt-path is required for the bolt driver")
	}
	if c.Store.OpTimeout <= 0 {
		return fmt.Errorf("config: op-timeout must be positive, got %s", c.Store.OpTimeout)
	}
	if c.HealthInterval <= 0 {
		return fmt.Errorf("config: health-interval must be positive, got %s", c.HealthInterval)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}
