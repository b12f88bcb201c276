package cache

import (
	"context"

	"github.com/codetesla51/kvcache/config"
	"github.com/codetesla51/kvcache/store"
	"go.uber.org/zap"
)

// Connect opens the store named by cfg and wraps it in a Client.
func Connect(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	logger.Info("opening store",
		zap.String("driver", cfg.Store.Driver),
		zap.Duration("opTimeout", cfg.Store.OpTimeout),
		zap.Duration("healthInterval", cfg.HealthInterval))

	base := []Option{
		WithLogger(logger.With(zap.String("driver", cfg.Store.Driver))),
		WithOpTimeout(cfg.Store.OpTimeout),
		WithHealthInterval(cfg.HealthInterval),
	}
	return New(ctx, s, append(base, opts...)...), nil
}
