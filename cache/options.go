package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type options struct {
	logger         *zap.Logger
	registerer     prometheus.Registerer
	opTimeout      time.Duration
	healthInterval time.Duration
}

// Option configures a Client built by New or Connect.
type Option func(*options)

// WithLogger sets the logger for connection state changes. nil is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegisterer registers the client's collectors on reg. Two clients
// cannot share one registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithOpTimeout bounds every store round trip. Zero leaves only the
// caller's context in charge.
func WithOpTimeout(d time.Duration) Option {
	return func(o *options) {
		o.opTimeout = d
	}
}

// WithHealthInterval sets how often the connection is pinged in the
// background. Zero disables the monitor.
func WithHealthInterval(d time.Duration) Option {
	return func(o *options) {
		o.healthInterval = d
	}
}
