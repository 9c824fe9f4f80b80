package semaphore

import (
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/himadieievsv/distributed-locks/pkg/xlog"
)

// DefaultRetryCount, DefaultRetryDelay and DefaultTTL are the semaphore's
// defaults: retryCount=3, retryDelay=100 ms, ttl=10 s.
const (
	DefaultRetryCount = 3
	DefaultRetryDelay = 100 * time.Millisecond
	DefaultTTL        = 10 * time.Second
)

type options struct {
	retryCount     int
	retryDelay     time.Duration
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	logger         xlog.Logger
}

func defaultOptions() options {
	return options{retryCount: DefaultRetryCount, retryDelay: DefaultRetryDelay}
}

// Option configures a Semaphore at construction.
type Option func(*options)

// WithRetryCount overrides the default retry count.
func WithRetryCount(n int) Option { return func(o *options) { o.retryCount = n } }

// WithRetryDelay overrides the default fixed delay between retries.
func WithRetryDelay(d time.Duration) Option { return func(o *options) { o.retryDelay = d } }

// WithTracerProvider attaches a tracer provider for the underlying quorum
// executor's spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider attaches a meter provider for the underlying quorum
// executor's metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithLogger attaches a logger used for best-effort diagnostic logging.
func WithLogger(l xlog.Logger) Option { return func(o *options) { o.logger = l } }

// lockOptions configures a single Lock call, mirroring pkg/dlock's
// per-call WithTTL shape.
type lockOptions struct {
	ttl time.Duration
}

// LockOption configures a single Lock call.
type LockOption func(*lockOptions)

// WithTTL overrides DefaultTTL for one Lock call.
func WithTTL(d time.Duration) LockOption {
	return func(o *lockOptions) {
		if d > 0 {
			o.ttl = d
		}
	}
}

func defaultLockOptions() lockOptions {
	return lockOptions{ttl: DefaultTTL}
}
