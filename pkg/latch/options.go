package latch

import (
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/himadieievsv/distributed-locks/pkg/xlog"
)

// DefaultRetryCount, DefaultRetryDelay and DefaultMaxDuration are the
// listening count-down latch's defaults: maxDuration=10 min, retryCount=3,
// retryDelay=100 ms.
const (
	DefaultRetryCount   = 3
	DefaultRetryDelay   = 100 * time.Millisecond
	DefaultMaxDuration  = 10 * time.Minute
	minPollInterval     = 10 * time.Millisecond
	undoCleanupDeadline = 5 * time.Second
)

type options struct {
	maxDuration    time.Duration
	retryCount     int
	retryDelay     time.Duration
	channel        string
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	logger         xlog.Logger
}

func defaultOptions() options {
	return options{
		maxDuration: DefaultMaxDuration,
		retryCount:  DefaultRetryCount,
		retryDelay:  DefaultRetryDelay,
	}
}

// Option configures a Latch at construction.
type Option func(*options)

// WithMaxDuration overrides DefaultMaxDuration: the latch key's TTL and
// Await's default upper bound.
func WithMaxDuration(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.maxDuration = d
		}
	}
}

// WithChannel overrides the pub/sub channel name, which otherwise defaults
// to the latch's own name. Useful when several latches should share one
// wake-up channel, or when the name contains characters unsuitable for a
// channel.
func WithChannel(channel string) Option {
	return func(o *options) {
		if channel != "" {
			o.channel = channel
		}
	}
}

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

// awaitOptions configures a single Await call.
type awaitOptions struct {
	timeout time.Duration
}

// AwaitOption configures a single Await call.
type AwaitOption func(*awaitOptions)

// WithTimeout overrides the latch's maxDuration for one Await call.
func WithTimeout(d time.Duration) AwaitOption {
	return func(o *awaitOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func defaultAwaitOptions(maxDuration time.Duration) awaitOptions {
	return awaitOptions{timeout: maxDuration}
}

// pollInterval is the "timeout / 10, minimum sensible floor" poll cadence
// for Await's safety-net CheckCount loop.
func pollInterval(timeout time.Duration) time.Duration {
	d := timeout / 10
	if d < minPollInterval {
		return minPollInterval
	}
	return d
}
