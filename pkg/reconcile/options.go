package reconcile

import (
	"log/slog"

	"github.com/vango-dev/comp/pkg/dom"
)

// Observer receives the statistics of every completed pass.
type Observer interface {
	ObserveSync(stats Stats)
}

type options struct {
	keyAttr      string
	ignoreAttr   string
	checksumAttr string
	identityAttr string
	logger       *slog.Logger
	observer     Observer
	deferEvents  bool
}

func defaultOptions() options {
	return options{
		keyAttr:      dom.DefaultKeyAttr,
		ignoreAttr:   dom.DefaultIgnoreAttr,
		checksumAttr: dom.DefaultChecksumAttr,
		identityAttr: dom.DefaultIdentityAttr,
		logger:       slog.Default().With("component", "reconcile"),
	}
}

// Option configures a Reconciler.
type Option func(*options)

// WithKeyAttr sets the explicit key attribute (default "data-key").
func WithKeyAttr(name string) Option {
	return func(o *options) {
		if name != "" {
			o.keyAttr = name
		}
	}
}

// WithIgnoreAttr sets the ignore marker attribute (default "data-ignore").
func WithIgnoreAttr(name string) Option {
	return func(o *options) {
		if name != "" {
			o.ignoreAttr = name
		}
	}
}

// WithChecksumAttr sets the checksum marker attribute (default "data-checksum").
func WithChecksumAttr(name string) Option {
	return func(o *options) {
		if name != "" {
			o.checksumAttr = name
		}
	}
}

// WithIdentityAttr sets the key fallback attribute (default "id").
// An empty name disables the fallback.
func WithIdentityAttr(name string) Option {
	return func(o *options) {
		o.identityAttr = name
	}
}

// WithLogger sets the logger used for pass summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver reports pass statistics (e.g. to metrics.Collector).
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithDeferredEvents queues lifecycle events instead of delivering them during the
// pass. The owner delivers them with Reconciler.Flush, typically after releasing a
// lock it holds around Synchronize.
func WithDeferredEvents() Option {
	return func(o *options) {
		o.deferEvents = true
	}
}
