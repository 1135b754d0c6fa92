package chain

import "go.uber.org/zap"

// Option configures a Registry.
type Option func(*Registry)

// WithName sets the chain name used in logs, metrics and errors.
func WithName(name string) Option {
	return func(r *Registry) {
		if name != "" {
			r.name = name
		}
	}
}

// WithLogger sets the zap logger; nil keeps the current one.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithObserver installs an Observer; nil restores the no-op observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o == nil {
			o = nopObserver{}
		}
		r.obs = o
	}
}

// WithRetryAfterFailure controls whether Reset may bring a failed chain back
// to Ready. When false (the default) a failed chain stays failed for the
// lifetime of the registry.
func WithRetryAfterFailure(allow bool) Option {
	return func(r *Registry) { r.retry = allow }
}

// LinkOption configures a Link at construction.
type LinkOption func(*Link)

// WithReset gives the link a reset callback, which makes it eligible to be
// reset and run again. Links without one run at most once successfully.
func WithReset(fn ResetFunc) LinkOption {
	return func(l *Link) { l.reset = fn }
}

// WithLinkName labels the link in logs, snapshots and errors.
func WithLinkName(name string) LinkOption {
	return func(l *Link) { l.name = name }
}
