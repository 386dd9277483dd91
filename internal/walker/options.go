package walker

import "context"

// TrackedFunc reports whether a root-relative path (starting with "./") is
// already under version control. Tracked entries bypass rule evaluation.
type TrackedFunc func(path string) bool

type options struct {
	Logger     Logger
	Context    context.Context
	Tracked    TrackedFunc
	BruteForce bool
}

// Option configures a walk.
type Option func(*options)

func defaultOptions() options {
	return options{
		Logger:  nopLogger{},
		Context: context.Background(),
	}
}

// WithLogger routes walk diagnostics to the given logger.
func WithLogger(log Logger) Option {
	return func(o *options) {
		if log != nil {
			o.Logger = log
		}
	}
}

// WithContext makes the walk abort when the context is cancelled.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.Context = ctx
		}
	}
}

// WithTracked installs the predicate marking already-versioned entries.
func WithTracked(fn TrackedFunc) Option {
	return func(o *options) {
		o.Tracked = fn
	}
}

// WithBruteForce disables per-directory rule propagation and tests the full
// rule list against every entry. Classifications are identical; only the
// amount of matching work differs.
func WithBruteForce(enabled bool) Option {
	return func(o *options) {
		o.BruteForce = enabled
	}
}
