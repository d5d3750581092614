package host

import (
	"time"

	"github.com/bft-labs/hostd/pkg/lifecycle"
	"github.com/bft-labs/hostd/pkg/log"
	"github.com/bft-labs/hostd/pkg/state"
)

// DefaultBackgroundDelay is the pause between two background passes.
const DefaultBackgroundDelay = 10 * time.Second

// Option configures optional behavior of a Host.
type Option func(*options)

// options holds the optional configuration for a Host.
type options struct {
	logger           log.Logger
	listeners        []lifecycle.Listener
	policy           lifecycle.FailurePolicy
	startStopThreads int
	backgroundDelay  time.Duration
	statusRepo       state.Repository
	children         []lifecycle.Lifecycle
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger:           log.NewNoopLogger(),
		policy:           lifecycle.PolicyThrow,
		startStopThreads: 1,
		backgroundDelay:  DefaultBackgroundDelay,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithListener registers a listener on the host itself.
func WithListener(l lifecycle.Listener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, l)
	}
}

// WithFailurePolicy sets the failure policy of the host. Children keep
// their own policy.
func WithFailurePolicy(p lifecycle.FailurePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithStartStopThreads bounds how many children are started or stopped at
// the same time. Zero means one per CPU; a negative n means NumCPU+n, but at
// least one. Default: 1 (sequential).
func WithStartStopThreads(n int) Option {
	return func(o *options) {
		o.startStopThreads = n
	}
}

// WithBackgroundDelay sets the pause between background passes.
// Zero or a negative delay disables background processing.
func WithBackgroundDelay(d time.Duration) Option {
	return func(o *options) {
		o.backgroundDelay = d
	}
}

// WithStatusRepository makes the host persist a status snapshot after every
// state change of itself or one of its children.
func WithStatusRepository(repo state.Repository) Option {
	return func(o *options) {
		o.statusRepo = repo
	}
}

// WithChild adds a child at construction time. Children are initialized in
// the order they were added.
func WithChild(c lifecycle.Lifecycle) Option {
	return func(o *options) {
		o.children = append(o.children, c)
	}
}
