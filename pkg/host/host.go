package host

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/hostd/pkg/lifecycle"
	"github.com/bft-labs/hostd/pkg/log"
	"github.com/bft-labs/hostd/pkg/state"
)

// Host is a component whose lifecycle drives a set of child components.
// Use New() to create an instance, then Start() to start it and its children.
type Host struct {
	*lifecycle.Base

	opts   options
	logger log.Logger

	mu       sync.RWMutex
	children []lifecycle.Lifecycle

	status *statusRecorder
	bg     *backgroundRunner
}

// New creates a Host in StateNew with the given options.
// Returns an error if a child given through WithChild is invalid or the
// sub-module versions are incompatible.
func New(name string, opts ...Option) (*Host, error) {
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if name == "" {
		name = "host"
	}

	h := &Host{
		opts:   o,
		logger: o.logger,
	}

	baseOpts := []lifecycle.Option{
		lifecycle.WithLogger(o.logger),
		lifecycle.WithFailurePolicy(o.policy),
	}
	for _, l := range o.listeners {
		baseOpts = append(baseOpts, lifecycle.WithListener(l))
	}
	h.Base = lifecycle.New(name, h, baseOpts...)
	h.bg = newBackgroundRunner(h, o.backgroundDelay)

	if o.statusRepo != nil {
		h.status = newStatusRecorder(name, o.statusRepo, o.logger)
		h.AddListener(h.status)
	}

	for _, c := range o.children {
		if err := h.addChild(c); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// AddChild registers c with the host. When the host is available the child
// is started immediately; a start failure is returned but the child stays
// registered.
func (h *Host) AddChild(c lifecycle.Lifecycle) error {
	if err := h.addChild(c); err != nil {
		return err
	}
	if !h.State().Available() {
		return nil
	}
	if err := c.Start(); err != nil {
		return fmt.Errorf("host %s: start child %s: %w", h.Name(), c.Name(), err)
	}
	return nil
}

func (h *Host) addChild(c lifecycle.Lifecycle) error {
	if c == nil {
		return ErrNilChild
	}

	h.mu.Lock()
	for _, existing := range h.children {
		if existing.Name() == c.Name() {
			h.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrDuplicateChild, c.Name())
		}
	}
	h.children = append(h.children, c)
	h.mu.Unlock()

	if h.status != nil {
		c.AddListener(h.status)
		h.status.record(c, "")
	}

	h.logger.Debug("child added", log.Component(h.Name()), log.String("child", c.Name()))
	return nil
}

// RemoveChild unregisters the named child, stopping and destroying it.
// Stop and destroy failures are logged, not returned.
func (h *Host) RemoveChild(name string) error {
	h.mu.Lock()
	idx := h.indexOf(name)
	if idx < 0 {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrChildNotFound, name)
	}
	c := h.children[idx]
	next := make([]lifecycle.Lifecycle, 0, len(h.children)-1)
	next = append(next, h.children[:idx]...)
	h.children = append(next, h.children[idx+1:]...)
	h.mu.Unlock()

	if s := c.State(); s.Available() || s == lifecycle.StateFailed {
		if err := c.Stop(); err != nil {
			h.logger.Warn("failed to stop removed child",
				log.Component(h.Name()), log.String("child", name), log.Err(err))
		}
	}
	if err := c.Destroy(); err != nil {
		h.logger.Warn("failed to destroy removed child",
			log.Component(h.Name()), log.String("child", name), log.Err(err))
	}

	if h.status != nil {
		c.RemoveListener(h.status)
		h.status.forget(name)
	}

	h.logger.Debug("child removed", log.Component(h.Name()), log.String("child", name))
	return nil
}

// FindChild returns the child with the given name.
func (h *Host) FindChild(name string) (lifecycle.Lifecycle, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if idx := h.indexOf(name); idx >= 0 {
		return h.children[idx], true
	}
	return nil, false
}

// Children returns the children in registration order.
func (h *Host) Children() []lifecycle.Lifecycle {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]lifecycle.Lifecycle, len(h.children))
	copy(out, h.children)
	return out
}

// Status returns the last recorded status snapshot. It is empty unless the
// host was created WithStatusRepository.
func (h *Host) Status() state.Snapshot {
	if h.status == nil {
		return state.Snapshot{}
	}
	return h.status.snapshot()
}

// PreviousStatus returns the snapshot the status repository held when the
// host was created, typically written by the previous run.
func (h *Host) PreviousStatus() state.Snapshot {
	if h.status == nil {
		return state.Snapshot{}
	}
	return h.status.previous.Clone()
}

func (h *Host) indexOf(name string) int {
	for i, c := range h.children {
		if c.Name() == name {
			return i
		}
	}
	return -1
}

// OnInit initializes the children in registration order.
func (h *Host) OnInit(g lifecycle.Gate) error {
	for _, c := range h.Children() {
		if c.State() != lifecycle.StateNew {
			continue
		}
		if err := c.Init(); err != nil {
			return fmt.Errorf("init child %s: %w", c.Name(), err)
		}
	}
	return nil
}

// OnStart starts the children and then the background processor.
func (h *Host) OnStart(g lifecycle.Gate) error {
	if err := h.forEachChild(lifecycle.OpStart, startChild); err != nil {
		return err
	}
	if err := g.SetState(lifecycle.StateStarting); err != nil {
		return err
	}
	h.bg.start()
	return nil
}

// OnStop stops the background processor and then the children.
func (h *Host) OnStop(g lifecycle.Gate) error {
	h.bg.stop()
	if err := g.SetState(lifecycle.StateStopping); err != nil {
		return err
	}
	return h.forEachChild(lifecycle.OpStop, stopChild)
}

// OnDestroy destroys the children in reverse registration order.
func (h *Host) OnDestroy(g lifecycle.Gate) error {
	children := h.Children()
	var errs []error
	for i := len(children) - 1; i >= 0; i-- {
		c := children[i]
		if err := c.Destroy(); err != nil {
			h.logger.Error("child destroy failed",
				log.Component(h.Name()), log.String("child", c.Name()), log.Err(err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &lifecycle.FailureError{Component: h.Name(), Op: lifecycle.OpDestroy, Err: errors.Join(errs...)}
	}
	return nil
}

// forEachChild runs fn on every child, at most threads() at a time, and
// reports all failures together.
func (h *Host) forEachChild(op lifecycle.Op, fn func(lifecycle.Lifecycle) error) error {
	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(h.threads())

	for _, c := range h.Children() {
		c := c
		g.Go(func() error {
			if err := fn(c); err != nil {
				h.logger.Error("child "+string(op)+" failed",
					log.Component(h.Name()), log.String("child", c.Name()), log.Err(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return &lifecycle.FailureError{Component: h.Name(), Op: op, Err: errors.Join(errs...)}
	}
	return nil
}

func (h *Host) threads() int {
	n := h.opts.startStopThreads
	switch {
	case n > 0:
		return n
	case n == 0:
		return runtime.NumCPU()
	}
	if n += runtime.NumCPU(); n < 1 {
		n = 1
	}
	return n
}

func startChild(c lifecycle.Lifecycle) error {
	if destroyed(c) {
		return nil
	}
	return c.Start()
}

func stopChild(c lifecycle.Lifecycle) error {
	// Never started, e.g. the host failed while starting earlier children.
	if c.State() == lifecycle.StateInitialized || destroyed(c) {
		return nil
	}
	return c.Stop()
}

// destroyed reports whether c is gone, e.g. a single-use child that
// failed in a controlled way and destroyed itself.
func destroyed(c lifecycle.Lifecycle) bool {
	s := c.State()
	return s == lifecycle.StateDestroying || s == lifecycle.StateDestroyed
}

var (
	_ lifecycle.Lifecycle = (*Host)(nil)
	_ lifecycle.Component = (*Host)(nil)
	_ BackgroundProcessor = (*Host)(nil)
)
