package lifecycle

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/hostd/pkg/log"
)

// Base runs the lifecycle state machine for one Component.
type Base struct {
	name      string
	component Component
	logger    log.Logger
	singleUse bool

	// mu serializes the verbs and the checked gate.
	mu sync.Mutex

	// state is written with mu held and read lock-free.
	state  atomic.Int32
	policy atomic.Int32

	listeners listenerList
}

// Option configures a Base.
type Option func(*Base)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(b *Base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithFailurePolicy sets the initial failure policy (default PolicyThrow).
func WithFailurePolicy(p FailurePolicy) Option {
	return func(b *Base) {
		b.policy.Store(int32(p))
	}
}

// WithSingleUse makes Stop destroy the component once it completes,
// as if the Component implemented SingleUse.
func WithSingleUse() Option {
	return func(b *Base) {
		b.singleUse = true
	}
}

// WithListener registers l before the component is returned.
func WithListener(l Listener) Option {
	return func(b *Base) {
		b.listeners.add(l)
	}
}

// New creates a Base in StateNew driving c. An empty name is replaced by
// the component's type name.
func New(name string, c Component, opts ...Option) *Base {
	if name == "" {
		name = fmt.Sprintf("%T", c)
	}
	b := &Base{
		name:      name,
		component: c,
		logger:    log.NewNoopLogger(),
	}
	if _, ok := c.(SingleUse); ok {
		b.singleUse = true
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the component name.
func (b *Base) Name() string {
	return b.name
}

// Component returns the component driven by b.
func (b *Base) Component() Component {
	return b.component
}

// IsSingleUse reports whether Stop is followed by an automatic Destroy.
func (b *Base) IsSingleUse() bool {
	return b.singleUse
}

// State returns the current state. It never blocks and may observe
// intermediate states of a transition running on another goroutine.
func (b *Base) State() State {
	return State(b.state.Load())
}

// StateName returns the name of the current state.
func (b *Base) StateName() string {
	return b.State().String()
}

// FailurePolicy returns the current failure policy.
func (b *Base) FailurePolicy() FailurePolicy {
	return FailurePolicy(b.policy.Load())
}

// SetFailurePolicy changes the failure policy for subsequent verbs.
func (b *Base) SetFailurePolicy(p FailurePolicy) {
	b.policy.Store(int32(p))
}

// AddListener registers l. Safe to call at any time, including from a listener.
func (b *Base) AddListener(l Listener) {
	b.listeners.add(l)
}

// RemoveListener unregisters l and reports whether it was registered.
func (b *Base) RemoveListener(l Listener) bool {
	return b.listeners.remove(l)
}

// Listeners returns the registered listeners in registration order.
func (b *Base) Listeners() []Listener {
	snap := b.listeners.snapshot()
	out := make([]Listener, len(snap))
	copy(out, snap)
	return out
}

// FireEvent delivers an event of the given type to the current listeners.
// It does not change state and does not take the component lock.
func (b *Base) FireEvent(eventType string, data any) error {
	return b.fire(eventType, data)
}

// SetState requests a checked transition from outside a hook, for example
// from a component's background goroutine reporting StateFailed.
// Hooks must use their Gate instead; calling SetState from a hook deadlocks.
func (b *Base) SetState(state State) error {
	return b.SetStateData(state, nil)
}

// SetStateData is SetState with a payload for the fired event.
func (b *Base) SetStateData(state State, data any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.setState(state, data, true)
}

// Init moves a new component to StateInitialized.
func (b *Base) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.init()
}

// Start starts the component. See the package documentation for the
// transitions it performs.
func (b *Base) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.start()
}

// Stop stops the component, destroying it afterwards if it is single-use.
func (b *Base) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stop()
}

// Destroy releases the component. A failed component is stopped first.
func (b *Base) Destroy() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destroy()
}

func (b *Base) init() error {
	if b.State() != StateNew {
		return b.invalidTransition(EventBeforeInit)
	}

	return b.run(OpInit, func() error {
		if err := b.setState(StateInitializing, nil, false); err != nil {
			return err
		}
		if err := b.callHook(b.component.OnInit); err != nil {
			return err
		}
		return b.setState(StateInitialized, nil, false)
	})
}

func (b *Base) start() error {
	switch b.State() {
	case StateStartingPrep, StateStarting, StateStarted:
		b.logNoop("component already started", false)
		return nil
	case StateNew:
		if err := b.init(); err != nil {
			return err
		}
	case StateFailed:
		if err := b.stop(); err != nil {
			return err
		}
	case StateInitialized, StateStopped:
	default:
		return b.invalidTransition(EventBeforeStart)
	}

	// The recovery stop destroys a single-use component.
	if s := b.State(); s == StateDestroying || s == StateDestroyed {
		return b.invalidTransition(EventBeforeStart)
	}

	return b.run(OpStart, func() error {
		if err := b.setState(StateStartingPrep, nil, false); err != nil {
			return err
		}
		if err := b.callHook(b.component.OnStart); err != nil {
			return err
		}

		switch b.State() {
		case StateFailed:
			// Controlled failure: the component marked itself failed,
			// stop it to complete the clean-up.
			return b.stop()
		case StateStarting:
			return b.setState(StateStarted, nil, false)
		default:
			return b.invalidTransition(EventAfterStart)
		}
	})
}

func (b *Base) stop() (err error) {
	switch b.State() {
	case StateStoppingPrep, StateStopping, StateStopped:
		b.logNoop("component already stopped", false)
		return nil
	case StateNew:
		// Never started: no hook and no events.
		b.state.Store(int32(StateStopped))
		return nil
	case StateStarted, StateFailed:
	default:
		return b.invalidTransition(EventBeforeStop)
	}

	if b.singleUse {
		defer func() {
			serr := b.setState(StateStopped, nil, false)
			if err == nil {
				err = serr
			}
			derr := b.destroy()
			if err == nil {
				err = derr
			}
		}()
	}

	return b.run(OpStop, func() error {
		if b.State() == StateFailed {
			// Not entering STOPPING_PREP keeps a failed component from
			// briefly reporting itself available.
			if err := b.fire(EventBeforeStop, nil); err != nil {
				return err
			}
		} else if err := b.setState(StateStoppingPrep, nil, false); err != nil {
			return err
		}

		if err := b.callHook(b.component.OnStop); err != nil {
			return err
		}

		if s := b.State(); s != StateStopping && s != StateFailed {
			return b.invalidTransition(EventAfterStop)
		}
		return b.setState(StateStopped, nil, false)
	})
}

func (b *Base) destroy() error {
	if b.State() == StateFailed {
		if err := b.stop(); err != nil {
			if errors.Is(err, ErrUnrecoverable) {
				return err
			}
			b.logger.Error("failed to stop component before destroy",
				log.Component(b.name), log.Err(err))
		}
	}

	switch b.State() {
	case StateDestroying, StateDestroyed:
		// Single-use components reach here from their own Stop.
		b.logNoop("component already destroyed", b.singleUse)
		return nil
	case StateStopped, StateFailed, StateNew, StateInitialized:
	default:
		return b.invalidTransition(EventBeforeDestroy)
	}

	return b.run(OpDestroy, func() error {
		if err := b.setState(StateDestroying, nil, false); err != nil {
			return err
		}
		if err := b.callHook(b.component.OnDestroy); err != nil {
			return err
		}
		return b.setState(StateDestroyed, nil, false)
	})
}

// run executes one scripted sequence. Errors go through the failure policy;
// a panic leaves the component FAILED and keeps unwinding.
func (b *Base) run(op Op, seq func() error) error {
	defer func() {
		if r := recover(); r != nil {
			b.state.Store(int32(StateFailed))
			b.logger.Error("component panicked",
				log.Component(b.name),
				log.String("op", string(op)),
				log.Any("panic", r),
			)
			panic(r)
		}
	}()

	if err := seq(); err != nil {
		return b.handleFailure(op, err)
	}
	return nil
}

// setState is the only writer of b.state. mu must be held.
func (b *Base) setState(state State, data any, check bool) error {
	b.logger.Debug("setting state",
		log.Component(b.name),
		log.String("from", b.State().String()),
		log.String("to", state.String()),
	)

	if check && !legal(b.State(), state) {
		return b.invalidTransition(state.String())
	}

	b.state.Store(int32(state))
	if event := state.Event(); event != "" {
		return b.fire(event, data)
	}
	return nil
}

// legal reports whether a hook may move a component from cur to next.
func legal(cur, next State) bool {
	if !next.valid() {
		return false
	}
	switch {
	case next == StateFailed:
		return true
	case cur == StateStartingPrep && next == StateStarting:
		return true
	case cur == StateStoppingPrep && next == StateStopping:
		return true
	case cur == StateFailed && next == StateStopping:
		return true
	default:
		return false
	}
}

func (b *Base) fire(eventType string, data any) error {
	return b.listeners.fire(Event{Type: eventType, Source: b, Data: data})
}

func (b *Base) invalidTransition(target string) error {
	return &TransitionError{Component: b.name, Target: target, Current: b.State(), source: b}
}

// callHook runs hook with a Gate bound to the lock the caller already holds.
func (b *Base) callHook(hook func(Gate) error) error {
	g := &hookGate{b: b}
	defer g.done.Store(true)
	return hook(g)
}

// logNoop records an idempotent call: at debug with a stack when debug is
// enabled, otherwise at info unless quiet.
func (b *Base) logNoop(msg string, quiet bool) {
	if log.DebugEnabled(b.logger) {
		b.logger.Debug(msg,
			log.Component(b.name),
			log.String("state", b.State().String()),
			log.String("stack", string(debug.Stack())),
		)
		return
	}
	if !quiet {
		b.logger.Info(msg, log.Component(b.name), log.String("state", b.State().String()))
	}
}

type hookGate struct {
	b    *Base
	done atomic.Bool
}

func (g *hookGate) Name() string { return g.b.name }
func (g *hookGate) State() State { return g.b.State() }

func (g *hookGate) SetState(state State) error {
	return g.SetStateData(state, nil)
}

func (g *hookGate) SetStateData(state State, data any) error {
	if g.done.Load() {
		return g.b.SetStateData(state, data)
	}
	return g.b.setState(state, data, true)
}

func (g *hookGate) FireEvent(eventType string, data any) error {
	return g.b.fire(eventType, data)
}

var _ Lifecycle = (*Base)(nil)
