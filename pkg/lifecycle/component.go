package lifecycle

// Lifecycle is the public face of a managed component.
type Lifecycle interface {
	// Name identifies the component in logs, errors and status snapshots.
	Name() string

	// Init prepares the component. Only legal from StateNew.
	Init() error

	// Start runs Init when needed and starts the component.
	// Calling Start on a starting or started component is a no-op.
	Start() error

	// Stop stops the component. Calling Stop on a stopping or stopped
	// component is a no-op.
	Stop() error

	// Destroy releases the component. Calling Destroy twice is a no-op.
	Destroy() error

	// State returns the current state without blocking.
	State() State

	// StateName returns State().String().
	StateName() string

	AddListener(l Listener)
	RemoveListener(l Listener) bool
	Listeners() []Listener

	// SetFailurePolicy decides whether later hook errors are returned or logged.
	SetFailurePolicy(p FailurePolicy)
}

// Component is implemented by everything the engine drives.
//
// OnStart must call g.SetState(StateStarting) before returning nil, and
// OnStop must call g.SetState(StateStopping). Both may call
// g.SetState(StateFailed) and return nil to abort in a controlled way.
type Component interface {
	OnInit(g Gate) error
	OnStart(g Gate) error
	OnStop(g Gate) error
	OnDestroy(g Gate) error
}

// Gate is the engine's checked state setter as seen from inside a hook.
//
// While the hook runs, the Gate writes state under the lock held by the
// verb that called the hook, so it must only be used on the hook's own
// goroutine. Goroutines started by a hook must not touch the Gate before
// the hook has returned; they should report through Base.SetState instead.
// Once the hook has returned, the Gate behaves like the locking Base methods.
type Gate interface {
	Name() string
	State() State
	SetState(state State) error
	SetStateData(state State, data any) error
	FireEvent(eventType string, data any) error
}

// SingleUse is a marker a Component implements when it must be destroyed
// as soon as its first Stop completes.
type SingleUse interface {
	SingleUse()
}

// Funcs builds a Component from plain functions. A nil Start or Stop only
// performs the required state change; other nil hooks do nothing.
type Funcs struct {
	Init    func(g Gate) error
	Start   func(g Gate) error
	Stop    func(g Gate) error
	Destroy func(g Gate) error
}

// OnInit calls f.Init if set.
func (f Funcs) OnInit(g Gate) error {
	if f.Init == nil {
		return nil
	}
	return f.Init(g)
}

// OnStart calls f.Start, or moves the component to StateStarting.
func (f Funcs) OnStart(g Gate) error {
	if f.Start == nil {
		return g.SetState(StateStarting)
	}
	return f.Start(g)
}

// OnStop calls f.Stop, or moves the component to StateStopping.
func (f Funcs) OnStop(g Gate) error {
	if f.Stop == nil {
		return g.SetState(StateStopping)
	}
	return f.Stop(g)
}

// OnDestroy calls f.Destroy if set.
func (f Funcs) OnDestroy(g Gate) error {
	if f.Destroy == nil {
		return nil
	}
	return f.Destroy(g)
}
