package lifecycle

// Event is delivered to listeners when a component changes state or
// announces something through FireEvent.
type Event struct {
	// Type is the event type, one of the Event* constants or a
	// component-defined name.
	Type string

	// Source is the component the event originates from.
	Source Lifecycle

	// Data is passed through unmodified from the caller that fired the event.
	Data any
}

// Listener observes the events of the components it is registered with.
//
// Listeners run synchronously on the goroutine performing the transition,
// while that component's lock is held. They may add or remove listeners and
// read State, but must not call the component's verbs.
// A returned error stops dispatch and is reported to the firing operation.
type Listener interface {
	LifecycleEvent(event Event) error
}

// NewListener adapts fn to a Listener. The returned value can be passed to
// RemoveListener.
func NewListener(fn func(Event) error) Listener {
	return &funcListener{fn: fn}
}

type funcListener struct {
	fn func(Event) error
}

func (l *funcListener) LifecycleEvent(event Event) error {
	return l.fn(event)
}
