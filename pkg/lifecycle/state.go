package lifecycle

import "fmt"

// State represents the lifecycle state of a managed component.
// Only the transitions listed in the package documentation are meaningful;
// the numeric order is not.
type State int

const (
	StateNew State = iota
	StateInitializing
	StateInitialized
	StateStartingPrep
	StateStarting
	StateStarted
	StateStoppingPrep
	StateStopping
	StateStopped
	StateDestroying
	StateDestroyed
	StateFailed
)

// Event types fired by the engine and by components.
const (
	EventBeforeInit     = "before_init"
	EventAfterInit      = "after_init"
	EventBeforeStart    = "before_start"
	EventStart          = "start"
	EventAfterStart     = "after_start"
	EventBeforeStop     = "before_stop"
	EventStop           = "stop"
	EventAfterStop      = "after_stop"
	EventBeforeDestroy  = "before_destroy"
	EventAfterDestroy   = "after_destroy"
	EventPeriodic       = "periodic"
	EventConfigureStart = "configure_start"
	EventConfigureStop  = "configure_stop"
)

var states = [...]struct {
	name      string
	event     string
	available bool
}{
	StateNew:          {"NEW", "", false},
	StateInitializing: {"INITIALIZING", EventBeforeInit, false},
	StateInitialized:  {"INITIALIZED", EventAfterInit, false},
	StateStartingPrep: {"STARTING_PREP", EventBeforeStart, false},
	StateStarting:     {"STARTING", EventStart, true},
	StateStarted:      {"STARTED", EventAfterStart, true},
	StateStoppingPrep: {"STOPPING_PREP", EventBeforeStop, true},
	StateStopping:     {"STOPPING", EventStop, false},
	StateStopped:      {"STOPPED", EventAfterStop, false},
	StateDestroying:   {"DESTROYING", EventBeforeDestroy, false},
	StateDestroyed:    {"DESTROYED", EventAfterDestroy, false},
	StateFailed:       {"FAILED", "", false},
}

// String returns the state name, e.g. "STARTING_PREP".
func (s State) String() string {
	if !s.valid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return states[s].name
}

// Event returns the event type fired when a component enters s,
// or "" if entering s is silent.
func (s State) Event() string {
	if !s.valid() {
		return ""
	}
	return states[s].event
}

// Available reports whether a component in state s may be handed work.
func (s State) Available() bool {
	return s.valid() && states[s].available
}

// IsStateEvent reports whether eventType is fired by a state change,
// as opposed to periodic, configure_* and component-defined events.
func IsStateEvent(eventType string) bool {
	if eventType == "" {
		return false
	}
	for _, st := range states {
		if st.event == eventType {
			return true
		}
	}
	return false
}

func (s State) valid() bool {
	return s >= StateNew && s <= StateFailed
}
