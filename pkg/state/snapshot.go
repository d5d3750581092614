package state

import (
	"sort"
	"time"
)

// ComponentStatus is the last observed state of one component.
type ComponentStatus struct {
	// State is the lifecycle state name, e.g. "STARTED".
	State string `json:"state"`

	// LastEvent is the type of the last event observed for the component.
	LastEvent string `json:"last_event"`

	// UpdatedAt is when the event was observed.
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is the persisted status of a host and its components.
type Snapshot struct {
	// RunID identifies the process run that wrote the snapshot.
	RunID string `json:"run_id"`

	// Host is the name of the host component.
	Host string `json:"host"`

	// Components maps component names to their last observed status.
	Components map[string]ComponentStatus `json:"components"`

	// UpdatedAt is the time of the most recent Record.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty returns true if the snapshot has never been written.
func (s Snapshot) IsEmpty() bool {
	return s.RunID == "" && len(s.Components) == 0
}

// Record stores the status of a component.
func (s *Snapshot) Record(component, state, event string, at time.Time) {
	if s.Components == nil {
		s.Components = make(map[string]ComponentStatus)
	}
	s.Components[component] = ComponentStatus{
		State:     state,
		LastEvent: event,
		UpdatedAt: at,
	}
	if at.After(s.UpdatedAt) {
		s.UpdatedAt = at
	}
}

// Forget drops a component from the snapshot.
func (s *Snapshot) Forget(component string) {
	delete(s.Components, component)
}

// Names returns the recorded component names in sorted order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.Components))
	for name := range s.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Components != nil {
		out.Components = make(map[string]ComponentStatus, len(s.Components))
		for k, v := range s.Components {
			out.Components[k] = v
		}
	}
	return out
}
