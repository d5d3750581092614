package lifecycle

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateNew, "NEW"},
		{StateInitializing, "INITIALIZING"},
		{StateInitialized, "INITIALIZED"},
		{StateStartingPrep, "STARTING_PREP"},
		{StateStarting, "STARTING"},
		{StateStarted, "STARTED"},
		{StateStoppingPrep, "STOPPING_PREP"},
		{StateStopping, "STOPPING"},
		{StateStopped, "STOPPED"},
		{StateDestroying, "DESTROYING"},
		{StateDestroyed, "DESTROYED"},
		{StateFailed, "FAILED"},
		{State(99), "State(99)"},
		{State(-1), "State(-1)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}

func TestState_Event(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateNew, ""},
		{StateInitializing, EventBeforeInit},
		{StateInitialized, EventAfterInit},
		{StateStartingPrep, EventBeforeStart},
		{StateStarting, EventStart},
		{StateStarted, EventAfterStart},
		{StateStoppingPrep, EventBeforeStop},
		{StateStopping, EventStop},
		{StateStopped, EventAfterStop},
		{StateDestroying, EventBeforeDestroy},
		{StateDestroyed, EventAfterDestroy},
		{StateFailed, ""},
		{State(42), ""},
	}

	for _, tt := range tests {
		if got := tt.state.Event(); got != tt.want {
			t.Errorf("%s.Event() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_Available(t *testing.T) {
	available := map[State]bool{
		StateStarting:     true,
		StateStarted:      true,
		StateStoppingPrep: true,
	}

	for s := StateNew; s <= StateFailed; s++ {
		if got := s.Available(); got != available[s] {
			t.Errorf("%s.Available() = %v, want %v", s, got, available[s])
		}
	}
	if State(99).Available() {
		t.Error("unknown state should not be available")
	}
}

func TestLegal(t *testing.T) {
	for cur := StateNew; cur <= StateFailed; cur++ {
		for next := StateNew; next <= StateFailed; next++ {
			want := next == StateFailed ||
				(cur == StateStartingPrep && next == StateStarting) ||
				(cur == StateStoppingPrep && next == StateStopping) ||
				(cur == StateFailed && next == StateStopping)
			if got := legal(cur, next); got != want {
				t.Errorf("legal(%s, %s) = %v, want %v", cur, next, got, want)
			}
		}
	}
	if legal(StateStartingPrep, State(77)) {
		t.Error("unknown target state must be rejected")
	}
}

func TestIsStateEvent(t *testing.T) {
	for _, e := range []string{EventBeforeInit, EventAfterStart, EventBeforeStop, EventAfterDestroy} {
		if !IsStateEvent(e) {
			t.Errorf("IsStateEvent(%q) = false, want true", e)
		}
	}
	for _, e := range []string{"", EventPeriodic, EventConfigureStart, EventConfigureStop, "custom"} {
		if IsStateEvent(e) {
			t.Errorf("IsStateEvent(%q) = true, want false", e)
		}
	}
}
