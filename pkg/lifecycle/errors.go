package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is matched by every *TransitionError.
	ErrInvalidTransition = errors.New("lifecycle: invalid state transition")

	// ErrUnrecoverable marks hook errors that must reach the caller whatever
	// the failure policy says. Wrap it to use it:
	//
	//	return fmt.Errorf("mmap arena: %w", lifecycle.ErrUnrecoverable)
	ErrUnrecoverable = errors.New("lifecycle: unrecoverable failure")
)

// Op names the verb during which a failure happened.
type Op string

const (
	OpInit    Op = "init"
	OpStart   Op = "start"
	OpStop    Op = "stop"
	OpDestroy Op = "destroy"
)

// TransitionError reports a verb called in the wrong state or a hook that
// broke its contract. It is returned regardless of the failure policy.
type TransitionError struct {
	// Component is the name of the component.
	Component string
	// Target is the attempted event type or state name.
	Target string
	// Current is the state the component was in.
	Current State

	// source is the engine that raised the error.
	source *Base
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("lifecycle: invalid transition %q for component %s in state %s",
		e.Target, e.Component, e.Current)
}

// Is makes errors.Is(err, ErrInvalidTransition) succeed.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// FailureError wraps an error returned by a component hook.
type FailureError struct {
	Component string
	Op        Op
	Err       error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("lifecycle: failed to %s component %s: %v", e.Op, e.Component, e.Err)
}

func (e *FailureError) Unwrap() error {
	return e.Err
}

// IsLifecycleError reports whether err already carries a *TransitionError
// or a *FailureError.
func IsLifecycleError(err error) bool {
	var te *TransitionError
	if errors.As(err, &te) {
		return true
	}
	var fe *FailureError
	return errors.As(err, &fe)
}
