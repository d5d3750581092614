package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bft-labs/hostd/pkg/log"
)

// FailurePolicy decides what happens to an error returned by a hook.
type FailurePolicy int32

const (
	// PolicyThrow returns hook errors to the caller, wrapped in *FailureError.
	PolicyThrow FailurePolicy = iota
	// PolicyLog logs hook errors; callers must check State for StateFailed.
	PolicyLog
)

func (p FailurePolicy) String() string {
	switch p {
	case PolicyThrow:
		return "throw"
	case PolicyLog:
		return "log"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int32(p))
	}
}

// ParseFailurePolicy parses "throw" or "log" (case-insensitive).
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "throw":
		return PolicyThrow, nil
	case "log":
		return PolicyLog, nil
	default:
		return PolicyThrow, fmt.Errorf("unknown failure policy %q (want throw or log)", s)
	}
}

// handleFailure moves the component to FAILED after err escaped a scripted
// sequence and decides whether err reaches the caller.
func (b *Base) handleFailure(op Op, err error) error {
	_ = b.setState(StateFailed, nil, false)

	if errors.Is(err, ErrUnrecoverable) || b.raised(err) {
		return err
	}

	if b.FailurePolicy() == PolicyThrow {
		var fe *FailureError
		if !errors.As(err, &fe) {
			err = &FailureError{Component: b.name, Op: op, Err: err}
		}
		return err
	}

	b.logger.Error("component "+string(op)+" failed",
		log.Component(b.name),
		log.String("op", string(op)),
		log.Err(err),
	)
	return nil
}

// raised reports whether err carries a *TransitionError raised by b itself.
// Transition errors of other components returned by a hook are ordinary
// hook failures.
func (b *Base) raised(err error) bool {
	var te *TransitionError
	return errors.As(err, &te) && te.source == b
}
