// Package hostd provides a lifecycle host for long-running components.
//
// Components implement the lifecycle contract of package lifecycle and are
// added to a Host, which initializes, starts, stops and destroys them along
// with itself.
//
// Example usage:
//
//	h, err := hostd.New("hostd", host.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := h.AddChild(myComponent); err != nil {
//	    log.Fatal(err)
//	}
//	if err := hostd.Run(ctx, h); err != nil {
//	    log.Fatal(err)
//	}
package hostd

import (
	"context"
	"errors"
	"fmt"

	"github.com/bft-labs/hostd/pkg/host"
	"github.com/bft-labs/hostd/pkg/lifecycle"
)

// Host is a component managing the lifecycle of its children.
type Host = host.Host

// Option configures a Host.
type Option = host.Option

// Lifecycle is the public face of a managed component.
type Lifecycle = lifecycle.Lifecycle

// Component is implemented by everything a lifecycle.Base drives.
type Component = lifecycle.Component

// New creates a Host in the NEW state.
func New(name string, opts ...Option) (*Host, error) {
	return host.New(name, opts...)
}

// ErrStartFailed is returned by Run and RunOnce when the host ends up FAILED
// after Start without Start returning an error, which happens under the log
// failure policy.
var ErrStartFailed = errors.New("hostd: host failed to start")

// Run starts h and blocks until ctx is cancelled, then stops and destroys
// it. A host that fails to start is destroyed before Run returns.
func Run(ctx context.Context, h *Host) error {
	if err := start(h); err != nil {
		return err
	}
	<-ctx.Done()
	return shutdown(h)
}

// RunOnce starts h, runs one background pass, then stops and destroys it.
func RunOnce(h *Host) error {
	if err := start(h); err != nil {
		return err
	}
	if err := h.BackgroundProcess(); err != nil {
		return errors.Join(fmt.Errorf("background pass: %w", err), shutdown(h))
	}
	return shutdown(h)
}

func start(h *Host) error {
	err := h.Start()
	if err == nil && h.State() != lifecycle.StateFailed {
		return nil
	}
	if err == nil {
		err = ErrStartFailed
	}
	if derr := h.Destroy(); derr != nil {
		err = errors.Join(err, derr)
	}
	return err
}

func shutdown(h *Host) error {
	return errors.Join(h.Stop(), h.Destroy())
}
