package host

import (
	"sync"

	"github.com/bft-labs/hostd/pkg/lifecycle"
)

// journal records hook calls across components in call order.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, s)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// journaled returns hooks that write to j and otherwise behave as defaults.
func journaled(name string, j *journal) lifecycle.Funcs {
	return lifecycle.Funcs{
		Init: func(g lifecycle.Gate) error {
			j.add("init:" + name)
			return nil
		},
		Start: func(g lifecycle.Gate) error {
			j.add("start:" + name)
			return g.SetState(lifecycle.StateStarting)
		},
		Stop: func(g lifecycle.Gate) error {
			j.add("stop:" + name)
			return g.SetState(lifecycle.StateStopping)
		},
		Destroy: func(g lifecycle.Gate) error {
			j.add("destroy:" + name)
			return nil
		},
	}
}

// processingChild is a child that counts background passes.
type processingChild struct {
	*lifecycle.Base

	mu     sync.Mutex
	passes int
	err    error
}

func newProcessingChild(name string) *processingChild {
	c := &processingChild{}
	c.Base = lifecycle.New(name, lifecycle.Funcs{})
	return c
}

func (c *processingChild) BackgroundProcess() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passes++
	return c.err
}

func (c *processingChild) Passes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.passes
}

// processingComponent is a plain Component with background work, to be
// wrapped by lifecycle.New.
type processingComponent struct {
	lifecycle.Funcs

	mu     sync.Mutex
	passes int
}

func (c *processingComponent) BackgroundProcess() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passes++
	return nil
}

func (c *processingComponent) Passes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.passes
}

// eventCounter counts events by type.
type eventCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newEventCounter() *eventCounter {
	return &eventCounter{counts: map[string]int{}}
}

func (c *eventCounter) LifecycleEvent(e lifecycle.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[e.Type]++
	return nil
}

func (c *eventCounter) Count(eventType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[eventType]
}
