// Package lifecycle provides the state machine that drives pluggable server
// components through initialize, start, stop and destroy.
//
// A component supplies four hooks by implementing [Component]. The engine,
// [Base], owns the component's state and listener list, serializes the four
// verbs, and routes hook failures through a per-instance [FailurePolicy].
//
// # Usage
//
//	b := lifecycle.New("connector", &connector{},
//	    lifecycle.WithLogger(logger),
//	    lifecycle.WithListener(lifecycle.NewListener(func(e lifecycle.Event) error {
//	        fmt.Println(e.Source.Name(), e.Type)
//	        return nil
//	    })),
//	)
//
//	if err := b.Start(); err != nil { // runs Init first
//	    return err
//	}
//	defer b.Destroy()
//	defer b.Stop()
//
// # Hook contract
//
// OnStart must move the component to [StateStarting] through the [Gate] it
// receives before returning, and OnStop must move it to [StateStopping].
// Either hook may instead set [StateFailed] and return nil. That is a
// controlled failure: the engine stops the component and the caller of
// Start sees no error. Returning an error is an uncontrolled failure and is
// handled by the failure policy.
//
// # State Machine
//
// Scripted transitions performed by the verbs:
//   - Init:    New -> Initializing -> Initialized
//   - Start:   Initialized|Stopped -> StartingPrep -> (hook: Starting) -> Started
//   - Stop:    Started -> StoppingPrep -> (hook: Stopping) -> Stopped
//   - Stop:    Failed -> (hook: Stopping or Failed) -> Stopped
//   - Destroy: Stopped|Failed|New|Initialized -> Destroying -> Destroyed
//
// Transitions a hook may request through the Gate:
//   - any state -> Failed
//   - StartingPrep -> Starting
//   - StoppingPrep -> Stopping
//   - Failed -> Stopping
//
// # Concurrency
//
// The verbs and the Gate share one mutex per component. Verbs that call each
// other (Start runs Init, Destroy runs Stop) do so through unlocked internal
// paths, so the lock is taken once per public call. A [Gate] relies on
// that lock being held by its hook's caller: it is not safe to use from a
// goroutine the hook starts until the hook has returned. [Base.State] reads an
// atomic and never blocks. Listener registration has its own
// copy-on-write storage and may be changed from inside a listener or hook.
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
package lifecycle
