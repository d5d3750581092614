// Package host provides a composite component that manages the lifecycle of
// a set of child components.
//
// A [Host] is itself a lifecycle component: starting the host initializes
// and starts its children, stopping it stops them, and destroying it
// destroys them. Children can be added and removed while the host runs.
//
// # Basic Usage
//
//	h, err := host.New("hostd",
//	    host.WithLogger(logger),
//	    host.WithStartStopThreads(4),
//	)
//	if err != nil {
//	    return err
//	}
//
//	if err := h.AddChild(myComponent); err != nil {
//	    return err
//	}
//
//	if err := h.Start(); err != nil {
//	    return err
//	}
//	defer h.Destroy()
//	defer h.Stop()
//
// # Children
//
// Children are initialized in registration order when the host is
// initialized. They are started and stopped concurrently, at most
// start-stop-threads at a time; every child is attempted and all failures
// are reported in one [lifecycle.FailureError]. Children are destroyed in
// reverse registration order.
//
// A child added while the host is available is started immediately.
//
// # Background Processing
//
// While the host is started, a background goroutine calls
// [BackgroundProcessor.BackgroundProcess] on every available child that
// implements it and then fires a periodic event on the host. The pause
// between passes is set with [WithBackgroundDelay].
//
// # Status
//
// With [WithStatusRepository], the host records the state of itself and of
// every child after each state change and saves the snapshot to the
// repository. Each Host has its own run id.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// Use [ModuleVersions] to get versions of all sub-modules.
package host
