package host_test

import (
	"fmt"

	"github.com/bft-labs/hostd/pkg/host"
	"github.com/bft-labs/hostd/pkg/lifecycle"
)

// ExampleNew demonstrates running a host with two children.
func ExampleNew() {
	connector := lifecycle.New("connector", lifecycle.Funcs{
		Start: func(g lifecycle.Gate) error {
			return g.SetStateData(lifecycle.StateStarting, ":8080")
		},
	})
	realm := lifecycle.New("realm", lifecycle.Funcs{})

	h, err := host.New("server",
		host.WithChild(connector),
		host.WithChild(realm),
		host.WithBackgroundDelay(0),
	)
	if err != nil {
		fmt.Printf("failed to create host: %v\n", err)
		return
	}

	if err := h.Start(); err != nil {
		fmt.Printf("failed to start: %v\n", err)
		return
	}
	for _, c := range h.Children() {
		fmt.Printf("%s: %s\n", c.Name(), c.StateName())
	}

	_ = h.Stop()
	_ = h.Destroy()
	fmt.Printf("%s: %s\n", h.Name(), h.StateName())

	// Output:
	// connector: STARTED
	// realm: STARTED
	// server: DESTROYED
}

// Example_listener demonstrates observing a host's lifecycle events.
func Example_listener() {
	h, _ := host.New("server", host.WithBackgroundDelay(0))
	h.AddListener(lifecycle.NewListener(func(e lifecycle.Event) error {
		fmt.Printf("%s -> %s\n", e.Type, e.Source.StateName())
		return nil
	}))

	_ = h.Start()

	// Output:
	// before_init -> INITIALIZING
	// after_init -> INITIALIZED
	// before_start -> STARTING_PREP
	// start -> STARTING
	// after_start -> STARTED
}

// Example_moduleVersions demonstrates version checking.
func Example_moduleVersions() {
	fmt.Printf("host version: %s\n", host.ModuleVersions()["host"])

	// Output: host version: 1.0.0
}
