// Package state persists status snapshots of a running host.
//
// A snapshot records the state every managed component was last seen in,
// so that operators and supervisors can inspect a host without talking to
// it. The host writes a snapshot after each lifecycle event it observes.
//
// # Usage
//
// Create a file-based repository:
//
//	repo := state.NewFileRepository("/var/lib/hostd")
//
//	// Load the last snapshot
//	s, err := repo.Load(ctx)
//	if err != nil {
//	    return err
//	}
//
//	s.Record("connector", "STARTED", "after_start", time.Now())
//
//	if err := repo.Save(ctx, s); err != nil {
//	    return err
//	}
//
// # File Format
//
// Snapshots are stored as indented JSON with snake_case field names in
// status.json inside the repository directory.
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
//
// See version.go for version constants that can be used programmatically.
package state
