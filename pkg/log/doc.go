// Package log provides the logging abstraction used by hostd components.
//
// The lifecycle engine, the host and the bundled plugins all log through
// the Logger interface so an embedding application can route output into
// its own logging infrastructure. A zerolog adapter and a no-op logger are
// provided.
//
// # Usage
//
// Use the provided zerolog adapter:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//
// Or discard everything:
//
//	logger := log.NewNoopLogger()
//
// # Level checks
//
// Loggers may also implement [LevelChecker]. The lifecycle engine uses it
// to decide whether an idempotent no-op (for example calling Start on a
// started component) is worth a debug entry with a stack trace or only an
// info line.
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log
