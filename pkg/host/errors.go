package host

import "errors"

var (
	// ErrNilChild is returned when a nil component is added.
	ErrNilChild = errors.New("host: nil child")

	// ErrDuplicateChild is returned when a child with the same name exists.
	ErrDuplicateChild = errors.New("host: duplicate child name")

	// ErrChildNotFound is returned when no child has the requested name.
	ErrChildNotFound = errors.New("host: child not found")
)
