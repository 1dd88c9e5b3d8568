package catalog

import "errors"

var (
	// ErrShowNotFound is returned when an operation references a show ID with
	// no local row. This is a caller bug, not a transient condition, and is
	// never retried.
	ErrShowNotFound = errors.New("show does not exist locally")

	// ErrShowNotLinked is returned when an operation needs an external ID
	// (Trakt or TMDb) that the local show row does not carry.
	ErrShowNotLinked = errors.New("show has no external ID for this provider")
)
