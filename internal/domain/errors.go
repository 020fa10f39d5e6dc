package domain

import "errors"

var (
	// ErrDraining is returned to acquisitions attempted after drain began.
	ErrDraining = errors.New("pool is draining: acquisitions rejected")

	// ErrAcquireTimeout is returned when a blocking acquire gives up before
	// a resource is delivered.
	ErrAcquireTimeout = errors.New("acquire timed out waiting for a resource")

	// ErrLeaseNotFound is returned when the referenced lease doesn't exist.
	ErrLeaseNotFound = errors.New("lease not found")

	// ErrUnknownBackend is returned when the configured backend mode has no
	// registered factory.
	ErrUnknownBackend = errors.New("unknown backend mode")
)
