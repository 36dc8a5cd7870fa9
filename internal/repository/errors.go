package repository

import "errors"

// Sentinel errors returned by the repositories. Handlers and services map
// these onto the HTTP error taxonomy; anything else bubbling out of a repo is
// treated as an internal error.
var (
	// ErrAlreadyExists signals a violated fail-if-exists precondition on put.
	ErrAlreadyExists = errors.New("item already exists")

	// ErrNotFound signals a violated exists-precondition: the keyed item was
	// absent when a get or conditional update ran.
	ErrNotFound = errors.New("item not found")

	// ErrStaleStatus signals that a conditional status update matched the key
	// but the stored status was no longer one of the expected prior values.
	ErrStaleStatus = errors.New("stored status does not match expected")
)
