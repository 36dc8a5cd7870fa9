package service

import (
	"errors"
	"strings"
)

// Sentinel errors forming the service error taxonomy. Handlers map these to
// HTTP statuses; 4xx carry a machine-readable reason, ErrInternal never leaks
// detail to the client.
var (
	// ErrForbidden: authenticated but not authorized for this resource.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound: resource absent, or deliberately hidden for privacy.
	ErrNotFound = errors.New("not found")

	// ErrConflict: state-machine violation or precondition race.
	ErrConflict = errors.New("operation not allowed for resource in current state")

	// ErrInternal: unexpected failure; full detail is logged server-side.
	ErrInternal = errors.New("internal error")
)

// ValidationError reports malformed input. Fields lists every violated
// field, not just the first, so a caller can fix a payload in one round trip.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}
