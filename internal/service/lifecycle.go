package service

import "github.com/iliyamo/restaurant-seating/internal/model"

// Op is a requested seating transition.
type Op string

const (
	OpAccept Op = "ACCEPT"
	OpCancel Op = "CANCEL"
)

// transition declares which current statuses permit an operation and what it
// results in. Requesting an operation whose target is already the current
// status is an idempotent no-op: accept/cancel are retried by double-clicks
// and network retries, and a retry that already took effect must not fail.
// Any other mismatch is a genuine conflict the caller has to see, since the
// resource moved on and their assumption is stale.
type transition struct {
	allowed []model.SeatingStatus
	target  model.SeatingStatus
}

var transitions = map[Op]transition{
	OpAccept: {
		allowed: []model.SeatingStatus{model.SeatingPending},
		target:  model.SeatingAccepted,
	},
	OpCancel: {
		allowed: []model.SeatingStatus{model.SeatingPending, model.SeatingAccepted},
		target:  model.SeatingCancelled,
	},
}

// ApplyTransition evaluates op against the current status. It returns the
// resulting status, whether the request is an idempotent no-op (already at
// the target), or ErrConflict when the current status does not permit the
// operation. Pure function; no I/O.
func ApplyTransition(current model.SeatingStatus, op Op) (next model.SeatingStatus, noop bool, err error) {
	t, ok := transitions[op]
	if !ok {
		return "", false, ErrConflict
	}
	if current == t.target {
		return t.target, true, nil
	}
	for _, s := range t.allowed {
		if current == s {
			return t.target, false, nil
		}
	}
	return "", false, ErrConflict
}
