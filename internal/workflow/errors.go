package workflow

import "errors"

var (
	// ErrNotFound signals a missing entity of the engine's kind.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidTransition signals an approve/reject on an already resolved entity.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrMissingRejectionMessage blocks a reject without a reason.
	ErrMissingRejectionMessage = errors.New("rejection message is required")
	// ErrConflict signals that approving would break a resource invariant (double booking).
	ErrConflict = errors.New("conflicting approval")
	// ErrInvalidInput signals a malformed payload.
	ErrInvalidInput = errors.New("invalid input")
)
