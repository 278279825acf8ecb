package circulation

import "errors"

// The error taxonomy exposed to callers. Handlers map these to status codes;
// internal steps wrap them with %w and never collapse one into another.
var (
	// ErrNotFound covers unknown users, books, copies and borrow records.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a state precondition failed, e.g. the copy is
	// already borrowed.
	ErrConflict = errors.New("conflict")
	// ErrLimitExceeded means the user already holds the maximum number of
	// open borrow records.
	ErrLimitExceeded = errors.New("borrow limit reached")
	// ErrInvalidState means an illegal lifecycle transition, e.g. returning
	// a record that is already returned.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation means malformed input.
	ErrValidation = errors.New("invalid input")
	// ErrForbidden means the acting user's role does not permit the
	// operation.
	ErrForbidden = errors.New("forbidden")
)
