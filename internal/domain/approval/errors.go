package approval

import "errors"

var (
	// ErrNotFound is returned when a referenced request or definition does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the actor's role does not match the
	// approver role of the request's current step.
	ErrForbidden = errors.New("actor not authorized for current step")

	// ErrConflict is returned when a request has already been resolved, or
	// when a concurrent decision won the current step first.
	ErrConflict = errors.New("request state changed concurrently or already resolved")
)
