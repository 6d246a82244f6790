package status

import "errors"

var (
	// ErrIllegalTransition is returned when a status move is absent from
	// the transition table.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrUnknownStatus is returned when a status is not part of the
	// vocabulary for its entity kind.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrUnknownKind is returned when an entity kind has no transition table.
	ErrUnknownKind = errors.New("unknown entity kind")
)
