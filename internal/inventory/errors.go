package inventory

import "errors"

// Failure kinds surfaced to callers. Handlers map these to HTTP status
// codes; none of them are retried internally.
var (
	// ErrSeatUnavailable means a lock was attempted on a seat that is
	// not AVAILABLE. The caller can pick another seat or re-poll.
	ErrSeatUnavailable = errors.New("seat is not available")

	// ErrBookingMismatch means a confirm referenced a seat whose record
	// carries a different booking id or is not in a confirmable state.
	ErrBookingMismatch = errors.New("booking id does not match seat record")

	// ErrAlreadyInitialized means seat records already exist for the trip.
	ErrAlreadyInitialized = errors.New("trip inventory already initialized")

	// ErrSeatNotFound means no record exists for the (seat, trip) pair.
	ErrSeatNotFound = errors.New("seat record not found")
)
