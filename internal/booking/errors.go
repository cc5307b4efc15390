package booking

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrTripNotFound      = errors.New("trip not found")
	ErrNoSeatsRequested  = errors.New("booking requires at least one seat")
	ErrSeatsUnavailable  = errors.New("one or more seats are not available")
	ErrBookingNotPending = errors.New("booking is not pending")
	ErrTripNotBookable   = errors.New("trip is not open for booking")
	ErrNotBookingOwner   = errors.New("booking belongs to another user")
)
