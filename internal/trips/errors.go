package trips

import "errors"

var (
	ErrTripNotFound    = errors.New("trip not found")
	ErrTripHasBookings = errors.New("trip has active bookings")
	ErrNoSeats         = errors.New("bus has no seats and the layout produced none")
)
