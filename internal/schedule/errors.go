package schedule

import "errors"

var (
	// ErrInvalidTiming covers every timing sanity failure: inverted or
	// past windows, and durations outside the 15m..48h band.
	ErrInvalidTiming = errors.New("invalid trip timing")

	// ErrIncompatibleOperator means the bus and the route belong to
	// different operators.
	ErrIncompatibleOperator = errors.New("bus and route operators differ")

	// ErrBusScheduleConflict means the proposed window overlaps an
	// existing non-cancelled trip on the same bus.
	ErrBusScheduleConflict = errors.New("bus already scheduled in this window")

	ErrBusNotFound   = errors.New("bus not found")
	ErrRouteNotFound = errors.New("route not found")
)
