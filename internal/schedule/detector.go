package schedule

import (
	"fmt"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"time"
)

const (
	maxTripDuration = 48 * time.Hour
	minTripDuration = 15 * time.Minute
)

type DBLayer interface {
	GetBus(busID string) (*models.Bus, error)
	GetRoute(routeID string) (*models.Route, error)
	HasOverlappingTrip(busID string, departure, arrival time.Time, excludeTripID string) (bool, error)
}

// Detector guards trip creation and updates: timing sanity, operator
// compatibility, and the bus schedule overlap check, in that order.
type Detector struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewDetector(db DBLayer, log *logger.Logger) *Detector {
	return &Detector{DB: db, Logger: log}
}

// ValidateTiming rejects inverted windows, departures in the past, and
// durations outside the 15 minute to 48 hour band.
func (d *Detector) ValidateTiming(departure, arrival time.Time) error {
	if !departure.Before(arrival) {
		return fmt.Errorf("departure must be before arrival: %w", ErrInvalidTiming)
	}
	if departure.Before(time.Now()) {
		return fmt.Errorf("departure is in the past: %w", ErrInvalidTiming)
	}
	duration := arrival.Sub(departure)
	if duration > maxTripDuration {
		return fmt.Errorf("trip duration exceeds 48 hours: %w", ErrInvalidTiming)
	}
	if duration < minTripDuration {
		return fmt.Errorf("trip duration under 15 minutes: %w", ErrInvalidTiming)
	}
	return nil
}

// ValidateCompatibility ensures the bus is assigned only to routes of its
// own operator.
func (d *Detector) ValidateCompatibility(routeID, busID string) error {
	route, err := d.DB.GetRoute(routeID)
	if err != nil {
		return fmt.Errorf("failed to load route %s: %w", routeID, err)
	}
	if route == nil {
		return ErrRouteNotFound
	}

	bus, err := d.DB.GetBus(busID)
	if err != nil {
		return fmt.Errorf("failed to load bus %s: %w", busID, err)
	}
	if bus == nil {
		return ErrBusNotFound
	}

	if route.OperatorID != bus.OperatorID {
		return fmt.Errorf("bus %s belongs to operator %s, route %s to %s: %w",
			busID, bus.OperatorID, routeID, route.OperatorID, ErrIncompatibleOperator)
	}
	return nil
}

// IsAvailable reports whether the bus is free for the proposed window.
// Pass excludeTripID when re-validating an existing trip so it does not
// conflict with itself.
func (d *Detector) IsAvailable(busID string, departure, arrival time.Time, excludeTripID string) (bool, error) {
	overlaps, err := d.DB.HasOverlappingTrip(busID, departure, arrival, excludeTripID)
	if err != nil {
		return false, fmt.Errorf("failed to check bus schedule: %w", err)
	}
	return !overlaps, nil
}

// ValidateSchedule runs the three checks in order. Any failure aborts
// before a trip is persisted; no partial state is created.
func (d *Detector) ValidateSchedule(routeID, busID string, departure, arrival time.Time, excludeTripID string) error {
	if err := d.ValidateTiming(departure, arrival); err != nil {
		return err
	}
	if err := d.ValidateCompatibility(routeID, busID); err != nil {
		return err
	}
	available, err := d.IsAvailable(busID, departure, arrival, excludeTripID)
	if err != nil {
		return err
	}
	if !available {
		return fmt.Errorf("bus %s is occupied between %s and %s: %w",
			busID, departure.Format(time.RFC3339), arrival.Format(time.RFC3339), ErrBusScheduleConflict)
	}
	return nil
}
