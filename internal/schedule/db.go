package schedule

import (
	"context"
	"database/sql"
	"errors"
	"ms-booking/internal/models"
	"time"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetBus(busID string) (*models.Bus, error) {
	var bus models.Bus
	err := d.Bun.NewSelect().
		Model(&bus).
		Where("bus_id = ?", busID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bus, nil
}

func (d *DB) GetRoute(routeID string) (*models.Route, error) {
	var route models.Route
	err := d.Bun.NewSelect().
		Model(&route).
		Where("route_id = ?", routeID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &route, nil
}

// HasOverlappingTrip runs the single existence check behind the conflict
// detector. Two half-open windows [d1,a1) and [d2,a2) overlap iff
// d1 < a2 AND d2 < a1; CANCELLED trips never occupy the bus.
func (d *DB) HasOverlappingTrip(busID string, departure, arrival time.Time, excludeTripID string) (bool, error) {
	q := d.Bun.NewSelect().
		Model((*models.Trip)(nil)).
		Where("bus_id = ?", busID).
		Where("status != ?", models.TripStatusCancelled).
		Where("departure_time < ?", arrival).
		Where("arrival_time > ?", departure)
	if excludeTripID != "" {
		q = q.Where("trip_id != ?", excludeTripID)
	}
	return q.Exists(context.Background())
}
