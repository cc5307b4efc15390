package db

import (
	"context"
	"database/sql"
	"errors"
	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- TRIPS ----------------

// CreateTrip inserts a new trip row.
func (d *DB) CreateTrip(trip models.Trip) error {
	_, err := d.Bun.NewInsert().Model(&trip).Exec(context.Background())
	return err
}

// GetTripByID fetches one trip by its ID.
func (d *DB) GetTripByID(id string) (*models.Trip, error) {
	var trip models.Trip
	err := d.Bun.NewSelect().
		Model(&trip).
		Where("trip_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// UpdateTrip updates the mutable trip fields.
func (d *DB) UpdateTrip(trip models.Trip) error {
	_, err := d.Bun.NewUpdate().
		Model(&trip).
		Column("route_id", "bus_id", "departure_time", "arrival_time", "status", "base_price_cents").
		Where("trip_id = ?", trip.TripID).
		Exec(context.Background())
	return err
}

// DeleteTrip removes a trip row.
func (d *DB) DeleteTrip(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Trip)(nil)).
		Where("trip_id = ?", id).
		Exec(context.Background())
	return err
}

// ---------------- SEATS ----------------

// CreateSeats inserts a bus's generated seat list.
func (d *DB) CreateSeats(seats []models.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().Model(&seats).Exec(context.Background())
	return err
}

// GetSeatsByBus fetches the active seats of a bus ordered by row and
// position.
func (d *DB) GetSeatsByBus(busID string) ([]models.Seat, error) {
	var seats []models.Seat
	err := d.Bun.NewSelect().
		Model(&seats).
		Where("bus_id = ?", busID).
		Where("active = ?", true).
		Order("row", "position").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return seats, nil
}

// GetSeatPrices maps seat ids to their price in cents.
func (d *DB) GetSeatPrices(seatIDs []string) (map[string]int64, error) {
	if len(seatIDs) == 0 {
		return map[string]int64{}, nil
	}
	var seats []models.Seat
	err := d.Bun.NewSelect().
		Model(&seats).
		Column("seat_id", "price_cents").
		Where("seat_id IN (?)", bun.In(seatIDs)).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	prices := make(map[string]int64, len(seats))
	for _, seat := range seats {
		prices[seat.SeatID] = seat.PriceCents
	}
	return prices, nil
}
