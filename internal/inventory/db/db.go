package db

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

// ---------------- SEAT STATUS ----------------

// CreateSeatStatuses bulk-inserts seat records for a trip. The unique
// (seat_id, trip_id) key makes a racing double-initialization fail on
// insert rather than duplicate rows.
func (d *DB) CreateSeatStatuses(records []models.SeatStatus) error {
	if len(records) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().Model(&records).Exec(context.Background())
	return err
}

// CountByTrip returns the number of seat records for a trip.
func (d *DB) CountByTrip(tripID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.SeatStatus)(nil)).
		Where("trip_id = ?", tripID).
		Count(context.Background())
}

// CountByTripAndState returns the number of seat records for a trip in
// the given state.
func (d *DB) CountByTripAndState(tripID, state string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.SeatStatus)(nil)).
		Where("trip_id = ?", tripID).
		Where("state = ?", state).
		Count(context.Background())
}

// GetSeatStatus fetches one seat record by its (seat, trip) key.
func (d *DB) GetSeatStatus(tripID, seatID string) (*models.SeatStatus, error) {
	var record models.SeatStatus
	err := d.Bun.NewSelect().
		Model(&record).
		Where("seat_id = ?", seatID).
		Where("trip_id = ?", tripID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetSeatStatusesByTrip returns every seat record for a trip ordered by
// seat code.
func (d *DB) GetSeatStatusesByTrip(tripID string) ([]models.SeatStatus, error) {
	var records []models.SeatStatus
	err := d.Bun.NewSelect().
		Model(&records).
		Where("trip_id = ?", tripID).
		Order("seat_code").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetSeatStatusesByBooking returns the seat records referencing a booking.
func (d *DB) GetSeatStatusesByBooking(bookingID string) ([]models.SeatStatus, error) {
	var records []models.SeatStatus
	err := d.Bun.NewSelect().
		Model(&records).
		Where("booking_id = ?", bookingID).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ---------------- CONDITIONAL TRANSITIONS ----------------
//
// Each transition is a single conditional UPDATE. The WHERE clause names
// the expected prior state, so under concurrent callers the storage layer
// serializes the writes and at most one of them reports an affected row.

// LockSeat transitions AVAILABLE -> LOCKED, stamping the booking id and
// the hold deadline. Returns false when the seat was not AVAILABLE.
func (d *DB) LockSeat(tripID, seatID, bookingID string, lockedUntil time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.SeatStatus)(nil)).
		Set("state = ?", models.SeatStateLocked).
		Set("booking_id = ?", bookingID).
		Set("locked_until = ?", lockedUntil).
		Set("updated_at = ?", time.Now().UTC()).
		Where("seat_id = ?", seatID).
		Where("trip_id = ?", tripID).
		Where("state = ?", models.SeatStateAvailable).
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	return oneRowAffected(res)
}

// ReserveSeat transitions AVAILABLE -> RESERVED without a hold deadline.
func (d *DB) ReserveSeat(tripID, seatID, bookingID string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.SeatStatus)(nil)).
		Set("state = ?", models.SeatStateReserved).
		Set("booking_id = ?", bookingID).
		Set("locked_until = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("seat_id = ?", seatID).
		Where("trip_id = ?", tripID).
		Where("state = ?", models.SeatStateAvailable).
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	return oneRowAffected(res)
}

// ConfirmSeat transitions LOCKED or RESERVED -> BOOKED, but only for the
// booking that holds the seat.
func (d *DB) ConfirmSeat(tripID, seatID, bookingID string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.SeatStatus)(nil)).
		Set("state = ?", models.SeatStateBooked).
		Set("locked_until = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("seat_id = ?", seatID).
		Where("trip_id = ?", tripID).
		Where("booking_id = ?", bookingID).
		Where("state IN (?, ?)", models.SeatStateLocked, models.SeatStateReserved).
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	return oneRowAffected(res)
}

// ReleaseSeat transitions any non-AVAILABLE state back to AVAILABLE,
// clearing the booking reference and hold deadline. Returns false when
// the seat was already AVAILABLE.
func (d *DB) ReleaseSeat(tripID, seatID string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.SeatStatus)(nil)).
		Set("state = ?", models.SeatStateAvailable).
		Set("booking_id = NULL").
		Set("locked_until = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("seat_id = ?", seatID).
		Where("trip_id = ?", tripID).
		Where("state != ?", models.SeatStateAvailable).
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	return oneRowAffected(res)
}

// ReleaseAllForTrip resets every non-AVAILABLE record of a trip. Used
// before a trip is removed.
func (d *DB) ReleaseAllForTrip(tripID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.SeatStatus)(nil)).
		Set("state = ?", models.SeatStateAvailable).
		Set("booking_id = NULL").
		Set("locked_until = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("trip_id = ?", tripID).
		Where("state != ?", models.SeatStateAvailable).
		Exec(context.Background())
	return err
}

// DeleteByTrip removes every seat record of a trip.
func (d *DB) DeleteByTrip(tripID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.SeatStatus)(nil)).
		Where("trip_id = ?", tripID).
		Exec(context.Background())
	return err
}

func oneRowAffected(res sql.Result) (bool, error) {
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
