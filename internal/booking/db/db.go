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

// ---------------- BOOKINGS ----------------

// CreateBooking inserts a new booking row.
func (d *DB) CreateBooking(booking models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&booking).Exec(context.Background())
	return err
}

// GetBookingByID fetches one booking by its ID.
func (d *DB) GetBookingByID(id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("booking_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateBookingStatus is the conditional status claim: the row moves from
// fromStatus to toStatus only if it still is in fromStatus, so concurrent
// claimants (a second sweeper instance, a racing payment confirmation)
// cannot both win.
func (d *DB) UpdateBookingStatus(id, fromStatus, toStatus string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("status = ?", toStatus).
		Where("booking_id = ?", id).
		Where("status = ?", fromStatus).
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// GetExpiredPending returns every PENDING booking whose hold deadline has
// passed. The sweeper claims each one individually afterwards.
func (d *DB) GetExpiredPending(now time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("status = ?", models.BookingStatusPending).
		Where("expires_at <= ?", now).
		Order("expires_at").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetBookingsByUser fetches a user's bookings, newest first.
func (d *DB) GetBookingsByUser(userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("user_id = ?", userID).
		Order("booked_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountActiveByTrip counts bookings that still reference a trip in a
// non-terminal way. A trip with any such booking cannot be deleted.
func (d *DB) CountActiveByTrip(tripID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("trip_id = ?", tripID).
		Where("status IN (?, ?, ?)", models.BookingStatusPending, models.BookingStatusPaid, models.BookingStatusCompleted).
		Count(context.Background())
}

// ---------------- BOARDING PASSES ----------------

// CreateBoardingPasses inserts the passes issued for a paid booking.
func (d *DB) CreateBoardingPasses(passes []models.BoardingPass) error {
	if len(passes) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().Model(&passes).Exec(context.Background())
	return err
}

// GetBoardingPassesByBooking fetches all passes of a booking.
func (d *DB) GetBoardingPassesByBooking(bookingID string) ([]models.BoardingPass, error) {
	var passes []models.BoardingPass
	err := d.Bun.NewSelect().
		Model(&passes).
		Where("booking_id = ?", bookingID).
		Order("seat_code").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return passes, nil
}
