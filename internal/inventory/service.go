package inventory

import (
	"fmt"
	"math"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"time"
)

// DBLayer is the storage contract the inventory relies on. Every state
// transition is a single conditional write: the bool result reports
// whether the row matched the expected prior state.
type DBLayer interface {
	CreateSeatStatuses(records []models.SeatStatus) error
	CountByTrip(tripID string) (int, error)
	CountByTripAndState(tripID, state string) (int, error)
	GetSeatStatus(tripID, seatID string) (*models.SeatStatus, error)
	GetSeatStatusesByTrip(tripID string) ([]models.SeatStatus, error)
	GetSeatStatusesByBooking(bookingID string) ([]models.SeatStatus, error)
	LockSeat(tripID, seatID, bookingID string, lockedUntil time.Time) (bool, error)
	ReserveSeat(tripID, seatID, bookingID string) (bool, error)
	ConfirmSeat(tripID, seatID, bookingID string) (bool, error)
	ReleaseSeat(tripID, seatID string) (bool, error)
	ReleaseAllForTrip(tripID string) error
	DeleteByTrip(tripID string) error
}

// Service is the authoritative seat state machine. It never retries a
// failed conditional write; the caller decides what to do next.
type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// InitializeForTrip creates one AVAILABLE record per seat. It fails with
// ErrAlreadyInitialized when any record already exists for the trip.
func (s *Service) InitializeForTrip(tripID string, seats []models.SeatRef) error {
	count, err := s.DB.CountByTrip(tripID)
	if err != nil {
		return fmt.Errorf("failed to check trip inventory: %w", err)
	}
	if count > 0 {
		return ErrAlreadyInitialized
	}

	now := time.Now().UTC()
	records := make([]models.SeatStatus, 0, len(seats))
	for _, seat := range seats {
		records = append(records, models.SeatStatus{
			SeatID:    seat.SeatID,
			TripID:    tripID,
			SeatCode:  seat.Code,
			State:     models.SeatStateAvailable,
			UpdatedAt: now,
		})
	}

	if err := s.DB.CreateSeatStatuses(records); err != nil {
		return fmt.Errorf("failed to initialize inventory for trip %s: %w", tripID, err)
	}

	s.Logger.LogDatabase("INIT", "seat_status", fmt.Sprintf("trip %s initialized with %d seats", tripID, len(records)))
	return nil
}

// Lock places a hold on a single seat. Exactly one of N concurrent
// callers wins; the rest get ErrSeatUnavailable.
func (s *Service) Lock(tripID, seatID, bookingID string, ttl time.Duration) error {
	lockedUntil := time.Now().UTC().Add(ttl)
	ok, err := s.DB.LockSeat(tripID, seatID, bookingID, lockedUntil)
	if err != nil {
		return fmt.Errorf("failed to lock seat %s: %w", seatID, err)
	}
	if !ok {
		return ErrSeatUnavailable
	}
	return nil
}

// LockSeats locks each seat of a booking independently. On the first
// failure every seat already locked in this call is released again, so
// no partial hold survives.
func (s *Service) LockSeats(tripID string, seatIDs []string, bookingID string, ttl time.Duration) error {
	locked := make([]string, 0, len(seatIDs))
	for _, seatID := range seatIDs {
		if err := s.Lock(tripID, seatID, bookingID, ttl); err != nil {
			for _, l := range locked {
				if relErr := s.Release(tripID, l); relErr != nil {
					s.Logger.Error("INVENTORY", fmt.Sprintf("rollback release failed for seat %s on trip %s: %v", l, tripID, relErr))
				}
			}
			return err
		}
		locked = append(locked, seatID)
	}
	return nil
}

// Reserve places an administrative hold without a deadline.
func (s *Service) Reserve(tripID, seatID, bookingID string) error {
	ok, err := s.DB.ReserveSeat(tripID, seatID, bookingID)
	if err != nil {
		return fmt.Errorf("failed to reserve seat %s: %w", seatID, err)
	}
	if !ok {
		return ErrSeatUnavailable
	}
	return nil
}

// Confirm finalizes a held seat for its booking. A mismatched booking id
// or a seat outside LOCKED/RESERVED fails with ErrBookingMismatch.
func (s *Service) Confirm(tripID, seatID, bookingID string) error {
	ok, err := s.DB.ConfirmSeat(tripID, seatID, bookingID)
	if err != nil {
		return fmt.Errorf("failed to confirm seat %s: %w", seatID, err)
	}
	if ok {
		return nil
	}

	record, err := s.DB.GetSeatStatus(tripID, seatID)
	if err != nil {
		return fmt.Errorf("failed to read seat %s after confirm: %w", seatID, err)
	}
	if record == nil {
		return ErrSeatNotFound
	}
	return ErrBookingMismatch
}

// Release returns a seat to AVAILABLE. Releasing a seat that is already
// AVAILABLE is a no-op success.
func (s *Service) Release(tripID, seatID string) error {
	ok, err := s.DB.ReleaseSeat(tripID, seatID)
	if err != nil {
		return fmt.Errorf("failed to release seat %s: %w", seatID, err)
	}
	if ok {
		return nil
	}

	record, err := s.DB.GetSeatStatus(tripID, seatID)
	if err != nil {
		return fmt.Errorf("failed to read seat %s after release: %w", seatID, err)
	}
	if record == nil {
		return ErrSeatNotFound
	}
	// Already AVAILABLE: idempotent.
	return nil
}

// ReleaseBooking releases every seat still referencing a booking.
func (s *Service) ReleaseBooking(bookingID string) ([]string, error) {
	records, err := s.DB.GetSeatStatusesByBooking(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats for booking %s: %w", bookingID, err)
	}

	released := make([]string, 0, len(records))
	for _, record := range records {
		if err := s.Release(record.TripID, record.SeatID); err != nil {
			return released, err
		}
		released = append(released, record.SeatID)
	}
	return released, nil
}

// ReleaseAllForTrip resets every seat of a trip, used before deletion.
func (s *Service) ReleaseAllForTrip(tripID string) error {
	return s.DB.ReleaseAllForTrip(tripID)
}

// RemoveForTrip deletes a trip's records once the trip itself is removed.
func (s *Service) RemoveForTrip(tripID string) error {
	return s.DB.DeleteByTrip(tripID)
}

// SeatsForBooking returns the seat records a booking currently holds.
func (s *Service) SeatsForBooking(bookingID string) ([]models.SeatStatus, error) {
	return s.DB.GetSeatStatusesByBooking(bookingID)
}

// SeatStatuses returns the full seat map of a trip.
func (s *Service) SeatStatuses(tripID string) ([]models.SeatStatus, error) {
	return s.DB.GetSeatStatusesByTrip(tripID)
}

// Availability aggregates the trip's seat counts. The occupancy rate is
// rounded to two decimals and nil when the trip has no seats.
func (s *Service) Availability(tripID string) (models.TripAvailability, error) {
	total, err := s.DB.CountByTrip(tripID)
	if err != nil {
		return models.TripAvailability{}, fmt.Errorf("failed to count seats for trip %s: %w", tripID, err)
	}
	available, err := s.DB.CountByTripAndState(tripID, models.SeatStateAvailable)
	if err != nil {
		return models.TripAvailability{}, fmt.Errorf("failed to count available seats for trip %s: %w", tripID, err)
	}

	result := models.TripAvailability{
		TripID:    tripID,
		Total:     total,
		Available: available,
	}
	if total > 0 {
		rate := math.Round(float64(total-available)/float64(total)*10000) / 100
		result.OccupancyRate = &rate
	}
	return result, nil
}
