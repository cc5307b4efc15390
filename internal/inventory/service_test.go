package inventory_test

import (
	"errors"
	"ms-booking/internal/inventory"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateSeatStatuses(records []models.SeatStatus) error {
	args := m.Called(records)
	return args.Error(0)
}

func (m *MockDBLayer) CountByTrip(tripID string) (int, error) {
	args := m.Called(tripID)
	return args.Int(0), args.Error(1)
}

func (m *MockDBLayer) CountByTripAndState(tripID, state string) (int, error) {
	args := m.Called(tripID, state)
	return args.Int(0), args.Error(1)
}

func (m *MockDBLayer) GetSeatStatus(tripID, seatID string) (*models.SeatStatus, error) {
	args := m.Called(tripID, seatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SeatStatus), args.Error(1)
}

func (m *MockDBLayer) GetSeatStatusesByTrip(tripID string) ([]models.SeatStatus, error) {
	args := m.Called(tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SeatStatus), args.Error(1)
}

func (m *MockDBLayer) GetSeatStatusesByBooking(bookingID string) ([]models.SeatStatus, error) {
	args := m.Called(bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SeatStatus), args.Error(1)
}

func (m *MockDBLayer) LockSeat(tripID, seatID, bookingID string, lockedUntil time.Time) (bool, error) {
	args := m.Called(tripID, seatID, bookingID, lockedUntil)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) ReserveSeat(tripID, seatID, bookingID string) (bool, error) {
	args := m.Called(tripID, seatID, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) ConfirmSeat(tripID, seatID, bookingID string) (bool, error) {
	args := m.Called(tripID, seatID, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) ReleaseSeat(tripID, seatID string) (bool, error) {
	args := m.Called(tripID, seatID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) ReleaseAllForTrip(tripID string) error {
	args := m.Called(tripID)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteByTrip(tripID string) error {
	args := m.Called(tripID)
	return args.Error(0)
}

func newTestService(db *MockDBLayer) *inventory.Service {
	return inventory.NewService(db, logger.NewLogger())
}

func TestInitializeForTrip(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	seats := []models.SeatRef{
		{SeatID: "seat-1", Code: "1A"},
		{SeatID: "seat-2", Code: "1B"},
	}

	mockDB.On("CountByTrip", "trip-1").Return(0, nil)
	mockDB.On("CreateSeatStatuses", mock.MatchedBy(func(records []models.SeatStatus) bool {
		if len(records) != 2 {
			return false
		}
		return records[0].State == models.SeatStateAvailable && records[1].State == models.SeatStateAvailable
	})).Return(nil)

	err := svc.InitializeForTrip("trip-1", seats)
	assert.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestInitializeForTrip_AlreadyInitialized(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	mockDB.On("CountByTrip", "trip-1").Return(40, nil)

	err := svc.InitializeForTrip("trip-1", []models.SeatRef{{SeatID: "seat-1", Code: "1A"}})
	assert.ErrorIs(t, err, inventory.ErrAlreadyInitialized)
	mockDB.AssertNotCalled(t, "CreateSeatStatuses", mock.Anything)
}

func TestLock_SeatUnavailable(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	mockDB.On("LockSeat", "trip-1", "seat-1", "booking-1", mock.Anything).Return(false, nil)

	err := svc.Lock("trip-1", "seat-1", "booking-1", 15*time.Minute)
	assert.ErrorIs(t, err, inventory.ErrSeatUnavailable)
}

func TestLockSeats_RollbackOnPartialFailure(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	// First two seats lock, third is taken
	mockDB.On("LockSeat", "trip-1", "seat-1", "booking-1", mock.Anything).Return(true, nil)
	mockDB.On("LockSeat", "trip-1", "seat-2", "booking-1", mock.Anything).Return(true, nil)
	mockDB.On("LockSeat", "trip-1", "seat-3", "booking-1", mock.Anything).Return(false, nil)

	// Both already-locked seats must be released again
	mockDB.On("ReleaseSeat", "trip-1", "seat-1").Return(true, nil)
	mockDB.On("ReleaseSeat", "trip-1", "seat-2").Return(true, nil)

	err := svc.LockSeats("trip-1", []string{"seat-1", "seat-2", "seat-3"}, "booking-1", 15*time.Minute)
	assert.ErrorIs(t, err, inventory.ErrSeatUnavailable)
	mockDB.AssertExpectations(t)
}

func TestConfirm_BookingMismatch(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	mockDB.On("ConfirmSeat", "trip-1", "seat-1", "booking-2").Return(false, nil)
	mockDB.On("GetSeatStatus", "trip-1", "seat-1").Return(&models.SeatStatus{
		SeatID:    "seat-1",
		TripID:    "trip-1",
		State:     models.SeatStateLocked,
		BookingID: "booking-1",
	}, nil)

	err := svc.Confirm("trip-1", "seat-1", "booking-2")
	assert.ErrorIs(t, err, inventory.ErrBookingMismatch)
}

func TestConfirm_SeatNotFound(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	mockDB.On("ConfirmSeat", "trip-1", "seat-x", "booking-1").Return(false, nil)
	mockDB.On("GetSeatStatus", "trip-1", "seat-x").Return(nil, nil)

	err := svc.Confirm("trip-1", "seat-x", "booking-1")
	assert.ErrorIs(t, err, inventory.ErrSeatNotFound)
}

func TestRelease_IdempotentOnAvailableSeat(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	mockDB.On("ReleaseSeat", "trip-1", "seat-1").Return(false, nil)
	mockDB.On("GetSeatStatus", "trip-1", "seat-1").Return(&models.SeatStatus{
		SeatID: "seat-1",
		TripID: "trip-1",
		State:  models.SeatStateAvailable,
	}, nil)

	err := svc.Release("trip-1", "seat-1")
	assert.NoError(t, err)
}

func TestReleaseBooking_ReleasesEverySeat(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	mockDB.On("GetSeatStatusesByBooking", "booking-1").Return([]models.SeatStatus{
		{SeatID: "seat-1", TripID: "trip-1", State: models.SeatStateLocked, BookingID: "booking-1"},
		{SeatID: "seat-2", TripID: "trip-1", State: models.SeatStateLocked, BookingID: "booking-1"},
	}, nil)
	mockDB.On("ReleaseSeat", "trip-1", "seat-1").Return(true, nil)
	mockDB.On("ReleaseSeat", "trip-1", "seat-2").Return(true, nil)

	released, err := svc.ReleaseBooking("booking-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"seat-1", "seat-2"}, released)
}

func TestAvailability(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	mockDB.On("CountByTrip", "trip-1").Return(40, nil)
	mockDB.On("CountByTripAndState", "trip-1", models.SeatStateAvailable).Return(28, nil)

	availability, err := svc.Availability("trip-1")
	assert.NoError(t, err)
	assert.Equal(t, 40, availability.Total)
	assert.Equal(t, 28, availability.Available)
	assert.NotNil(t, availability.OccupancyRate)
	assert.Equal(t, 30.0, *availability.OccupancyRate)
}

func TestAvailability_EmptyTrip(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	mockDB.On("CountByTrip", "trip-empty").Return(0, nil)
	mockDB.On("CountByTripAndState", "trip-empty", models.SeatStateAvailable).Return(0, nil)

	availability, err := svc.Availability("trip-empty")
	assert.NoError(t, err)
	assert.Nil(t, availability.OccupancyRate)
}

func TestAvailability_DBError(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	mockDB.On("CountByTrip", "trip-1").Return(0, errors.New("connection lost"))

	_, err := svc.Availability("trip-1")
	assert.Error(t, err)
}
