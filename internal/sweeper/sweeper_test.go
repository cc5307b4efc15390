package sweeper_test

import (
	"context"
	"database/sql"
	"errors"
	bookingdb "ms-booking/internal/booking/db"
	"ms-booking/internal/inventory"
	inventorydb "ms-booking/internal/inventory/db"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/sweeper"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Mock implementations
type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) GetExpiredPending(now time.Time) ([]models.Booking, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingStore) UpdateBookingStatus(id, fromStatus, toStatus string) (bool, error) {
	args := m.Called(id, fromStatus, toStatus)
	return args.Bool(0), args.Error(1)
}

type MockSeatReleaser struct {
	mock.Mock
}

func (m *MockSeatReleaser) ReleaseBooking(bookingID string) ([]string, error) {
	args := m.Called(bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishBookingExpired(booking models.Booking) error {
	args := m.Called(booking)
	return args.Error(0)
}

func pendingBooking(id string, expiresAt time.Time) models.Booking {
	return models.Booking{
		BookingID: id,
		TripID:    "trip-1",
		Status:    models.BookingStatusPending,
		BookedAt:  expiresAt.Add(-15 * time.Minute),
		ExpiresAt: &expiresAt,
	}
}

func TestProcessExpiredBookings_ClaimsAndReleases(t *testing.T) {
	bookings := new(MockBookingStore)
	releaser := new(MockSeatReleaser)
	events := new(MockEventPublisher)
	s := sweeper.NewSweeper(bookings, releaser, events, time.Minute, logger.NewLogger())

	expired := pendingBooking("booking-1", time.Now().UTC().Add(-time.Second))
	bookings.On("GetExpiredPending", mock.Anything).Return([]models.Booking{expired}, nil)
	bookings.On("UpdateBookingStatus", "booking-1", models.BookingStatusPending, models.BookingStatusExpired).Return(true, nil)
	releaser.On("ReleaseBooking", "booking-1").Return([]string{"seat-1", "seat-2"}, nil)
	events.On("PublishBookingExpired", mock.Anything).Return(nil)

	result, err := s.ProcessExpiredBookings()
	assert.NoError(t, err)
	assert.Equal(t, 1, result.ExpiredCount)
	assert.Equal(t, []string{"booking-1"}, result.BookingIDs)
	bookings.AssertExpectations(t)
	releaser.AssertExpectations(t)
}

func TestProcessExpiredBookings_SkipsLostClaim(t *testing.T) {
	bookings := new(MockBookingStore)
	releaser := new(MockSeatReleaser)
	s := sweeper.NewSweeper(bookings, releaser, nil, time.Minute, logger.NewLogger())

	// Concurrently paid: the conditional claim loses
	expired := pendingBooking("booking-1", time.Now().UTC().Add(-time.Second))
	bookings.On("GetExpiredPending", mock.Anything).Return([]models.Booking{expired}, nil)
	bookings.On("UpdateBookingStatus", "booking-1", models.BookingStatusPending, models.BookingStatusExpired).Return(false, nil)

	result, err := s.ProcessExpiredBookings()
	assert.NoError(t, err)
	assert.Equal(t, 0, result.ExpiredCount)
	releaser.AssertNotCalled(t, "ReleaseBooking", mock.Anything)
}

func TestProcessExpiredBookings_OneFailureDoesNotAbortSweep(t *testing.T) {
	bookings := new(MockBookingStore)
	releaser := new(MockSeatReleaser)
	s := sweeper.NewSweeper(bookings, releaser, nil, time.Minute, logger.NewLogger())

	now := time.Now().UTC()
	list := []models.Booking{
		pendingBooking("booking-1", now.Add(-time.Minute)),
		pendingBooking("booking-2", now.Add(-time.Minute)),
	}
	bookings.On("GetExpiredPending", mock.Anything).Return(list, nil)
	bookings.On("UpdateBookingStatus", "booking-1", models.BookingStatusPending, models.BookingStatusExpired).
		Return(false, errors.New("connection reset"))
	bookings.On("UpdateBookingStatus", "booking-2", models.BookingStatusPending, models.BookingStatusExpired).Return(true, nil)
	releaser.On("ReleaseBooking", "booking-2").Return([]string{"seat-9"}, nil)

	result, err := s.ProcessExpiredBookings()
	assert.NoError(t, err)
	assert.Equal(t, 1, result.ExpiredCount)
	assert.Equal(t, []string{"booking-2"}, result.BookingIDs)
}

// ---------------- sqlite end-to-end ----------------

func setupSweepDB(t *testing.T) (*bookingdb.DB, *inventory.Service, *bun.DB) {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.Booking)(nil), (*models.SeatStatus)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		require.NoError(t, err)
	}

	invSvc := inventory.NewService(&inventorydb.DB{Bun: bunDB}, logger.NewLogger())
	return &bookingdb.DB{Bun: bunDB}, invSvc, bunDB
}

func TestSweep_EndToEnd_ExpiresOnlyOverdueHolds(t *testing.T) {
	bookings, invSvc, bunDB := setupSweepDB(t)
	defer bunDB.Close()

	require.NoError(t, invSvc.InitializeForTrip("trip-1", []models.SeatRef{
		{SeatID: "seat-A1", Code: "A1"},
		{SeatID: "seat-A2", Code: "A2"},
	}))

	now := time.Now().UTC()

	// booking-overdue expired one second ago, booking-fresh has an hour left
	require.NoError(t, invSvc.Lock("trip-1", "seat-A1", "booking-overdue", 15*time.Minute))
	require.NoError(t, invSvc.Lock("trip-1", "seat-A2", "booking-fresh", 15*time.Minute))

	overdueAt := now.Add(-time.Second)
	freshAt := now.Add(time.Hour)
	require.NoError(t, bookings.CreateBooking(models.Booking{
		BookingID: "booking-overdue", TripID: "trip-1",
		Status: models.BookingStatusPending, BookedAt: overdueAt.Add(-15 * time.Minute), ExpiresAt: &overdueAt,
	}))
	require.NoError(t, bookings.CreateBooking(models.Booking{
		BookingID: "booking-fresh", TripID: "trip-1",
		Status: models.BookingStatusPending, BookedAt: now, ExpiresAt: &freshAt,
	}))

	s := sweeper.NewSweeper(bookings, invSvc, nil, time.Minute, logger.NewLogger())

	result, err := s.ProcessExpiredBookings()
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExpiredCount)
	assert.Equal(t, []string{"booking-overdue"}, result.BookingIDs)

	// The overdue hold's seat is AVAILABLE again, the fresh hold untouched
	availability, err := invSvc.Availability("trip-1")
	require.NoError(t, err)
	assert.Equal(t, 1, availability.Available)

	expired, err := bookings.GetBookingByID("booking-overdue")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusExpired, expired.Status)

	fresh, err := bookings.GetBookingByID("booking-fresh")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, fresh.Status)

	// A second sweep reports nothing new for the same booking
	result, err = s.ProcessExpiredBookings()
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExpiredCount)
}

func TestSweep_DoesNotTouchConfirmedSeats(t *testing.T) {
	bookings, invSvc, bunDB := setupSweepDB(t)
	defer bunDB.Close()

	require.NoError(t, invSvc.InitializeForTrip("trip-1", []models.SeatRef{
		{SeatID: "seat-A1", Code: "A1"},
	}))
	require.NoError(t, invSvc.Lock("trip-1", "seat-A1", "booking-1", 15*time.Minute))
	require.NoError(t, invSvc.Confirm("trip-1", "seat-A1", "booking-1"))

	// Booking was paid before its deadline passed
	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, bookings.CreateBooking(models.Booking{
		BookingID: "booking-1", TripID: "trip-1",
		Status: models.BookingStatusPaid, BookedAt: past.Add(-15 * time.Minute), ExpiresAt: &past,
	}))

	s := sweeper.NewSweeper(bookings, invSvc, nil, time.Minute, logger.NewLogger())
	result, err := s.ProcessExpiredBookings()
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExpiredCount)

	record, err := (&inventorydb.DB{Bun: bunDB}).GetSeatStatus("trip-1", "seat-A1")
	require.NoError(t, err)
	assert.Equal(t, models.SeatStateBooked, record.State)
}
