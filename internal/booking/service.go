package booking

import (
	"fmt"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"time"

	"github.com/google/uuid"
)

type DBLayer interface {
	CreateBooking(booking models.Booking) error
	GetBookingByID(id string) (*models.Booking, error)
	UpdateBookingStatus(id, fromStatus, toStatus string) (bool, error)
	GetBookingsByUser(userID string) ([]models.Booking, error)
	GetBoardingPassesByBooking(bookingID string) ([]models.BoardingPass, error)
}

// TripReader gives the booking flow read access to trips and seat
// prices without owning either.
type TripReader interface {
	GetTripByID(id string) (*models.Trip, error)
	GetSeatPrices(seatIDs []string) (map[string]int64, error)
}

// SeatGuard is the redis fast path. All-or-nothing per booking.
type SeatGuard interface {
	HoldSeats(tripID string, seatIDs []string, bookingID string) (bool, error)
	DropSeats(tripID string, seatIDs []string, bookingID string) error
}

// SeatInventory is the authoritative seat state machine.
type SeatInventory interface {
	LockSeats(tripID string, seatIDs []string, bookingID string, ttl time.Duration) error
	Confirm(tripID, seatID, bookingID string) error
	ReleaseBooking(bookingID string) ([]string, error)
	SeatsForBooking(bookingID string) ([]models.SeatStatus, error)
}

type PassIssuer interface {
	IssueForBooking(booking models.Booking, seats []models.SeatStatus, priceBySeat map[string]int64) ([]models.BoardingPass, error)
}

type KafkaPublisher interface {
	PublishBookingCreated(booking models.Booking) error
	PublishBookingConfirmed(booking models.Booking) error
	PublishBookingCancelled(booking models.Booking) error
}

// Service drives the booking lifecycle. The redis guard sheds contention
// up front, the inventory's conditional writes decide every race, and a
// PENDING booking holds its seats only until ExpiresAt.
type Service struct {
	DB        DBLayer
	Trips     TripReader
	Guard     SeatGuard
	Inventory SeatInventory
	Passes    PassIssuer
	Kafka     KafkaPublisher
	HoldTTL   time.Duration
	Logger    *logger.Logger
}

func NewService(db DBLayer, trips TripReader, guard SeatGuard, inventory SeatInventory, passes PassIssuer, kafka KafkaPublisher, holdTTL time.Duration, log *logger.Logger) *Service {
	return &Service{
		DB:        db,
		Trips:     trips,
		Guard:     guard,
		Inventory: inventory,
		Passes:    passes,
		Kafka:     kafka,
		HoldTTL:   holdTTL,
		Logger:    log,
	}
}

// Create places a PENDING booking holding every requested seat, or
// nothing at all. userID may be empty for guest bookings.
func (s *Service) Create(req models.BookingRequest, userID string) (*models.BookingResponse, error) {
	if len(req.SeatIDs) == 0 {
		return nil, ErrNoSeatsRequested
	}

	trip, err := s.Trips.GetTripByID(req.TripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trip %s: %w", req.TripID, err)
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	if trip.Status != models.TripStatusScheduled && trip.Status != models.TripStatusDelayed {
		return nil, fmt.Errorf("trip %s is %s: %w", trip.TripID, trip.Status, ErrTripNotBookable)
	}

	bookingID := uuid.NewString()

	held, err := s.Guard.HoldSeats(req.TripID, req.SeatIDs, bookingID)
	if err != nil {
		return nil, fmt.Errorf("seat guard failed for booking %s: %w", bookingID, err)
	}
	if !held {
		return nil, ErrSeatsUnavailable
	}

	if err := s.Inventory.LockSeats(req.TripID, req.SeatIDs, bookingID, s.HoldTTL); err != nil {
		if dropErr := s.Guard.DropSeats(req.TripID, req.SeatIDs, bookingID); dropErr != nil {
			s.Logger.Error("BOOKING", fmt.Sprintf("guard rollback failed for booking %s: %v", bookingID, dropErr))
		}
		return nil, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.HoldTTL)
	booking := models.Booking{
		BookingID: bookingID,
		TripID:    req.TripID,
		UserID:    userID,
		Status:    models.BookingStatusPending,
		BookedAt:  now,
		ExpiresAt: &expiresAt,
	}
	if err := s.DB.CreateBooking(booking); err != nil {
		if _, relErr := s.Inventory.ReleaseBooking(bookingID); relErr != nil {
			s.Logger.Error("BOOKING", fmt.Sprintf("seat rollback failed for booking %s: %v", bookingID, relErr))
		}
		if dropErr := s.Guard.DropSeats(req.TripID, req.SeatIDs, bookingID); dropErr != nil {
			s.Logger.Error("BOOKING", fmt.Sprintf("guard rollback failed for booking %s: %v", bookingID, dropErr))
		}
		return nil, fmt.Errorf("failed to persist booking %s: %w", bookingID, err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingCreated(booking); err != nil {
			s.Logger.LogKafka("PUBLISH", "booking-created", fmt.Sprintf("publish failed for booking %s: %v", bookingID, err))
		}
	}

	s.Logger.LogBooking("CREATE", bookingID, fmt.Sprintf("trip %s, %d seat(s), expires %s",
		req.TripID, len(req.SeatIDs), expiresAt.Format(time.RFC3339)))
	return &models.BookingResponse{
		BookingID: bookingID,
		TripID:    req.TripID,
		SeatIDs:   req.SeatIDs,
		UserID:    userID,
		Status:    models.BookingStatusPending,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmPayment moves a booking PENDING -> PAID, finalizes its seats
// and issues boarding passes. The status claim is conditional, so a
// payment racing the sweeper resolves to exactly one winner.
func (s *Service) ConfirmPayment(bookingID string) (*models.Booking, []models.BoardingPass, error) {
	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, nil, ErrBookingNotFound
	}

	claimed, err := s.DB.UpdateBookingStatus(bookingID, models.BookingStatusPending, models.BookingStatusPaid)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to claim booking %s: %w", bookingID, err)
	}
	if !claimed {
		return nil, nil, fmt.Errorf("booking %s is %s: %w", bookingID, booking.Status, ErrBookingNotPending)
	}
	booking.Status = models.BookingStatusPaid

	seats, err := s.Inventory.SeatsForBooking(bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load seats for booking %s: %w", bookingID, err)
	}

	seatIDs := make([]string, 0, len(seats))
	for _, seat := range seats {
		if err := s.Inventory.Confirm(seat.TripID, seat.SeatID, bookingID); err != nil {
			return nil, nil, fmt.Errorf("failed to confirm seat %s: %w", seat.SeatID, err)
		}
		seatIDs = append(seatIDs, seat.SeatID)
	}

	// Guard keys would expire on their own; dropping them early frees
	// the seats for availability checks.
	if err := s.Guard.DropSeats(booking.TripID, seatIDs, bookingID); err != nil {
		s.Logger.Error("BOOKING", fmt.Sprintf("guard cleanup failed for booking %s: %v", bookingID, err))
	}

	prices, err := s.Trips.GetSeatPrices(seatIDs)
	if err != nil {
		s.Logger.Error("BOOKING", fmt.Sprintf("seat prices unavailable for booking %s: %v", bookingID, err))
		prices = map[string]int64{}
	}

	var passes []models.BoardingPass
	if s.Passes != nil {
		passes, err = s.Passes.IssueForBooking(*booking, seats, prices)
		if err != nil {
			// Payment already went through; passes can be re-issued.
			s.Logger.Error("BOOKING", fmt.Sprintf("pass issue failed for booking %s: %v", bookingID, err))
		}
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingConfirmed(*booking); err != nil {
			s.Logger.LogKafka("PUBLISH", "booking-confirmed", fmt.Sprintf("publish failed for booking %s: %v", bookingID, err))
		}
	}

	s.Logger.LogBooking("CONFIRM", bookingID, fmt.Sprintf("%d seat(s) booked", len(seats)))
	return booking, passes, nil
}

// Cancel releases a PENDING booking's seats. A PAID or already expired
// booking cannot be cancelled through this path.
func (s *Service) Cancel(bookingID, userID string) error {
	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return ErrBookingNotFound
	}
	if userID != "" && booking.UserID != "" && booking.UserID != userID {
		return ErrNotBookingOwner
	}

	claimed, err := s.DB.UpdateBookingStatus(bookingID, models.BookingStatusPending, models.BookingStatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to claim booking %s: %w", bookingID, err)
	}
	if !claimed {
		return fmt.Errorf("booking %s is %s: %w", bookingID, booking.Status, ErrBookingNotPending)
	}
	booking.Status = models.BookingStatusCancelled

	released, err := s.Inventory.ReleaseBooking(bookingID)
	if err != nil {
		return fmt.Errorf("failed to release seats for booking %s: %w", bookingID, err)
	}
	if err := s.Guard.DropSeats(booking.TripID, released, bookingID); err != nil {
		s.Logger.Error("BOOKING", fmt.Sprintf("guard cleanup failed for booking %s: %v", bookingID, err))
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingCancelled(*booking); err != nil {
			s.Logger.LogKafka("PUBLISH", "booking-cancelled", fmt.Sprintf("publish failed for booking %s: %v", bookingID, err))
		}
	}

	s.Logger.LogBooking("CANCEL", bookingID, fmt.Sprintf("%d seat(s) released", len(released)))
	return nil
}

// Get returns a booking with the seats it currently holds.
func (s *Service) Get(bookingID string) (*models.Booking, []models.SeatStatus, error) {
	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, nil, ErrBookingNotFound
	}
	seats, err := s.Inventory.SeatsForBooking(bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load seats for booking %s: %w", bookingID, err)
	}
	return booking, seats, nil
}

// ListByUser returns a user's bookings, newest first.
func (s *Service) ListByUser(userID string) ([]models.Booking, error) {
	return s.DB.GetBookingsByUser(userID)
}

// BoardingPasses returns the passes issued for a booking.
func (s *Service) BoardingPasses(bookingID string) ([]models.BoardingPass, error) {
	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return s.DB.GetBoardingPassesByBooking(bookingID)
}
