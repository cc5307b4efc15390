package trips

import (
	"fmt"
	"ms-booking/internal/layout"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"time"

	"github.com/google/uuid"
)

type DBLayer interface {
	CreateTrip(trip models.Trip) error
	GetTripByID(id string) (*models.Trip, error)
	UpdateTrip(trip models.Trip) error
	DeleteTrip(id string) error
	CreateSeats(seats []models.Seat) error
	GetSeatsByBus(busID string) ([]models.Seat, error)
}

// ScheduleValidator is the conflict detector contract.
type ScheduleValidator interface {
	ValidateSchedule(routeID, busID string, departure, arrival time.Time, excludeTripID string) error
}

// InventoryManager owns the per-trip seat state records.
type InventoryManager interface {
	InitializeForTrip(tripID string, seats []models.SeatRef) error
	ReleaseAllForTrip(tripID string) error
	RemoveForTrip(tripID string) error
	SeatStatuses(tripID string) ([]models.SeatStatus, error)
	Availability(tripID string) (models.TripAvailability, error)
}

// BookingCounter reports how many live bookings reference a trip.
type BookingCounter interface {
	CountActiveByTrip(tripID string) (int, error)
}

type KafkaPublisher interface {
	PublishTripCreated(trip models.Trip) error
}

// Service coordinates trip lifecycle: schedule validation, seat layout
// generation, and inventory setup happen together so a trip is never
// half-created.
type Service struct {
	DB        DBLayer
	Schedule  ScheduleValidator
	Inventory InventoryManager
	Bookings  BookingCounter
	Kafka     KafkaPublisher
	Logger    *logger.Logger
}

func NewService(db DBLayer, schedule ScheduleValidator, inventory InventoryManager, bookings BookingCounter, kafka KafkaPublisher, log *logger.Logger) *Service {
	return &Service{
		DB:        db,
		Schedule:  schedule,
		Inventory: inventory,
		Bookings:  bookings,
		Kafka:     kafka,
		Logger:    log,
	}
}

// Create validates the schedule, persists the trip, generates the bus's
// seat list if it does not exist yet, and initializes the seat records.
// Any failure after the trip insert rolls the trip back.
func (s *Service) Create(req models.TripRequest) (*models.TripResponse, error) {
	if err := s.Schedule.ValidateSchedule(req.RouteID, req.BusID, req.DepartureTime, req.ArrivalTime, ""); err != nil {
		return nil, err
	}

	seats, err := s.busSeats(req)
	if err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, ErrNoSeats
	}

	trip := models.Trip{
		TripID:         uuid.NewString(),
		RouteID:        req.RouteID,
		BusID:          req.BusID,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		Status:         models.TripStatusScheduled,
		BasePriceCents: req.BasePriceCents,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.DB.CreateTrip(trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	refs := make([]models.SeatRef, 0, len(seats))
	for _, seat := range seats {
		refs = append(refs, models.SeatRef{SeatID: seat.SeatID, Code: seat.Code})
	}
	if err := s.Inventory.InitializeForTrip(trip.TripID, refs); err != nil {
		if delErr := s.DB.DeleteTrip(trip.TripID); delErr != nil {
			s.Logger.Error("TRIP", fmt.Sprintf("rollback delete failed for trip %s: %v", trip.TripID, delErr))
		}
		return nil, fmt.Errorf("failed to initialize seats for trip %s: %w", trip.TripID, err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishTripCreated(trip); err != nil {
			s.Logger.LogKafka("PUBLISH", "trip-created", fmt.Sprintf("publish failed for trip %s: %v", trip.TripID, err))
		}
	}

	s.Logger.LogTrip("CREATE", trip.TripID, fmt.Sprintf("bus %s, %d seats", trip.BusID, len(seats)))
	return &models.TripResponse{
		TripID:    trip.TripID,
		RouteID:   trip.RouteID,
		BusID:     trip.BusID,
		Status:    trip.Status,
		SeatCount: len(seats),
	}, nil
}

// busSeats reuses the bus's existing seat list or generates one from the
// requested layout on first use of the bus.
func (s *Service) busSeats(req models.TripRequest) ([]models.Seat, error) {
	existing, err := s.DB.GetSeatsByBus(req.BusID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats for bus %s: %w", req.BusID, err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	seats, err := layout.Generate(req.BusID, req.Layout, req.BasePriceCents)
	if err != nil {
		return nil, err
	}
	if err := layout.ValidateLayout(req.Layout, seats); err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return seats, nil
	}
	if err := s.DB.CreateSeats(seats); err != nil {
		return nil, fmt.Errorf("failed to persist seats for bus %s: %w", req.BusID, err)
	}
	return seats, nil
}

// Get returns a trip or ErrTripNotFound.
func (s *Service) Get(tripID string) (*models.Trip, error) {
	trip, err := s.DB.GetTripByID(tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trip %s: %w", tripID, err)
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	return trip, nil
}

// Reschedule moves a trip to a new window after re-running the schedule
// checks. The trip's own row is excluded from the overlap scan.
func (s *Service) Reschedule(tripID string, departure, arrival time.Time) (*models.Trip, error) {
	trip, err := s.Get(tripID)
	if err != nil {
		return nil, err
	}

	if err := s.Schedule.ValidateSchedule(trip.RouteID, trip.BusID, departure, arrival, tripID); err != nil {
		return nil, err
	}

	trip.DepartureTime = departure
	trip.ArrivalTime = arrival
	if err := s.DB.UpdateTrip(*trip); err != nil {
		return nil, fmt.Errorf("failed to update trip %s: %w", tripID, err)
	}

	s.Logger.LogTrip("RESCHEDULE", tripID, fmt.Sprintf("new window %s - %s",
		departure.Format(time.RFC3339), arrival.Format(time.RFC3339)))
	return trip, nil
}

// UpdateStatus sets the trip status. Cancelling frees the bus window
// immediately since the overlap scan skips CANCELLED trips.
func (s *Service) UpdateStatus(tripID, status string) (*models.Trip, error) {
	trip, err := s.Get(tripID)
	if err != nil {
		return nil, err
	}

	trip.Status = status
	if err := s.DB.UpdateTrip(*trip); err != nil {
		return nil, fmt.Errorf("failed to update trip %s: %w", tripID, err)
	}

	s.Logger.LogTrip("STATUS", tripID, status)
	return trip, nil
}

// Delete removes a trip and its seat records. It refuses while any
// booking still references the trip.
func (s *Service) Delete(tripID string) error {
	if _, err := s.Get(tripID); err != nil {
		return err
	}

	active, err := s.Bookings.CountActiveByTrip(tripID)
	if err != nil {
		return fmt.Errorf("failed to count bookings for trip %s: %w", tripID, err)
	}
	if active > 0 {
		return fmt.Errorf("%d active booking(s) on trip %s: %w", active, tripID, ErrTripHasBookings)
	}

	if err := s.Inventory.ReleaseAllForTrip(tripID); err != nil {
		return fmt.Errorf("failed to release seats for trip %s: %w", tripID, err)
	}
	if err := s.Inventory.RemoveForTrip(tripID); err != nil {
		return fmt.Errorf("failed to remove seat records for trip %s: %w", tripID, err)
	}
	if err := s.DB.DeleteTrip(tripID); err != nil {
		return fmt.Errorf("failed to delete trip %s: %w", tripID, err)
	}

	s.Logger.LogTrip("DELETE", tripID, "trip and seat records removed")
	return nil
}

// SeatMap returns the live seat states of a trip.
func (s *Service) SeatMap(tripID string) ([]models.SeatStatus, error) {
	if _, err := s.Get(tripID); err != nil {
		return nil, err
	}
	return s.Inventory.SeatStatuses(tripID)
}

// Availability returns the trip's aggregate seat counts.
func (s *Service) Availability(tripID string) (models.TripAvailability, error) {
	if _, err := s.Get(tripID); err != nil {
		return models.TripAvailability{}, err
	}
	return s.Inventory.Availability(tripID)
}
