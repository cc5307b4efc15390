package sweeper

import (
	"context"
	"fmt"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"time"
)

type BookingStore interface {
	GetExpiredPending(now time.Time) ([]models.Booking, error)
	UpdateBookingStatus(id, fromStatus, toStatus string) (bool, error)
}

type SeatReleaser interface {
	ReleaseBooking(bookingID string) ([]string, error)
}

type EventPublisher interface {
	PublishBookingExpired(booking models.Booking) error
}

// Sweeper reclaims seats held by bookings whose hold deadline passed
// without payment. It runs on a fixed interval, independent of request
// traffic, and relies on the conditional status claim for safety: a
// second sweeper instance or a racing payment confirmation simply loses
// the claim and the booking is skipped.
type Sweeper struct {
	Bookings  BookingStore
	Inventory SeatReleaser
	Events    EventPublisher
	Interval  time.Duration
	Logger    *logger.Logger
}

func NewSweeper(bookings BookingStore, inv SeatReleaser, events EventPublisher, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		Bookings:  bookings,
		Inventory: inv,
		Events:    events,
		Interval:  interval,
		Logger:    log,
	}
}

// ProcessExpiredBookings runs one sweep. Each booking is claimed with a
// conditional PENDING -> EXPIRED update; only a successful claim releases
// the booking's seats and counts toward the result. A failure on one
// booking never aborts the rest of the sweep.
func (s *Sweeper) ProcessExpiredBookings() (models.SweepResult, error) {
	now := time.Now().UTC()

	expired, err := s.Bookings.GetExpiredPending(now)
	if err != nil {
		return models.SweepResult{}, fmt.Errorf("failed to list expired bookings: %w", err)
	}

	result := models.SweepResult{BookingIDs: []string{}}
	for _, booking := range expired {
		claimed, err := s.Bookings.UpdateBookingStatus(booking.BookingID, models.BookingStatusPending, models.BookingStatusExpired)
		if err != nil {
			s.Logger.Error("SWEEP", fmt.Sprintf("claim failed for booking %s: %v", booking.BookingID, err))
			continue
		}
		if !claimed {
			// Concurrently paid, cancelled, or expired by another
			// sweeper instance.
			continue
		}

		if _, err := s.Inventory.ReleaseBooking(booking.BookingID); err != nil {
			s.Logger.Error("SWEEP", fmt.Sprintf("seat release failed for booking %s: %v", booking.BookingID, err))
		}

		if s.Events != nil {
			booking.Status = models.BookingStatusExpired
			if err := s.Events.PublishBookingExpired(booking); err != nil {
				s.Logger.Error("SWEEP", fmt.Sprintf("kafka publish failed for booking %s: %v", booking.BookingID, err))
			}
		}

		result.ExpiredCount++
		result.BookingIDs = append(result.BookingIDs, booking.BookingID)
	}

	if result.ExpiredCount > 0 {
		s.Logger.LogSweep(fmt.Sprintf("expired %d booking(s): %v", result.ExpiredCount, result.BookingIDs))
	}
	return result, nil
}

// Run executes sweeps on the configured interval until the context is
// cancelled. A failed run is logged and retried on the next tick; it
// never crashes the process.
func (s *Sweeper) Run(ctx context.Context) {
	s.Logger.LogSweep(fmt.Sprintf("sweeper started, interval %s", s.Interval))

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.LogSweep("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.ProcessExpiredBookings(); err != nil {
				s.Logger.Error("SWEEP", fmt.Sprintf("sweep run failed: %v", err))
			}
		}
	}
}
