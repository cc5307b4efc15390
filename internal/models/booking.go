package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Booking statuses. ExpiresAt is only meaningful while the booking is
// PENDING; it is the sole input to the expiration sweeper.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusPaid      = "PAID"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"
	BookingStatusExpired   = "EXPIRED"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	BookingID string     `bun:"booking_id,pk" json:"booking_id"`
	TripID    string     `bun:"trip_id,notnull" json:"trip_id"`
	UserID    string     `bun:"user_id,nullzero" json:"user_id,omitempty"`
	Status    string     `bun:"status,notnull" json:"status"`
	BookedAt  time.Time  `bun:"booked_at,notnull" json:"booked_at"`
	ExpiresAt *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
}

type BookingRequest struct {
	TripID  string   `json:"trip_id"`
	SeatIDs []string `json:"seat_ids"`
}

type BookingResponse struct {
	BookingID string    `json:"booking_id"`
	TripID    string    `json:"trip_id"`
	SeatIDs   []string  `json:"seat_ids"`
	UserID    string    `json:"user_id,omitempty"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SweepResult reports one run of the expiration sweeper.
type SweepResult struct {
	ExpiredCount int      `json:"expired_count"`
	BookingIDs   []string `json:"booking_ids"`
}
