package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Seat states. A seat belongs to exactly one of these per trip; every
// transition goes through the inventory service, never through direct
// writes.
const (
	SeatStateAvailable = "AVAILABLE"
	SeatStateLocked    = "LOCKED"
	SeatStateReserved  = "RESERVED"
	SeatStateBooked    = "BOOKED"
)

// SeatStatus is the per-(seat, trip) availability record. The
// (seat_id, trip_id) pair is unique; booking_id and locked_until are only
// set while the seat is held or booked.
type SeatStatus struct {
	bun.BaseModel `bun:"table:seat_status"`

	SeatID      string     `bun:"seat_id,pk" json:"seat_id"`
	TripID      string     `bun:"trip_id,pk" json:"trip_id"`
	SeatCode    string     `bun:"seat_code,notnull" json:"seat_code"`
	State       string     `bun:"state,notnull" json:"state"`
	BookingID   string     `bun:"booking_id,nullzero" json:"booking_id,omitempty"`
	LockedUntil *time.Time `bun:"locked_until,nullzero" json:"locked_until,omitempty"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero" json:"updated_at"`
}

// TripAvailability is the read-only aggregate returned by the inventory.
// OccupancyRate is nil when the trip has no seats.
type TripAvailability struct {
	TripID        string   `json:"trip_id"`
	Total         int      `json:"total"`
	Available     int      `json:"available"`
	OccupancyRate *float64 `json:"occupancy_rate"`
}
