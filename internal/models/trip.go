package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Trip statuses. CANCELLED trips never occupy their bus.
const (
	TripStatusScheduled  = "SCHEDULED"
	TripStatusInProgress = "IN_PROGRESS"
	TripStatusCompleted  = "COMPLETED"
	TripStatusCancelled  = "CANCELLED"
	TripStatusDelayed    = "DELAYED"
)

type Trip struct {
	bun.BaseModel `bun:"table:trips"`

	TripID         string    `bun:"trip_id,pk" json:"trip_id"`
	RouteID        string    `bun:"route_id,notnull" json:"route_id"`
	BusID          string    `bun:"bus_id,notnull" json:"bus_id"`
	DepartureTime  time.Time `bun:"departure_time,notnull" json:"departure_time"`
	ArrivalTime    time.Time `bun:"arrival_time,notnull" json:"arrival_time"`
	Status         string    `bun:"status,notnull" json:"status"`
	BasePriceCents int64     `bun:"base_price_cents,notnull" json:"base_price_cents"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type TripRequest struct {
	RouteID        string        `json:"route_id"`
	BusID          string        `json:"bus_id"`
	DepartureTime  time.Time     `json:"departure_time"`
	ArrivalTime    time.Time     `json:"arrival_time"`
	BasePriceCents int64         `json:"base_price_cents"`
	Layout         LayoutRequest `json:"layout"`
}

type TripResponse struct {
	TripID    string `json:"trip_id"`
	RouteID   string `json:"route_id"`
	BusID     string `json:"bus_id"`
	Status    string `json:"status"`
	SeatCount int    `json:"seat_count"`
}
