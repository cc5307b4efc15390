package models

import (
	"github.com/uptrace/bun"
)

// Seat types assigned by the layout generator.
const (
	SeatTypeNormal   = "NORMAL"
	SeatTypeVIP      = "VIP"
	SeatTypeBusiness = "BUSINESS"
)

type Seat struct {
	bun.BaseModel `bun:"table:seats"`

	SeatID     string `bun:"seat_id,pk" json:"seat_id"`
	BusID      string `bun:"bus_id,notnull" json:"bus_id"`
	Code       string `bun:"code,notnull" json:"code"`
	Type       string `bun:"type,notnull" json:"type"`
	Row        int    `bun:"row,notnull" json:"row"`
	Position   int    `bun:"position,notnull" json:"position"`
	PriceCents int64  `bun:"price_cents,notnull" json:"price_cents"`
	Active     bool   `bun:"active,notnull,default:true" json:"active"`
}

// SeatRef is the minimal seat identity the inventory needs when a trip's
// records are initialized.
type SeatRef struct {
	SeatID string `json:"seat_id"`
	Code   string `json:"code"`
}
