package models

import (
	"time"

	"github.com/uptrace/bun"
)

// BoardingPass is issued per confirmed seat once a booking is paid. The
// QR payload is an encrypted copy of the pass for gate-side scanning.
type BoardingPass struct {
	bun.BaseModel `bun:"table:boarding_passes"`

	PassID     string    `bun:"pass_id,pk" json:"pass_id"`
	BookingID  string    `bun:"booking_id,notnull" json:"booking_id"`
	TripID     string    `bun:"trip_id,notnull" json:"trip_id"`
	SeatID     string    `bun:"seat_id,notnull" json:"seat_id"`
	SeatCode   string    `bun:"seat_code,notnull" json:"seat_code"`
	PriceCents int64     `bun:"price_cents,notnull" json:"price_cents"`
	QRCode     []byte    `bun:"qr_code" json:"qr_code,omitempty"`
	IssuedAt   time.Time `bun:"issued_at,notnull" json:"issued_at"`
}
