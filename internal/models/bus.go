package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Bus struct {
	bun.BaseModel `bun:"table:buses"`

	BusID      string    `bun:"bus_id,pk" json:"bus_id"`
	OperatorID string    `bun:"operator_id,notnull" json:"operator_id"`
	PlateNo    string    `bun:"plate_no,notnull" json:"plate_no"`
	Model      string    `bun:"model,nullzero" json:"model,omitempty"`
	Active     bool      `bun:"active,notnull,default:true" json:"active"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type Route struct {
	bun.BaseModel `bun:"table:routes"`

	RouteID     string    `bun:"route_id,pk" json:"route_id"`
	OperatorID  string    `bun:"operator_id,notnull" json:"operator_id"`
	Origin      string    `bun:"origin,notnull" json:"origin"`
	Destination string    `bun:"destination,notnull" json:"destination"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
