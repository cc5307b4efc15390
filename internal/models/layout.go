package models

// Layout templates understood by the seat layout generator. CUSTOM
// produces no seats; the caller supplies its own list.
const (
	LayoutStandard2x2 = "STANDARD_2X2"
	LayoutStandard2x3 = "STANDARD_2X3"
	LayoutVIP1x2      = "VIP_1X2"
	LayoutSleeper1x2  = "SLEEPER_1X2"
	LayoutCustom      = "CUSTOM"
)

// SeatTypePrices carries optional absolute per-type prices in cents.
// A zero or negative value means "not set" and the generator falls back
// to the base-price multiplier for that type.
type SeatTypePrices struct {
	NormalCents   int64 `json:"normal_cents,omitempty"`
	VIPCents      int64 `json:"vip_cents,omitempty"`
	BusinessCents int64 `json:"business_cents,omitempty"`
}

type LayoutRequest struct {
	Template       string         `json:"template"`
	TotalRows      int            `json:"total_rows"`
	SeatsPerRow    int            `json:"seats_per_row"`
	SeatTypePrices SeatTypePrices `json:"seat_type_prices"`
}
