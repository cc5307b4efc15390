package layout

import (
	"errors"
	"fmt"
	"math"
	"ms-booking/internal/models"
)

// ErrInvalidLayout covers every layout validation failure: bad
// dimensions, seat counts that do not match the template, and seats
// placed outside the grid.
var ErrInvalidLayout = errors.New("invalid seat layout")

// Default multipliers applied when no absolute price is configured for a
// seat type.
const (
	normalMultiplier   = 1.0
	vipMultiplier      = 1.3
	businessMultiplier = 1.5
)

const maxSeatsPerRow = 26 // column letters A..Z

// priceRule is the resolved pricing choice for one seat type: either an
// absolute price or a ratio of the trip base price. It is computed once
// per generation, never re-derived at read time.
type priceRule struct {
	absoluteCents int64
	multiplier    float64
}

func (r priceRule) resolve(basePriceCents int64) int64 {
	if r.absoluteCents > 0 {
		return r.absoluteCents
	}
	price := int64(math.Round(float64(basePriceCents) * r.multiplier))
	if price < 0 {
		return 0
	}
	return price
}

func priceRules(prices models.SeatTypePrices) map[string]priceRule {
	return map[string]priceRule{
		models.SeatTypeNormal:   {absoluteCents: prices.NormalCents, multiplier: normalMultiplier},
		models.SeatTypeVIP:      {absoluteCents: prices.VIPCents, multiplier: vipMultiplier},
		models.SeatTypeBusiness: {absoluteCents: prices.BusinessCents, multiplier: businessMultiplier},
	}
}

// Generate produces the deterministic seat list for a bus. Seats are
// coded "{row}{columnLetter}" walking rows outward, and seat IDs derive
// from the bus id and code so two runs with the same inputs are
// identical. CUSTOM returns an empty list; the caller supplies its own.
func Generate(busID string, req models.LayoutRequest, basePriceCents int64) ([]models.Seat, error) {
	if req.Template == models.LayoutCustom {
		return []models.Seat{}, nil
	}

	typeFor, err := templateRule(req.Template)
	if err != nil {
		return nil, err
	}
	if req.TotalRows < 1 || req.SeatsPerRow < 1 {
		return nil, fmt.Errorf("layout needs at least one row and one column: %w", ErrInvalidLayout)
	}
	if req.SeatsPerRow > maxSeatsPerRow {
		return nil, fmt.Errorf("more than %d seats per row: %w", maxSeatsPerRow, ErrInvalidLayout)
	}

	rules := priceRules(req.SeatTypePrices)

	seats := make([]models.Seat, 0, req.TotalRows*req.SeatsPerRow)
	for row := 1; row <= req.TotalRows; row++ {
		for position := 1; position <= req.SeatsPerRow; position++ {
			code := fmt.Sprintf("%d%c", row, 'A'+position-1)
			seatType := typeFor(position, req.SeatsPerRow)
			seats = append(seats, models.Seat{
				SeatID:     busID + "-" + code,
				BusID:      busID,
				Code:       code,
				Type:       seatType,
				Row:        row,
				Position:   position,
				PriceCents: rules[seatType].resolve(basePriceCents),
				Active:     true,
			})
		}
	}
	return seats, nil
}

// templateRule maps a template to its per-position seat type rule.
func templateRule(template string) (func(position, seatsPerRow int) string, error) {
	switch template {
	case models.LayoutStandard2x2:
		return func(int, int) string { return models.SeatTypeNormal }, nil
	case models.LayoutStandard2x3:
		// The middle column of a 3-across row rides VIP.
		return func(position, seatsPerRow int) string {
			if seatsPerRow%2 == 1 && position == (seatsPerRow+1)/2 {
				return models.SeatTypeVIP
			}
			return models.SeatTypeNormal
		}, nil
	case models.LayoutVIP1x2:
		return func(int, int) string { return models.SeatTypeVIP }, nil
	case models.LayoutSleeper1x2:
		// Sleeper berths are priced at the business tier.
		return func(int, int) string { return models.SeatTypeBusiness }, nil
	default:
		return nil, fmt.Errorf("unknown template %q: %w", template, ErrInvalidLayout)
	}
}

// ValidateLayout checks a supplied seat list against the template grid:
// the count must match totalRows*seatsPerRow for non-custom templates and
// every seat must sit inside [1,totalRows] x [1,seatsPerRow].
func ValidateLayout(req models.LayoutRequest, seats []models.Seat) error {
	if req.Template != models.LayoutCustom {
		expected := req.TotalRows * req.SeatsPerRow
		if len(seats) != expected {
			return fmt.Errorf("expected %d seats for %s, got %d: %w",
				expected, req.Template, len(seats), ErrInvalidLayout)
		}
	}
	for _, seat := range seats {
		if seat.Row < 1 || seat.Row > req.TotalRows || seat.Position < 1 || seat.Position > req.SeatsPerRow {
			return fmt.Errorf("seat %s at (%d,%d) outside %dx%d grid: %w",
				seat.Code, seat.Row, seat.Position, req.TotalRows, req.SeatsPerRow, ErrInvalidLayout)
		}
	}
	return nil
}
