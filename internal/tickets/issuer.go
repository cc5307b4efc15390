package tickets

import (
	"fmt"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/tickets/qr"
	"time"

	"github.com/google/uuid"
)

type PassStore interface {
	CreateBoardingPasses(passes []models.BoardingPass) error
}

// Issuer creates one boarding pass per confirmed seat of a paid booking,
// each carrying an encrypted QR payload.
type Issuer struct {
	DB     PassStore
	QR     *qr.QRGenerator
	Logger *logger.Logger
}

func NewIssuer(db PassStore, qrGen *qr.QRGenerator, log *logger.Logger) *Issuer {
	return &Issuer{DB: db, QR: qrGen, Logger: log}
}

// IssueForBooking builds and persists the passes. priceBySeat maps seat
// id to the price charged; a missing entry falls back to zero rather
// than failing the issue.
func (i *Issuer) IssueForBooking(booking models.Booking, seats []models.SeatStatus, priceBySeat map[string]int64) ([]models.BoardingPass, error) {
	passes := make([]models.BoardingPass, 0, len(seats))
	for _, seat := range seats {
		pass := models.BoardingPass{
			PassID:     uuid.NewString(),
			BookingID:  booking.BookingID,
			TripID:     seat.TripID,
			SeatID:     seat.SeatID,
			SeatCode:   seat.SeatCode,
			PriceCents: priceBySeat[seat.SeatID],
			IssuedAt:   time.Now().UTC(),
		}

		qrBytes, err := i.QR.GenerateEncryptedQR(pass)
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR for seat %s: %w", seat.SeatID, err)
		}
		pass.QRCode = qrBytes
		passes = append(passes, pass)
	}

	if err := i.DB.CreateBoardingPasses(passes); err != nil {
		return nil, fmt.Errorf("failed to persist boarding passes for booking %s: %w", booking.BookingID, err)
	}

	i.Logger.LogBooking("PASSES", booking.BookingID, fmt.Sprintf("issued %d boarding pass(es)", len(passes)))
	return passes, nil
}
