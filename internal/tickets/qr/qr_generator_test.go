package qr

import (
	"ms-booking/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEncryptedQR(t *testing.T) {
	gen := NewQRGenerator("test-secret")

	pass := models.BoardingPass{
		PassID:     "pass-1",
		BookingID:  "booking-1",
		TripID:     "trip-1",
		SeatID:     "seat-1",
		SeatCode:   "1A",
		PriceCents: 150000,
		IssuedAt:   time.Now(),
	}

	png, err := gen.GenerateEncryptedQR(pass)
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestGenerateEncryptedQR_DifferentSecretsDiffer(t *testing.T) {
	pass := models.BoardingPass{PassID: "pass-1", BookingID: "booking-1", SeatCode: "1A"}

	a, err := NewQRGenerator("secret-a").GenerateEncryptedQR(pass)
	require.NoError(t, err)
	b, err := NewQRGenerator("secret-b").GenerateEncryptedQR(pass)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
