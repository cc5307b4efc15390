package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"ms-booking/internal/auth"
	"ms-booking/internal/booking"
	"ms-booking/internal/inventory"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	BookingService *booking.Service
	Logger         *logger.Logger
}

func NewHandler(bookingService *booking.Service, log *logger.Logger) *Handler {
	return &Handler{
		BookingService: bookingService,
		Logger:         log,
	}
}

// CreateBooking handles POST /bookings. Anonymous requests create guest
// bookings.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("API", "CreateBooking: received request")

	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBooking: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	userID := auth.UserID(r.Context())
	response, err := h.BookingService.Create(req, userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBooking: %v", err))
		http.Error(w, err.Error(), bookingErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBooking: failed to encode response: %v", err))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateBooking: booking %s created", response.BookingID))
}

// GetBooking handles GET /bookings/{bookingId}.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")
	h.Logger.Info("API", fmt.Sprintf("GetBooking: bookingId=%s", bookingID))

	record, seats, err := h.BookingService.Get(bookingID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetBooking: %v", err))
		http.Error(w, err.Error(), bookingErrorStatus(err))
		return
	}

	response := struct {
		Booking *models.Booking     `json:"booking"`
		Seats   []models.SeatStatus `json:"seats"`
	}{Booking: record, Seats: seats}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetBooking: failed to encode response: %v", err))
	}
}

// ConfirmPayment handles POST /bookings/{bookingId}/payment. The same
// transition also runs off the payment-success Kafka topic; both paths
// share the conditional status claim, so double confirmation is safe.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")
	h.Logger.Info("API", fmt.Sprintf("ConfirmPayment: bookingId=%s", bookingID))

	record, passes, err := h.BookingService.ConfirmPayment(bookingID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ConfirmPayment: %v", err))
		http.Error(w, err.Error(), bookingErrorStatus(err))
		return
	}

	response := struct {
		Booking *models.Booking       `json:"booking"`
		Passes  []models.BoardingPass `json:"passes"`
	}{Booking: record, Passes: passes}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ConfirmPayment: failed to encode response: %v", err))
	}
}

// CancelBooking handles DELETE /bookings/{bookingId}.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")
	h.Logger.Info("API", fmt.Sprintf("CancelBooking: bookingId=%s", bookingID))

	userID := auth.UserID(r.Context())
	if err := h.BookingService.Cancel(bookingID, userID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelBooking: %v", err))
		http.Error(w, err.Error(), bookingErrorStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetUserBookings handles GET /users/{userId}/bookings. Callers may only
// list their own bookings.
func (h *Handler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if auth.UserID(r.Context()) != userID {
		http.Error(w, "cannot list another user's bookings", http.StatusForbidden)
		return
	}

	bookings, err := h.BookingService.ListByUser(userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetUserBookings: %v", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(bookings); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetUserBookings: failed to encode response: %v", err))
	}
}

// GetBoardingPasses handles GET /bookings/{bookingId}/passes.
func (h *Handler) GetBoardingPasses(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	passes, err := h.BookingService.BoardingPasses(bookingID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetBoardingPasses: %v", err))
		http.Error(w, err.Error(), bookingErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(passes); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetBoardingPasses: failed to encode response: %v", err))
	}
}

func bookingErrorStatus(err error) int {
	switch {
	case errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, booking.ErrTripNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrSeatsUnavailable),
		errors.Is(err, booking.ErrBookingNotPending),
		errors.Is(err, inventory.ErrSeatUnavailable):
		return http.StatusConflict
	case errors.Is(err, booking.ErrNoSeatsRequested),
		errors.Is(err, booking.ErrTripNotBookable):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrNotBookingOwner):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
