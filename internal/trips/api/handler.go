package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"ms-booking/internal/inventory"
	"ms-booking/internal/layout"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/schedule"
	"ms-booking/internal/trips"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	TripService *trips.Service
	Logger      *logger.Logger
}

func NewHandler(tripService *trips.Service, log *logger.Logger) *Handler {
	return &Handler{
		TripService: tripService,
		Logger:      log,
	}
}

// CreateTrip handles POST /trips.
func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("API", "CreateTrip: received request")

	var req models.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTrip: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	response, err := h.TripService.Create(req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTrip: %v", err))
		http.Error(w, err.Error(), tripErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTrip: failed to encode response: %v", err))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateTrip: trip %s created", response.TripID))
}

// GetTrip handles GET /trips/{tripId}.
func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")
	h.Logger.Info("API", fmt.Sprintf("GetTrip: tripId=%s", tripID))

	trip, err := h.TripService.Get(tripID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetTrip: %v", err))
		http.Error(w, err.Error(), tripErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(trip); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetTrip: failed to encode response: %v", err))
	}
}

// RescheduleTrip handles PUT /trips/{tripId}/schedule.
func (h *Handler) RescheduleTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")
	h.Logger.Info("API", fmt.Sprintf("RescheduleTrip: tripId=%s", tripID))

	var req struct {
		DepartureTime time.Time `json:"departure_time"`
		ArrivalTime   time.Time `json:"arrival_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("RescheduleTrip: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	trip, err := h.TripService.Reschedule(tripID, req.DepartureTime, req.ArrivalTime)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RescheduleTrip: %v", err))
		http.Error(w, err.Error(), tripErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(trip); err != nil {
		h.Logger.Error("API", fmt.Sprintf("RescheduleTrip: failed to encode response: %v", err))
	}
}

// UpdateTripStatus handles PUT /trips/{tripId}/status.
func (h *Handler) UpdateTripStatus(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !validTripStatus(req.Status) {
		http.Error(w, "Unknown trip status: "+req.Status, http.StatusBadRequest)
		return
	}

	trip, err := h.TripService.UpdateStatus(tripID, req.Status)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateTripStatus: %v", err))
		http.Error(w, err.Error(), tripErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(trip); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateTripStatus: failed to encode response: %v", err))
	}
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")
	h.Logger.Info("API", fmt.Sprintf("DeleteTrip: tripId=%s", tripID))

	if err := h.TripService.Delete(tripID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteTrip: %v", err))
		http.Error(w, err.Error(), tripErrorStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSeatMap handles GET /trips/{tripId}/seats.
func (h *Handler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	statuses, err := h.TripService.SeatMap(tripID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSeatMap: %v", err))
		http.Error(w, err.Error(), tripErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statuses); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSeatMap: failed to encode response: %v", err))
	}
}

// GetAvailability handles GET /trips/{tripId}/availability.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	availability, err := h.TripService.Availability(tripID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetAvailability: %v", err))
		http.Error(w, err.Error(), tripErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(availability); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetAvailability: failed to encode response: %v", err))
	}
}

// tripErrorStatus maps service errors to HTTP status codes. Schedule
// conflicts are 409 so clients can distinguish them from bad input.
func tripErrorStatus(err error) int {
	switch {
	case errors.Is(err, trips.ErrTripNotFound),
		errors.Is(err, schedule.ErrBusNotFound),
		errors.Is(err, schedule.ErrRouteNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrBusScheduleConflict),
		errors.Is(err, trips.ErrTripHasBookings),
		errors.Is(err, inventory.ErrAlreadyInitialized):
		return http.StatusConflict
	case errors.Is(err, schedule.ErrInvalidTiming),
		errors.Is(err, schedule.ErrIncompatibleOperator),
		errors.Is(err, layout.ErrInvalidLayout),
		errors.Is(err, trips.ErrNoSeats):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func validTripStatus(status string) bool {
	switch status {
	case models.TripStatusScheduled, models.TripStatusInProgress,
		models.TripStatusCompleted, models.TripStatusCancelled, models.TripStatusDelayed:
		return true
	}
	return false
}
