package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// EndTripRequest is the HTTP request body for ending a trip.
type EndTripRequest struct {
	UserID string `json:"user_id"`
}

// RateTripRequest is the HTTP request body for rating a trip.
type RateTripRequest struct {
	UserID  string `json:"user_id"`
	Stars   int    `json:"stars"`
	Comment string `json:"comment,omitempty"`
}

// TripResponse is the HTTP response for a trip.
type TripResponse struct {
	ID            string  `json:"id"`
	ReservationID string  `json:"reservation_id"`
	UserID        string  `json:"user_id"`
	VehicleID     string  `json:"vehicle_id"`
	VehicleCode   string  `json:"vehicle_code"`
	Status        string  `json:"status"`
	StartedAt     string  `json:"started_at"`
	EndedAt       string  `json:"ended_at,omitempty"`
	DistanceKm    float64 `json:"distance_km,omitempty"`
	RatingStars   int     `json:"rating_stars,omitempty"`
	RatingComment string  `json:"rating_comment,omitempty"`
}

// TripStatusResponse is the HTTP response for a trip's live status.
type TripStatusResponse struct {
	TripResponse
	ElapsedMinutes int     `json:"elapsed_minutes"`
	AccruedCost    float64 `json:"accrued_cost"`
	BatteryPct     int     `json:"battery_pct"`
	LowBattery     bool    `json:"low_battery"`
}

// EndTripResponse is the HTTP response for ending a trip.
type EndTripResponse struct {
	Trip    TripResponse    `json:"trip"`
	Receipt ReceiptResponse `json:"receipt"`
}

func toTripResponse(trip *domain.Trip) TripResponse {
	resp := TripResponse{
		ID:            trip.ID,
		ReservationID: trip.ReservationID,
		UserID:        trip.UserID,
		VehicleID:     trip.VehicleID,
		VehicleCode:   trip.VehicleCode,
		Status:        string(trip.Status),
		StartedAt:     trip.StartedAt.Format(time.RFC3339),
		DistanceKm:    trip.DistanceKm,
		RatingStars:   trip.RatingStars,
		RatingComment: trip.RatingComment,
	}
	if !trip.EndedAt.IsZero() {
		resp.EndedAt = trip.EndedAt.Format(time.RFC3339)
	}
	return resp
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// GetTripStatus handles GET /v1/trips/:id/status
func (h *TripHandler) GetTripStatus(c *gin.Context) {
	status, err := h.tripService.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, TripStatusResponse{
		TripResponse:   toTripResponse(status.Trip),
		ElapsedMinutes: status.ElapsedMinutes,
		AccruedCost:    status.AccruedCost,
		BatteryPct:     status.BatteryPct,
		LowBattery:     status.LowBattery,
	})
}

// EndTrip handles POST /v1/trips/:id/end
func (h *TripHandler) EndTrip(c *gin.Context) {
	var req EndTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.tripService.EndTrip(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EndTripResponse{
		Trip:    toTripResponse(result.Trip),
		Receipt: toReceiptResponse(result.Receipt),
	})
}

// RateTrip handles POST /v1/trips/:id/rating
func (h *TripHandler) RateTrip(c *gin.Context) {
	var req RateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.AddRating(c.Request.Context(), c.Param("id"), req.UserID, req.Stars, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// GetActiveTrip handles GET /v1/users/:id/trips/active
func (h *TripHandler) GetActiveTrip(c *gin.Context) {
	trip, err := h.tripService.GetActiveByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// ListUserTrips handles GET /v1/users/:id/trips
func (h *TripHandler) ListUserTrips(c *gin.Context) {
	trips, err := h.tripService.GetByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		out = append(out, toTripResponse(trip))
	}

	respondJSON(c, http.StatusOK, out)
}
