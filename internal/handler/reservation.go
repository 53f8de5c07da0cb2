package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/service"
)

// ReservationHandler handles HTTP requests for reservations.
type ReservationHandler struct {
	reservationService *service.ReservationService
	tripService        *service.TripService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(reservationService *service.ReservationService, tripService *service.TripService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
		tripService:        tripService,
	}
}

// CreateReservationRequest is the HTTP request body for creating a reservation.
type CreateReservationRequest struct {
	UserID    string `json:"user_id"`
	VehicleID string `json:"vehicle_id"`
}

// ConvertReservationRequest is the HTTP request body for converting a
// reservation into a trip.
type ConvertReservationRequest struct {
	UserID string `json:"user_id"`
}

// CancelReservationRequest is the HTTP request body for cancelling a reservation.
type CancelReservationRequest struct {
	UserID string `json:"user_id"`
}

// ReservationResponse is the HTTP response for a reservation.
type ReservationResponse struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	VehicleID        string `json:"vehicle_id"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
	ExpiresAt        string `json:"expires_at"`
	RemainingSeconds int64  `json:"remaining_seconds"`
}

func (h *ReservationHandler) toResponse(res *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:               res.ID,
		UserID:           res.UserID,
		VehicleID:        res.VehicleID,
		Status:           string(res.Status),
		CreatedAt:        res.CreatedAt.Format(time.RFC3339),
		ExpiresAt:        res.ExpiresAt.Format(time.RFC3339),
		RemainingSeconds: h.reservationService.RemainingSeconds(res),
	}
}

// CreateReservation handles POST /v1/reservations
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	res, err := h.reservationService.Create(c.Request.Context(), service.CreateReservationRequest{
		UserID:    req.UserID,
		VehicleID: req.VehicleID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, h.toResponse(res))
}

// GetReservation handles GET /v1/reservations/:id
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	res, err := h.reservationService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, h.toResponse(res))
}

// CancelReservation handles POST /v1/reservations/:id/cancel
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	var req CancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	res, err := h.reservationService.Cancel(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, h.toResponse(res))
}

// ConvertReservation handles POST /v1/reservations/:id/convert
func (h *ReservationHandler) ConvertReservation(c *gin.Context) {
	var req ConvertReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.StartFromReservation(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// GetActiveReservation handles GET /v1/users/:id/reservations/active
func (h *ReservationHandler) GetActiveReservation(c *gin.Context) {
	res, err := h.reservationService.GetActiveByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, h.toResponse(res))
}

// ListUserReservations handles GET /v1/users/:id/reservations
func (h *ReservationHandler) ListUserReservations(c *gin.Context) {
	reservations, err := h.reservationService.GetByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, h.toResponse(res))
	}

	respondJSON(c, http.StatusOK, out)
}
