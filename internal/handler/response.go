package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/fleet"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, fleet.ErrVehicleNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidReservationID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrCommentTooLong),
		errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest

	// Payment failures are distinct from state conflicts: the trip is in a
	// valid state, the charge just did not go through.
	case errors.Is(err, service.ErrPaymentFailed):
		return http.StatusPaymentRequired

	// Conflict errors
	case errors.Is(err, service.ErrAlreadyReserved),
		errors.Is(err, service.ErrVehicleUnavailable),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrReservationExpired),
		errors.Is(err, service.ErrPhoneTaken),
		errors.Is(err, repository.ErrInsufficientBalance):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
