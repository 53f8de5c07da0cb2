package service

import "errors"

var (
	// ErrAlreadyReserved is returned when the user already holds an active
	// reservation.
	ErrAlreadyReserved = errors.New("user already has an active reservation")

	// ErrVehicleUnavailable is returned when the vehicle cannot be reserved:
	// it is already reserved, already on a trip, or not in service.
	ErrVehicleUnavailable = errors.New("vehicle unavailable")

	// ErrInvalidState is returned for a transition attempted from a state
	// that does not allow it.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrReservationExpired is returned when converting a reservation at or
	// past its expiry instant.
	ErrReservationExpired = errors.New("reservation expired")

	// ErrUnauthorized is returned when acting on another user's resource.
	ErrUnauthorized = errors.New("resource belongs to another user")

	// ErrPaymentFailed is returned when settlement exhausted its retries or
	// the card was declined. The trip stays open so the user can retry.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidVehicleID is returned when vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidReservationID is returned when reservation ID is empty.
	ErrInvalidReservationID = errors.New("invalid reservation id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidRating is returned when stars are outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5 stars")

	// ErrCommentTooLong is returned when a rating comment exceeds the bound.
	ErrCommentTooLong = errors.New("rating comment too long")

	// ErrInvalidAmount is returned when a monetary amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")
)
