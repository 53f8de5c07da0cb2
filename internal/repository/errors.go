package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrUserHasActiveReservation is returned when the user already holds
	// an active reservation.
	ErrUserHasActiveReservation = errors.New("user already has an active reservation")

	// ErrVehicleReserved is returned when the vehicle already has an active
	// reservation held by anyone.
	ErrVehicleReserved = errors.New("vehicle already reserved")

	// ErrReservationNotActive is returned when a transition requires an
	// ACTIVE reservation and the row is in another state.
	ErrReservationNotActive = errors.New("reservation not active")

	// ErrReservationExpired is returned when a conversion is attempted at
	// or past the reservation's expiry instant.
	ErrReservationExpired = errors.New("reservation expired")

	// ErrUserHasActiveTrip is returned when the user already has an active trip.
	ErrUserHasActiveTrip = errors.New("user already has an active trip")

	// ErrVehicleInUse is returned when the vehicle already has an active trip.
	ErrVehicleInUse = errors.New("vehicle already in use")

	// ErrTripNotActive is returned when a transition requires an ACTIVE trip.
	ErrTripNotActive = errors.New("trip not active")

	// ErrAlreadyRated is returned when a rating already exists for the trip.
	ErrAlreadyRated = errors.New("trip already rated")

	// ErrInsufficientBalance is returned when a debit would take the wallet
	// balance below zero.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)
