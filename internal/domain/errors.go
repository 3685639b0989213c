package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Auth errors
	ErrUnauthenticated = errors.New("authentication required")

	// Validation errors
	ErrInvalidListingID     = errors.New("invalid listing id")
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrInvalidDateRange     = errors.New("check-out date must be after check-in date")
	ErrInvalidGuestCount    = errors.New("guest count must be greater than zero")
	ErrInvalidPaymentMethod = errors.New("payment method is required")
	ErrInvalidNightlyRate   = errors.New("nightly rate cannot be negative")
	ErrInvalidTotalPrice    = errors.New("total price cannot be negative")

	// Not found errors
	ErrListingNotFound     = errors.New("listing not found")
	ErrReservationNotFound = errors.New("reservation not found")

	// Conflict errors
	ErrBookingConflict = errors.New("listing is already booked for the selected dates")
)

// ConflictError is returned when a requested date range overlaps one or
// more committed reservations. It carries the conflicting reservations so
// the caller can surface them as a user-facing rejection.
type ConflictError struct {
	ListingID string
	Conflicts []*Reservation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("listing %s is already booked for the selected dates (%d conflicting reservations)",
		e.ListingID, len(e.Conflicts))
}

// Unwrap makes errors.Is(err, ErrBookingConflict) hold for ConflictError.
func (e *ConflictError) Unwrap() error {
	return ErrBookingConflict
}

// NewConflictError creates a ConflictError for a listing.
func NewConflictError(listingID string, conflicts []*Reservation) *ConflictError {
	return &ConflictError{ListingID: listingID, Conflicts: conflicts}
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidListingID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidGuestCount) ||
		errors.Is(err, ErrInvalidPaymentMethod) ||
		errors.Is(err, ErrInvalidNightlyRate) ||
		errors.Is(err, ErrInvalidTotalPrice)
}

// IsNotFoundError checks if the error is a not found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrListingNotFound) ||
		errors.Is(err, ErrReservationNotFound)
}

// IsConflictError checks if the error is a booking conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrBookingConflict)
}

// ConflictingReservations extracts the conflicting reservations from a
// booking conflict error, if present.
func ConflictingReservations(err error) []*Reservation {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Conflicts
	}
	return nil
}
