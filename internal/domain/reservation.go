package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire format for check-in/check-out dates.
// Time-of-day is ignored for overlap math.
const DateLayout = "2006-01-02"

// Reservation represents a committed booking of a listing for a date range.
// Reservations are immutable after creation.
type Reservation struct {
	ID            string    `json:"id"`
	ListingID     string    `json:"listing_id"`
	UserID        string    `json:"user_id"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	GuestCount    int       `json:"guest_count"`
	PaymentMethod string    `json:"payment_method"`
	TotalPrice    float64   `json:"total_price"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate validates all reservation fields.
func (r *Reservation) Validate() error {
	if err := r.ValidateListingID(); err != nil {
		return err
	}
	if err := r.ValidateUserID(); err != nil {
		return err
	}
	if err := r.ValidateDates(); err != nil {
		return err
	}
	if err := r.ValidateGuestCount(); err != nil {
		return err
	}
	if err := r.ValidatePaymentMethod(); err != nil {
		return err
	}
	if err := r.ValidateTotalPrice(); err != nil {
		return err
	}
	return nil
}

// ValidateListingID validates the listing reference.
func (r *Reservation) ValidateListingID() error {
	if strings.TrimSpace(r.ListingID) == "" {
		return ErrInvalidListingID
	}
	return nil
}

// ValidateUserID validates the booking guest reference.
func (r *Reservation) ValidateUserID() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrInvalidUserID
	}
	return nil
}

// ValidateDates enforces the check_in < check_out invariant.
func (r *Reservation) ValidateDates() error {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() || !r.CheckIn.Before(r.CheckOut) {
		return ErrInvalidDateRange
	}
	return nil
}

// ValidateGuestCount validates the guest count.
func (r *Reservation) ValidateGuestCount() error {
	if r.GuestCount <= 0 {
		return ErrInvalidGuestCount
	}
	return nil
}

// ValidatePaymentMethod validates presence of the payment method tag.
// The tag is opaque; no further validation.
func (r *Reservation) ValidatePaymentMethod() error {
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return ErrInvalidPaymentMethod
	}
	return nil
}

// ValidateTotalPrice validates the stored total.
func (r *Reservation) ValidateTotalPrice() error {
	if r.TotalPrice < 0 {
		return ErrInvalidTotalPrice
	}
	return nil
}

// Overlaps reports whether the reservation's [check_in, check_out)
// interval intersects [checkIn, checkOut). Half-open on both sides, so
// back-to-back stays sharing a boundary date do not overlap.
func (r *Reservation) Overlaps(checkIn, checkOut time.Time) bool {
	return r.CheckIn.Before(checkOut) && checkIn.Before(r.CheckOut)
}

// BelongsToUser checks if the reservation belongs to the specified user.
func (r *Reservation) BelongsToUser(userID string) bool {
	return r.UserID == userID
}

// ParseDate parses a calendar date in the wire format.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDateRange
	}
	return t, nil
}
