package dto

import (
	"time"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
)

// BookingRequest is the request body for booking a listing. The listing
// id comes from the URL path, the user id from the authenticated context.
type BookingRequest struct {
	CheckInDate    string `json:"check_in_date" binding:"required"`
	CheckOutDate   string `json:"check_out_date" binding:"required"`
	NumberOfGuests int    `json:"number_of_guests" binding:"required"`
	PaymentMethod  string `json:"payment_method" binding:"required"`
}

// Dates parses the request's calendar dates. Returns
// domain.ErrInvalidDateRange when either date is malformed.
func (r *BookingRequest) Dates() (checkIn, checkOut time.Time, err error) {
	checkIn, err = domain.ParseDate(r.CheckInDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	checkOut, err = domain.ParseDate(r.CheckOutDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return checkIn, checkOut, nil
}

// BookingConfirmation is returned after a successful commit.
type BookingConfirmation struct {
	ReservationID  string  `json:"reservation_id"`
	ListingTitle   string  `json:"listing_title"`
	CheckInDate    string  `json:"check_in_date"`
	CheckOutDate   string  `json:"check_out_date"`
	NumberOfGuests int     `json:"number_of_guests"`
	PaymentMethod  string  `json:"payment_method"`
	TotalPrice     float64 `json:"total_price"`
}

// ReservationResponse is the read model for a committed reservation.
type ReservationResponse struct {
	ID             string    `json:"id"`
	ListingID      string    `json:"listing_id"`
	UserID         string    `json:"user_id"`
	CheckInDate    string    `json:"check_in_date"`
	CheckOutDate   string    `json:"check_out_date"`
	NumberOfGuests int       `json:"number_of_guests"`
	PaymentMethod  string    `json:"payment_method"`
	TotalPrice     float64   `json:"total_price"`
	CreatedAt      time.Time `json:"created_at"`
}

// FromDomain converts a domain reservation to its response shape.
func FromDomain(r *domain.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:             r.ID,
		ListingID:      r.ListingID,
		UserID:         r.UserID,
		CheckInDate:    r.CheckIn.Format(domain.DateLayout),
		CheckOutDate:   r.CheckOut.Format(domain.DateLayout),
		NumberOfGuests: r.GuestCount,
		PaymentMethod:  r.PaymentMethod,
		TotalPrice:     r.TotalPrice,
		CreatedAt:      r.CreatedAt,
	}
}

// FromDomainList converts a slice of domain reservations.
func FromDomainList(rs []*domain.Reservation) []*ReservationResponse {
	out := make([]*ReservationResponse, len(rs))
	for i, r := range rs {
		out[i] = FromDomain(r)
	}
	return out
}

// AvailabilityResponse reports whether a date range is currently free.
// Advisory only; the commit path re-checks under the listing lock.
type AvailabilityResponse struct {
	ListingID    string `json:"listing_id"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Available    bool   `json:"available"`
}

// ErrorResponse is the error body returned by handlers.
type ErrorResponse struct {
	Error                   string                 `json:"error"`
	Code                    string                 `json:"code"`
	Message                 string                 `json:"message,omitempty"`
	ConflictingReservations []*ReservationResponse `json:"conflicting_reservations,omitempty"`
}

// PaginatedResponse wraps a page of results.
type PaginatedResponse struct {
	Data     interface{} `json:"data"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
