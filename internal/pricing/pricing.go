// Package pricing computes reservation totals from a listing's nightly
// rate, the requested date range, and the guest count.
package pricing

import (
	"math"
	"time"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
)

// Quote is the result of a price computation. The total is derived once
// at booking time and stored on the reservation; it is never recomputed.
type Quote struct {
	Nights      int     `json:"nights"`
	NightlyRate float64 `json:"nightly_rate"`
	GuestCount  int     `json:"guest_count"`
	Total       float64 `json:"total"`
}

// Nights returns the number of billable nights between check-in and
// check-out. Partial days round up to a full night; an exact multiple of
// 24 hours bills exactly that many nights.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// Calculate computes the total price: nightlyRate * nights * guestCount.
// No taxes, fees, or currency rounding.
func Calculate(nightlyRate float64, checkIn, checkOut time.Time, guestCount int) (*Quote, error) {
	if nightlyRate < 0 {
		return nil, domain.ErrInvalidNightlyRate
	}
	if guestCount <= 0 {
		return nil, domain.ErrInvalidGuestCount
	}

	nights := Nights(checkIn, checkOut)
	if nights <= 0 {
		return nil, domain.ErrInvalidDateRange
	}

	return &Quote{
		Nights:      nights,
		NightlyRate: nightlyRate,
		GuestCount:  guestCount,
		Total:       nightlyRate * float64(nights) * float64(guestCount),
	}, nil
}
