package repository

import (
	"context"
	"time"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
)

// ReservationRepository defines durable storage for committed
// reservations. Implementations must make Insert atomic with respect to
// FindOverlapping for the same listing: two concurrent inserts for
// overlapping ranges on one listing cannot both succeed.
type ReservationRepository interface {
	// FindOverlapping returns all reservations for the listing whose
	// [check_in, check_out) interval intersects [checkIn, checkOut).
	// An empty result means the range is free.
	FindOverlapping(ctx context.Context, listingID string, checkIn, checkOut time.Time) ([]*domain.Reservation, error)

	// Insert commits a reservation, assigning the id when empty. Returns
	// a *domain.ConflictError if a concurrent insert won the range first.
	Insert(ctx context.Context, res *domain.Reservation) error

	// GetByID retrieves a reservation by id. Returns
	// domain.ErrReservationNotFound when absent.
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)

	// ListByUser retrieves a user's reservations, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Reservation, error)
}

// ListingRepository is the read-only listing reference this core depends
// on. Listings are owned by the listing service.
type ListingRepository interface {
	// GetByID returns the listing or domain.ErrListingNotFound.
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
}
