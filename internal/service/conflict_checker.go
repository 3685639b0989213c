package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
	"github.com/KrishnaSriTarun/wanderlust/internal/repository"
	"github.com/KrishnaSriTarun/wanderlust/pkg/telemetry"
)

// ConflictChecker decides whether a candidate date range collides with
// committed reservations. Pure decision function over the store; no side
// effects.
type ConflictChecker interface {
	// HasConflict reports whether any committed reservation overlaps
	// [checkIn, checkOut) on the listing.
	HasConflict(ctx context.Context, listingID string, checkIn, checkOut time.Time) (bool, error)

	// FindConflicts returns the overlapping reservations themselves.
	FindConflicts(ctx context.Context, listingID string, checkIn, checkOut time.Time) ([]*domain.Reservation, error)
}

type conflictChecker struct {
	reservations repository.ReservationRepository
}

// NewConflictChecker creates a ConflictChecker over the given store.
func NewConflictChecker(reservations repository.ReservationRepository) ConflictChecker {
	return &conflictChecker{reservations: reservations}
}

func (c *conflictChecker) HasConflict(ctx context.Context, listingID string, checkIn, checkOut time.Time) (bool, error) {
	conflicts, err := c.FindConflicts(ctx, listingID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

func (c *conflictChecker) FindConflicts(ctx context.Context, listingID string, checkIn, checkOut time.Time) ([]*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.conflict.find")
	defer span.End()

	span.SetAttributes(attribute.String("listing_id", listingID))

	// Degenerate ranges are caught by input validation before this runs.
	// If one reaches here anyway it is treated as a conflict, never as
	// "range is free".
	if !checkIn.Before(checkOut) {
		span.SetStatus(codes.Error, "degenerate range")
		return nil, domain.ErrInvalidDateRange
	}

	conflicts, err := c.reservations.FindOverlapping(ctx, listingID, checkIn, checkOut)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("conflict_count", len(conflicts)))
	span.SetStatus(codes.Ok, "")
	return conflicts, nil
}
