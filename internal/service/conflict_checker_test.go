package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
	"github.com/KrishnaSriTarun/wanderlust/internal/repository"
)

func TestConflictChecker_FindConflicts(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryReservationRepository()

	committed := &domain.Reservation{
		ID:            "res-001",
		ListingID:     "listing-001",
		UserID:        "user-001",
		CheckIn:       day("2025-06-01"),
		CheckOut:      day("2025-06-05"),
		GuestCount:    2,
		PaymentMethod: "card",
		TotalPrice:    400,
	}
	if err := repo.Insert(ctx, committed); err != nil {
		t.Fatalf("Insert() unexpected error = %v", err)
	}

	checker := NewConflictChecker(repo)

	tests := []struct {
		name          string
		checkIn       string
		checkOut      string
		wantConflicts int
	}{
		{"overlapping tail", "2025-06-04", "2025-06-06", 1},
		{"overlapping head", "2025-05-30", "2025-06-02", 1},
		{"contained", "2025-06-02", "2025-06-03", 1},
		{"containing", "2025-05-30", "2025-06-10", 1},
		{"back-to-back after", "2025-06-05", "2025-06-08", 0},
		{"back-to-back before", "2025-05-29", "2025-06-01", 0},
		{"disjoint", "2025-07-01", "2025-07-05", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflicts, err := checker.FindConflicts(ctx, "listing-001", day(tt.checkIn), day(tt.checkOut))
			if err != nil {
				t.Fatalf("FindConflicts() unexpected error = %v", err)
			}
			if len(conflicts) != tt.wantConflicts {
				t.Errorf("FindConflicts() = %d conflicts, want %d", len(conflicts), tt.wantConflicts)
			}

			hasConflict, err := checker.HasConflict(ctx, "listing-001", day(tt.checkIn), day(tt.checkOut))
			if err != nil {
				t.Fatalf("HasConflict() unexpected error = %v", err)
			}
			if hasConflict != (tt.wantConflicts > 0) {
				t.Errorf("HasConflict() = %v, want %v", hasConflict, tt.wantConflicts > 0)
			}
		})
	}
}

func TestConflictChecker_DegenerateRange(t *testing.T) {
	ctx := context.Background()
	checker := NewConflictChecker(repository.NewMemoryReservationRepository())

	// A degenerate range must error out, never report "free".
	if _, err := checker.FindConflicts(ctx, "listing-001", day("2025-06-05"), day("2025-06-05")); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("FindConflicts() on empty range error = %v, want ErrInvalidDateRange", err)
	}
	if _, err := checker.HasConflict(ctx, "listing-001", day("2025-06-05"), day("2025-06-01")); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("HasConflict() on inverted range error = %v, want ErrInvalidDateRange", err)
	}
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
