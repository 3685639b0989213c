package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newReservation(id, listingID, userID, checkIn, checkOut string) *domain.Reservation {
	return &domain.Reservation{
		ID:            id,
		ListingID:     listingID,
		UserID:        userID,
		CheckIn:       day(checkIn),
		CheckOut:      day(checkOut),
		GuestCount:    2,
		PaymentMethod: "card",
		TotalPrice:    200,
	}
}

func TestMemoryReservationRepository_InsertAndGet(t *testing.T) {
	repo := NewMemoryReservationRepository()
	ctx := context.Background()

	res := newReservation("res-001", "listing-001", "user-001", "2025-06-01", "2025-06-05")
	if err := repo.Insert(ctx, res); err != nil {
		t.Fatalf("Insert() unexpected error = %v", err)
	}

	got, err := repo.GetByID(ctx, "res-001")
	if err != nil {
		t.Fatalf("GetByID() unexpected error = %v", err)
	}
	if got.ListingID != "listing-001" || !got.CheckIn.Equal(day("2025-06-01")) {
		t.Errorf("GetByID() = %+v, want the inserted reservation", got)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrReservationNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrReservationNotFound", err)
	}
}

func TestMemoryReservationRepository_InsertConflict(t *testing.T) {
	repo := NewMemoryReservationRepository()
	ctx := context.Background()

	first := newReservation("res-001", "listing-001", "user-001", "2025-06-01", "2025-06-05")
	if err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("Insert() unexpected error = %v", err)
	}

	overlapping := newReservation("res-002", "listing-001", "user-002", "2025-06-04", "2025-06-06")
	err := repo.Insert(ctx, overlapping)
	if !domain.IsConflictError(err) {
		t.Fatalf("Insert() error = %v, want conflict", err)
	}
	if conflicts := domain.ConflictingReservations(err); len(conflicts) != 1 || conflicts[0].ID != "res-001" {
		t.Errorf("conflict should carry the committed reservation, got %v", conflicts)
	}

	// The same range on another listing is unaffected.
	other := newReservation("res-003", "listing-002", "user-002", "2025-06-04", "2025-06-06")
	if err := repo.Insert(ctx, other); err != nil {
		t.Errorf("Insert() on another listing unexpected error = %v", err)
	}

	// Back-to-back with the committed stay is allowed.
	backToBack := newReservation("res-004", "listing-001", "user-002", "2025-06-05", "2025-06-08")
	if err := repo.Insert(ctx, backToBack); err != nil {
		t.Errorf("Insert() back-to-back unexpected error = %v", err)
	}
}

func TestMemoryReservationRepository_FindOverlapping(t *testing.T) {
	repo := NewMemoryReservationRepository()
	ctx := context.Background()

	seed := []*domain.Reservation{
		newReservation("res-001", "listing-001", "user-001", "2025-06-01", "2025-06-05"),
		newReservation("res-002", "listing-001", "user-002", "2025-06-10", "2025-06-12"),
		newReservation("res-003", "listing-002", "user-003", "2025-06-01", "2025-06-05"),
	}
	for _, res := range seed {
		if err := repo.Insert(ctx, res); err != nil {
			t.Fatalf("Insert(%s) unexpected error = %v", res.ID, err)
		}
	}

	got, err := repo.FindOverlapping(ctx, "listing-001", day("2025-06-04"), day("2025-06-11"))
	if err != nil {
		t.Fatalf("FindOverlapping() unexpected error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindOverlapping() returned %d reservations, want 2", len(got))
	}
	if got[0].ID != "res-001" || got[1].ID != "res-002" {
		t.Errorf("FindOverlapping() order = [%s %s], want check-in order", got[0].ID, got[1].ID)
	}

	got, err = repo.FindOverlapping(ctx, "listing-001", day("2025-06-05"), day("2025-06-10"))
	if err != nil {
		t.Fatalf("FindOverlapping() unexpected error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("gap between stays should be free, got %d conflicts", len(got))
	}
}

func TestMemoryReservationRepository_ListByUser(t *testing.T) {
	repo := NewMemoryReservationRepository()
	ctx := context.Background()

	now := time.Now().UTC()
	for i, id := range []string{"res-001", "res-002", "res-003"} {
		res := newReservation(id, "listing-00"+id[len(id)-1:], "user-001", "2025-06-01", "2025-06-05")
		res.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		if err := repo.Insert(ctx, res); err != nil {
			t.Fatalf("Insert(%s) unexpected error = %v", id, err)
		}
	}

	got, err := repo.ListByUser(ctx, "user-001", 2, 0)
	if err != nil {
		t.Fatalf("ListByUser() unexpected error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByUser() returned %d reservations, want 2", len(got))
	}
	if got[0].ID != "res-003" {
		t.Errorf("ListByUser() first = %s, want newest first", got[0].ID)
	}

	got, err = repo.ListByUser(ctx, "user-001", 2, 2)
	if err != nil {
		t.Fatalf("ListByUser() unexpected error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "res-001" {
		t.Errorf("ListByUser() second page = %v, want [res-001]", got)
	}

	got, err = repo.ListByUser(ctx, "someone-else", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser() unexpected error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListByUser() for unknown user returned %d reservations, want 0", len(got))
	}
}

func TestMemoryReservationRepository_ConcurrentInsertSameRange(t *testing.T) {
	repo := NewMemoryReservationRepository()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	errs := make([]error, workers)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			res := newReservation("", "listing-001", "user-001", "2025-06-01", "2025-06-05")
			errs[i] = repo.Insert(ctx, res)
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case domain.IsConflictError(err):
		default:
			t.Fatalf("Insert() unexpected error = %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("%d concurrent inserts for the same range committed, want exactly 1", successes)
	}

	committed, err := repo.FindOverlapping(ctx, "listing-001", day("2025-06-01"), day("2025-06-05"))
	if err != nil {
		t.Fatalf("FindOverlapping() unexpected error = %v", err)
	}
	if len(committed) != 1 {
		t.Fatalf("store holds %d reservations for the range, want 1", len(committed))
	}
}
