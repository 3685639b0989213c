package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
)

// MemoryReservationRepository is an in-memory ReservationRepository for
// tests and local runs. A per-listing mutex held across the check-and-
// insert window gives the same serialization the Postgres implementation
// gets from its advisory lock; different listings never contend.
type MemoryReservationRepository struct {
	mu           sync.RWMutex
	byID         map[string]*domain.Reservation
	byListing    map[string][]*domain.Reservation
	listingLocks sync.Map // map[listingID]*sync.Mutex
}

// NewMemoryReservationRepository creates an empty in-memory repository.
func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{
		byID:      make(map[string]*domain.Reservation),
		byListing: make(map[string][]*domain.Reservation),
	}
}

func (r *MemoryReservationRepository) listingLock(listingID string) *sync.Mutex {
	lock, _ := r.listingLocks.LoadOrStore(listingID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (r *MemoryReservationRepository) overlapping(listingID string, checkIn, checkOut time.Time) []*domain.Reservation {
	var out []*domain.Reservation
	for _, res := range r.byListing[listingID] {
		if res.Overlaps(checkIn, checkOut) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out
}

// FindOverlapping returns all reservations for the listing intersecting
// [checkIn, checkOut).
func (r *MemoryReservationRepository) FindOverlapping(ctx context.Context, listingID string, checkIn, checkOut time.Time) ([]*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overlapping(listingID, checkIn, checkOut), nil
}

// Insert commits a reservation, re-checking for overlap while holding
// the listing's lock.
func (r *MemoryReservationRepository) Insert(ctx context.Context, res *domain.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := r.listingLock(res.ListingID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if conflicts := r.overlapping(res.ListingID, res.CheckIn, res.CheckOut); len(conflicts) > 0 {
		return domain.NewConflictError(res.ListingID, conflicts)
	}

	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	stored := *res
	r.byID[stored.ID] = &stored
	r.byListing[stored.ListingID] = append(r.byListing[stored.ListingID], &stored)
	return nil
}

// GetByID retrieves a reservation by id.
func (r *MemoryReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	copied := *res
	return &copied, nil
}

// ListByUser retrieves a user's reservations, newest first.
func (r *MemoryReservationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Reservation
	for _, res := range r.byID {
		if res.BelongsToUser(userID) {
			copied := *res
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Ensure MemoryReservationRepository implements ReservationRepository
var _ ReservationRepository = (*MemoryReservationRepository)(nil)
