package repository

import (
	"context"
	"sync"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
)

// MemoryListingRepository is an in-memory ListingRepository for tests
// and local runs.
type MemoryListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing
}

// NewMemoryListingRepository creates an empty in-memory listing repository.
func NewMemoryListingRepository() *MemoryListingRepository {
	return &MemoryListingRepository{
		listings: make(map[string]*domain.Listing),
	}
}

// Put stores or replaces a listing.
func (r *MemoryListingRepository) Put(listing *domain.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[listing.ID] = listing
}

// GetByID retrieves a listing by ID.
func (r *MemoryListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	copy := *listing
	return &copy, nil
}

var _ ListingRepository = (*MemoryListingRepository)(nil)
