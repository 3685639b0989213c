package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
	"github.com/KrishnaSriTarun/wanderlust/pkg/telemetry"
)

// PostgresListingRepository implements ListingRepository against the
// listings table. Read-only: the reservation core never writes listings.
type PostgresListingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresListingRepository creates a new PostgresListingRepository.
func NewPostgresListingRepository(pool *pgxpool.Pool) *PostgresListingRepository {
	return &PostgresListingRepository{pool: pool}
}

// GetByID retrieves a listing's title and nightly rate.
func (r *PostgresListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("listing_id", id))

	query := `SELECT id, title, price_per_night FROM listings WHERE id = $1`

	listing := &domain.Listing{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&listing.ID, &listing.Title, &listing.PricePerNight)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrListingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return listing, nil
}

// Ensure PostgresListingRepository implements ListingRepository
var _ ListingRepository = (*PostgresListingRepository)(nil)
