package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
	"github.com/KrishnaSriTarun/wanderlust/pkg/telemetry"
)

// exclusionViolation is the SQLSTATE raised by the per-listing daterange
// exclusion constraint when a concurrent insert slipped past the lock.
const exclusionViolation = "23P01"

// PostgresReservationRepository implements ReservationRepository using
// PostgreSQL with pgxpool.
type PostgresReservationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReservationRepository creates a new PostgresReservationRepository.
func NewPostgresReservationRepository(pool *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{pool: pool}
}

const reservationColumns = `
	id, listing_id, user_id, check_in, check_out,
	guest_count, payment_method, total_price, created_at
`

// FindOverlapping returns all reservations for the listing intersecting
// [checkIn, checkOut) under half-open semantics: two intervals [a,b) and
// [c,d) overlap iff a < d AND c < b.
func (r *PostgresReservationRepository) FindOverlapping(ctx context.Context, listingID string, checkIn, checkOut time.Time) ([]*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.find_overlapping")
	defer span.End()

	span.SetAttributes(attribute.String("listing_id", listingID))

	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE listing_id = $1 AND check_in < $3 AND $2 < check_out
		ORDER BY check_in
	`

	rows, err := r.pool.Query(ctx, query, listingID, checkIn, checkOut)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query overlapping reservations: %w", err)
	}
	defer rows.Close()

	reservations, err := scanReservations(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(reservations)))
	span.SetStatus(codes.Ok, "")
	return reservations, nil
}

// Insert commits a reservation. The overlap check and the insert run in
// one transaction holding a per-listing advisory lock, so concurrent
// inserts for the same listing serialize while different listings do not
// contend. The table's exclusion constraint backs this up; its violation
// is reported as the same conflict error.
func (r *PostgresReservationRepository) Insert(ctx context.Context, res *domain.Reservation) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.insert")
	defer span.End()

	span.SetAttributes(
		attribute.String("listing_id", res.ListingID),
		attribute.String("user_id", res.UserID),
	)

	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize check-and-insert per listing. hashtextextended gives a
	// stable 64-bit lock key; the lock releases at commit or rollback.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, res.ListingID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to acquire listing lock: %w", err)
	}

	// Re-check under the lock; the caller's pre-check ran unserialized.
	checkQuery := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE listing_id = $1 AND check_in < $3 AND $2 < check_out
		ORDER BY check_in
	`
	rows, err := tx.Query(ctx, checkQuery, res.ListingID, res.CheckIn, res.CheckOut)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to re-check overlapping reservations: %w", err)
	}
	conflicts, err := scanReservations(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if len(conflicts) > 0 {
		span.SetStatus(codes.Error, "booking conflict")
		return domain.NewConflictError(res.ListingID, conflicts)
	}

	insertQuery := `
		INSERT INTO reservations (
			id, listing_id, user_id, check_in, check_out,
			guest_count, payment_method, total_price, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := tx.Exec(ctx, insertQuery,
		res.ID,
		res.ListingID,
		res.UserID,
		res.CheckIn,
		res.CheckOut,
		res.GuestCount,
		res.PaymentMethod,
		res.TotalPrice,
		res.CreatedAt,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
			span.SetStatus(codes.Error, "booking conflict")
			return domain.NewConflictError(res.ListingID, nil)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
			span.SetStatus(codes.Error, "booking conflict")
			return domain.NewConflictError(res.ListingID, nil)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit reservation: %w", err)
	}

	span.SetAttributes(attribute.String("reservation_id", res.ID))
	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a reservation by its id.
func (r *PostgresReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_id", id))

	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1
	`

	res := &domain.Reservation{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&res.ID,
		&res.ListingID,
		&res.UserID,
		&res.CheckIn,
		&res.CheckOut,
		&res.GuestCount,
		&res.PaymentMethod,
		&res.TotalPrice,
		&res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrReservationNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return res, nil
}

// ListByUser retrieves a user's reservations, newest first.
func (r *PostgresReservationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.list_by_user")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list reservations by user: %w", err)
	}
	defer rows.Close()

	reservations, err := scanReservations(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(reservations)))
	span.SetStatus(codes.Ok, "")
	return reservations, nil
}

func scanReservations(rows pgx.Rows) ([]*domain.Reservation, error) {
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		res := &domain.Reservation{}
		if err := rows.Scan(
			&res.ID,
			&res.ListingID,
			&res.UserID,
			&res.CheckIn,
			&res.CheckOut,
			&res.GuestCount,
			&res.PaymentMethod,
			&res.TotalPrice,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}
	return reservations, nil
}

// Ensure PostgresReservationRepository implements ReservationRepository
var _ ReservationRepository = (*PostgresReservationRepository)(nil)
