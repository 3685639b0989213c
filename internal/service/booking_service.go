package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
	"github.com/KrishnaSriTarun/wanderlust/internal/dto"
	"github.com/KrishnaSriTarun/wanderlust/internal/pricing"
	"github.com/KrishnaSriTarun/wanderlust/internal/repository"
	"github.com/KrishnaSriTarun/wanderlust/pkg/telemetry"
)

// BookingService is the single entry point for booking a listing. It
// sequences validation, conflict detection, pricing, and the atomic
// commit. A conflict detected at commit time is reported exactly like a
// pre-check conflict; the service never retries on its own, since a
// blind retry would re-run against the same stale view of the calendar.
type BookingService interface {
	// Book reserves the listing for [check-in, check-out) on behalf of
	// userID and returns the confirmation.
	Book(ctx context.Context, userID, listingID string, req *dto.BookingRequest) (*dto.BookingConfirmation, error)

	// CheckAvailability reports whether a range is currently free.
	// Advisory only; Book re-checks under the listing lock.
	CheckAvailability(ctx context.Context, listingID string, checkIn, checkOut time.Time) (bool, error)

	// GetReservation retrieves a reservation owned by userID.
	GetReservation(ctx context.Context, reservationID, userID string) (*dto.ReservationResponse, error)

	// ListUserReservations retrieves a page of the user's reservations.
	ListUserReservations(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error)
}

type bookingService struct {
	reservations   repository.ReservationRepository
	listings       repository.ListingRepository
	checker        ConflictChecker
	eventPublisher EventPublisher
}

// NewBookingService creates a new booking service.
func NewBookingService(
	reservations repository.ReservationRepository,
	listings repository.ListingRepository,
	checker ConflictChecker,
	eventPublisher EventPublisher,
) BookingService {
	if checker == nil {
		checker = NewConflictChecker(reservations)
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		reservations:   reservations,
		listings:       listings,
		checker:        checker,
		eventPublisher: eventPublisher,
	}
}

// Book runs the booking pipeline: Received → Validated → ConflictChecked
// → Priced → Committed, or a rejection at the first failing step.
func (s *bookingService) Book(ctx context.Context, userID, listingID string, req *dto.BookingRequest) (*dto.BookingConfirmation, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.book")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		span.SetStatus(codes.Error, "unauthenticated")
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(listingID) == "" {
		span.SetStatus(codes.Error, "invalid listing_id")
		return nil, domain.ErrInvalidListingID
	}
	if req == nil {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, domain.ErrInvalidDateRange
	}

	checkIn, checkOut, err := req.Dates()
	if err != nil {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, err
	}
	if !checkIn.Before(checkOut) {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, domain.ErrInvalidDateRange
	}
	if req.NumberOfGuests <= 0 {
		span.SetStatus(codes.Error, "invalid guest count")
		return nil, domain.ErrInvalidGuestCount
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		span.SetStatus(codes.Error, "invalid payment method")
		return nil, domain.ErrInvalidPaymentMethod
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("listing_id", listingID),
		attribute.String("check_in", req.CheckInDate),
		attribute.String("check_out", req.CheckOutDate),
		attribute.Int("guests", req.NumberOfGuests),
	)

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	conflicts, err := s.checker.FindConflicts(ctx, listingID, checkIn, checkOut)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(conflicts) > 0 {
		span.SetAttributes(attribute.Int("conflict_count", len(conflicts)))
		span.SetStatus(codes.Error, "booking conflict")
		return nil, domain.NewConflictError(listingID, conflicts)
	}

	quote, err := pricing.Calculate(listing.PricePerNight, checkIn, checkOut, req.NumberOfGuests)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	res := &domain.Reservation{
		ID:            uuid.New().String(),
		ListingID:     listingID,
		UserID:        userID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		GuestCount:    req.NumberOfGuests,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		TotalPrice:    quote.Total,
		CreatedAt:     time.Now().UTC(),
	}

	// A race that slipped past the pre-check surfaces here as the same
	// conflict error. No automatic retry.
	if err := s.reservations.Insert(ctx, res); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Publishing is best effort; the commit already happened.
	_ = s.eventPublisher.PublishReservationCreated(ctx, res)

	span.AddEvent("reservation_committed", trace.WithAttributes(
		attribute.String("reservation_id", res.ID),
		attribute.String("listing_id", res.ListingID),
		attribute.Int("nights", quote.Nights),
		attribute.Float64("total_price", res.TotalPrice),
	))
	span.SetAttributes(attribute.String("reservation_id", res.ID))
	span.SetStatus(codes.Ok, "")

	return &dto.BookingConfirmation{
		ReservationID:  res.ID,
		ListingTitle:   listing.Title,
		CheckInDate:    res.CheckIn.Format(domain.DateLayout),
		CheckOutDate:   res.CheckOut.Format(domain.DateLayout),
		NumberOfGuests: res.GuestCount,
		PaymentMethod:  res.PaymentMethod,
		TotalPrice:     res.TotalPrice,
	}, nil
}

// CheckAvailability reports whether a range is currently free.
func (s *bookingService) CheckAvailability(ctx context.Context, listingID string, checkIn, checkOut time.Time) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.check_availability")
	defer span.End()

	span.SetAttributes(attribute.String("listing_id", listingID))

	if strings.TrimSpace(listingID) == "" {
		span.SetStatus(codes.Error, "invalid listing_id")
		return false, domain.ErrInvalidListingID
	}
	if !checkIn.Before(checkOut) {
		span.SetStatus(codes.Error, "invalid date range")
		return false, domain.ErrInvalidDateRange
	}

	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	hasConflict, err := s.checker.HasConflict(ctx, listingID, checkIn, checkOut)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	span.SetAttributes(attribute.Bool("available", !hasConflict))
	span.SetStatus(codes.Ok, "")
	return !hasConflict, nil
}

// GetReservation retrieves a reservation owned by userID.
func (s *bookingService) GetReservation(ctx context.Context, reservationID, userID string) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_reservation")
	defer span.End()

	span.SetAttributes(
		attribute.String("reservation_id", reservationID),
		attribute.String("user_id", userID),
	)

	if strings.TrimSpace(userID) == "" {
		span.SetStatus(codes.Error, "unauthenticated")
		return nil, domain.ErrUnauthenticated
	}

	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Reservations are private to the guest who made them.
	if !res.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "not found")
		return nil, domain.ErrReservationNotFound
	}

	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(res), nil
}

// ListUserReservations retrieves a page of the user's reservations.
func (s *bookingService) ListUserReservations(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_user_reservations")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	if strings.TrimSpace(userID) == "" {
		span.SetStatus(codes.Error, "unauthenticated")
		return nil, domain.ErrUnauthenticated
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	reservations, err := s.reservations.ListByUser(ctx, userID, pageSize, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(reservations)))
	span.SetStatus(codes.Ok, "")
	return &dto.PaginatedResponse{
		Data:     dto.FromDomainList(reservations),
		Page:     page,
		PageSize: pageSize,
	}, nil
}
