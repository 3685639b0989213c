package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
	"github.com/KrishnaSriTarun/wanderlust/internal/dto"
	"github.com/KrishnaSriTarun/wanderlust/internal/service"
	"github.com/KrishnaSriTarun/wanderlust/pkg/telemetry"
)

// BookingHandler handles booking HTTP requests.
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Book handles POST /listings/:id/book.
func (h *BookingHandler) Book(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.book")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthenticated")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "you must be logged in to book a listing",
			Code:  "UNAUTHENTICATED",
		})
		return
	}

	listingID := c.Param("id")

	var req dto.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request",
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		})
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("listing_id", listingID),
	)

	confirmation, err := h.bookingService.Book(ctx, userID, listingID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("reservation_id", confirmation.ReservationID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, confirmation)
}

// CheckAvailability handles GET /listings/:id/availability.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.check_availability")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	listingID := c.Param("id")
	checkInRaw := c.Query("check_in")
	checkOutRaw := c.Query("check_out")

	checkIn, err := domain.ParseDate(checkInRaw)
	if err != nil {
		span.SetStatus(codes.Error, "invalid check_in")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "check_in must be a valid date (YYYY-MM-DD)",
			Code:  "VALIDATION_ERROR",
		})
		return
	}
	checkOut, err := domain.ParseDate(checkOutRaw)
	if err != nil {
		span.SetStatus(codes.Error, "invalid check_out")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "check_out must be a valid date (YYYY-MM-DD)",
			Code:  "VALIDATION_ERROR",
		})
		return
	}

	available, err := h.bookingService.CheckAvailability(ctx, listingID, checkIn, checkOut)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Bool("available", available))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.AvailabilityResponse{
		ListingID:    listingID,
		CheckInDate:  checkIn.Format(domain.DateLayout),
		CheckOutDate: checkOut.Format(domain.DateLayout),
		Available:    available,
	})
}

// GetReservation handles GET /reservations/:id.
func (h *BookingHandler) GetReservation(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get_reservation")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthenticated")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "authentication required",
			Code:  "UNAUTHENTICATED",
		})
		return
	}

	reservationID := c.Param("id")
	res, err := h.bookingService.GetReservation(ctx, reservationID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, res)
}

// ListReservations handles GET /reservations.
func (h *BookingHandler) ListReservations(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.list_reservations")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthenticated")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "authentication required",
			Code:  "UNAUTHENTICATED",
		})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.bookingService.ListUserReservations(ctx, userID, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// handleError maps domain errors to HTTP responses. Conflicts are a
// user-facing rejection with the conflicting reservations attached,
// never a server error.
func (h *BookingHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "UNAUTHENTICATED",
		})
	case domain.IsConflictError(err):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:                   "this listing is already booked for the selected dates, please choose other dates",
			Code:                    "BOOKING_CONFLICT",
			ConflictingReservations: dto.FromDomainList(domain.ConflictingReservations(err)),
		})
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}
