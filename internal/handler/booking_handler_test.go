package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrishnaSriTarun/wanderlust/internal/domain"
	"github.com/KrishnaSriTarun/wanderlust/internal/dto"
)

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	BookFunc                 func(ctx context.Context, userID, listingID string, req *dto.BookingRequest) (*dto.BookingConfirmation, error)
	CheckAvailabilityFunc    func(ctx context.Context, listingID string, checkIn, checkOut time.Time) (bool, error)
	GetReservationFunc       func(ctx context.Context, reservationID, userID string) (*dto.ReservationResponse, error)
	ListUserReservationsFunc func(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error)
}

func (m *MockBookingService) Book(ctx context.Context, userID, listingID string, req *dto.BookingRequest) (*dto.BookingConfirmation, error) {
	if m.BookFunc != nil {
		return m.BookFunc(ctx, userID, listingID, req)
	}
	return nil, domain.ErrInvalidDateRange
}

func (m *MockBookingService) CheckAvailability(ctx context.Context, listingID string, checkIn, checkOut time.Time) (bool, error) {
	if m.CheckAvailabilityFunc != nil {
		return m.CheckAvailabilityFunc(ctx, listingID, checkIn, checkOut)
	}
	return true, nil
}

func (m *MockBookingService) GetReservation(ctx context.Context, reservationID, userID string) (*dto.ReservationResponse, error) {
	if m.GetReservationFunc != nil {
		return m.GetReservationFunc(ctx, reservationID, userID)
	}
	return nil, domain.ErrReservationNotFound
}

func (m *MockBookingService) ListUserReservations(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	if m.ListUserReservationsFunc != nil {
		return m.ListUserReservationsFunc(ctx, userID, page, pageSize)
	}
	return &dto.PaginatedResponse{Page: page, PageSize: pageSize}, nil
}

func setupRouter(svc *MockBookingService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			c.Next()
		})
	}

	h := NewBookingHandler(svc)
	router.POST("/listings/:id/book", h.Book)
	router.GET("/listings/:id/availability", h.CheckAvailability)
	router.GET("/reservations", h.ListReservations)
	router.GET("/reservations/:id", h.GetReservation)
	return router
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBookingHandler_Book(t *testing.T) {
	validBody := &dto.BookingRequest{
		CheckInDate:    "2025-06-01",
		CheckOutDate:   "2025-06-04",
		NumberOfGuests: 2,
		PaymentMethod:  "card",
	}

	t.Run("successful booking returns 201", func(t *testing.T) {
		svc := &MockBookingService{
			BookFunc: func(ctx context.Context, userID, listingID string, req *dto.BookingRequest) (*dto.BookingConfirmation, error) {
				assert.Equal(t, "user-001", userID)
				assert.Equal(t, "listing-001", listingID)
				return &dto.BookingConfirmation{
					ReservationID:  "res-001",
					ListingTitle:   "Seaside Cottage",
					CheckInDate:    req.CheckInDate,
					CheckOutDate:   req.CheckOutDate,
					NumberOfGuests: req.NumberOfGuests,
					PaymentMethod:  req.PaymentMethod,
					TotalPrice:     600,
				}, nil
			},
		}
		router := setupRouter(svc, "user-001")

		w := performRequest(router, http.MethodPost, "/listings/listing-001/book", validBody)

		require.Equal(t, http.StatusCreated, w.Code)
		var conf dto.BookingConfirmation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conf))
		assert.Equal(t, "res-001", conf.ReservationID)
		assert.Equal(t, "Seaside Cottage", conf.ListingTitle)
		assert.Equal(t, float64(600), conf.TotalPrice)
	})

	t.Run("unauthenticated returns 401", func(t *testing.T) {
		router := setupRouter(&MockBookingService{}, "")

		w := performRequest(router, http.MethodPost, "/listings/listing-001/book", validBody)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "UNAUTHENTICATED", resp.Code)
	})

	t.Run("missing body fields return 400", func(t *testing.T) {
		router := setupRouter(&MockBookingService{}, "user-001")

		w := performRequest(router, http.MethodPost, "/listings/listing-001/book", map[string]interface{}{
			"check_in_date": "2025-06-01",
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	})

	t.Run("validation error from service returns 400", func(t *testing.T) {
		svc := &MockBookingService{
			BookFunc: func(ctx context.Context, userID, listingID string, req *dto.BookingRequest) (*dto.BookingConfirmation, error) {
				return nil, domain.ErrInvalidGuestCount
			},
		}
		router := setupRouter(svc, "user-001")

		w := performRequest(router, http.MethodPost, "/listings/listing-001/book", validBody)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("conflict returns 409 with conflicting reservations", func(t *testing.T) {
		svc := &MockBookingService{
			BookFunc: func(ctx context.Context, userID, listingID string, req *dto.BookingRequest) (*dto.BookingConfirmation, error) {
				return nil, domain.NewConflictError(listingID, []*domain.Reservation{
					{
						ID:        "res-taken",
						ListingID: listingID,
						UserID:    "someone-else",
						CheckIn:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
						CheckOut:  time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
					},
				})
			},
		}
		router := setupRouter(svc, "user-001")

		w := performRequest(router, http.MethodPost, "/listings/listing-001/book", validBody)

		require.Equal(t, http.StatusConflict, w.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "BOOKING_CONFLICT", resp.Code)
		require.Len(t, resp.ConflictingReservations, 1)
		assert.Equal(t, "res-taken", resp.ConflictingReservations[0].ID)
		assert.Equal(t, "2025-06-01", resp.ConflictingReservations[0].CheckInDate)
	})

	t.Run("listing not found returns 404", func(t *testing.T) {
		svc := &MockBookingService{
			BookFunc: func(ctx context.Context, userID, listingID string, req *dto.BookingRequest) (*dto.BookingConfirmation, error) {
				return nil, domain.ErrListingNotFound
			},
		}
		router := setupRouter(svc, "user-001")

		w := performRequest(router, http.MethodPost, "/listings/missing/book", validBody)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBookingHandler_CheckAvailability(t *testing.T) {
	t.Run("available range returns 200", func(t *testing.T) {
		svc := &MockBookingService{
			CheckAvailabilityFunc: func(ctx context.Context, listingID string, checkIn, checkOut time.Time) (bool, error) {
				return true, nil
			},
		}
		router := setupRouter(svc, "")

		w := performRequest(router, http.MethodGet, "/listings/listing-001/availability?check_in=2025-06-01&check_out=2025-06-04", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.AvailabilityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Available)
		assert.Equal(t, "listing-001", resp.ListingID)
	})

	t.Run("booked range reports unavailable", func(t *testing.T) {
		svc := &MockBookingService{
			CheckAvailabilityFunc: func(ctx context.Context, listingID string, checkIn, checkOut time.Time) (bool, error) {
				return false, nil
			},
		}
		router := setupRouter(svc, "")

		w := performRequest(router, http.MethodGet, "/listings/listing-001/availability?check_in=2025-06-01&check_out=2025-06-04", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.AvailabilityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Available)
	})

	t.Run("malformed dates return 400", func(t *testing.T) {
		router := setupRouter(&MockBookingService{}, "")

		w := performRequest(router, http.MethodGet, "/listings/listing-001/availability?check_in=bogus&check_out=2025-06-04", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = performRequest(router, http.MethodGet, "/listings/listing-001/availability?check_in=2025-06-01", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookingHandler_GetReservation(t *testing.T) {
	t.Run("owned reservation returns 200", func(t *testing.T) {
		svc := &MockBookingService{
			GetReservationFunc: func(ctx context.Context, reservationID, userID string) (*dto.ReservationResponse, error) {
				return &dto.ReservationResponse{ID: reservationID, UserID: userID}, nil
			},
		}
		router := setupRouter(svc, "user-001")

		w := performRequest(router, http.MethodGet, "/reservations/res-001", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ReservationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "res-001", resp.ID)
	})

	t.Run("missing reservation returns 404", func(t *testing.T) {
		router := setupRouter(&MockBookingService{}, "user-001")

		w := performRequest(router, http.MethodGet, "/reservations/missing", nil)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unauthenticated returns 401", func(t *testing.T) {
		router := setupRouter(&MockBookingService{}, "")

		w := performRequest(router, http.MethodGet, "/reservations/res-001", nil)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBookingHandler_ListReservations(t *testing.T) {
	t.Run("passes paging params through", func(t *testing.T) {
		svc := &MockBookingService{
			ListUserReservationsFunc: func(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error) {
				assert.Equal(t, "user-001", userID)
				assert.Equal(t, 2, page)
				assert.Equal(t, 5, pageSize)
				return &dto.PaginatedResponse{Page: page, PageSize: pageSize}, nil
			},
		}
		router := setupRouter(svc, "user-001")

		w := performRequest(router, http.MethodGet, "/reservations?page=2&page_size=5", nil)

		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unauthenticated returns 401", func(t *testing.T) {
		router := setupRouter(&MockBookingService{}, "")

		w := performRequest(router, http.MethodGet, "/reservations", nil)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
