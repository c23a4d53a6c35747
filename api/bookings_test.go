package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolesov/flightbooking/internal/domain"
	"github.com/akolesov/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmPayment(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) UpdateSeats(ctx context.Context, bookingID int64, seats []string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) RequestRefund(ctx context.Context, bookingID int64) (*domain.Booking, []string, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Get(1).([]string), args.Error(2)
}

func (m *MockBookingUseCase) DeleteBooking(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) OccupiedSeats(ctx context.Context, flightID, excludeBookingID int64) ([]string, error) {
	args := m.Called(ctx, flightID, excludeBookingID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBookingUseCase) SendPaymentReminders(ctx context.Context, olderThan time.Duration) ([]domain.Booking, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

var _ booking.BookingUseCase = (*MockBookingUseCase)(nil)

func newBookingRouter(service booking.BookingUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewBookingHandler(service).Register(router.Group("/bookings"))
	return router
}

func TestBookingHandler_Create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	created := &domain.Booking{
		ID:             9,
		FlightID:       4,
		PassengerID:    7,
		SeatNumbers:    []string{"12A", "12B"},
		TotalFareCents: 39998,
		PaymentStatus:  domain.PaymentStatusPending,
	}
	mockService.On("CreateBooking", mock.Anything, booking.CreateBookingInput{
		FlightID:  4,
		FirstName: "Aoife",
		LastName:  "Byrne",
		Email:     "aoife@example.com",
		Seats:     []string{"12A", "12B"},
	}).Return(created, nil).Once()

	body, _ := json.Marshal(map[string]any{
		"flight_id":  4,
		"first_name": "Aoife",
		"last_name":  "Byrne",
		"email":      "aoife@example.com",
		"seats":      []string{"12A", "12B"},
	})
	req := httptest.NewRequest(http.MethodPost, "/bookings/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(9), resp.ID)
	assert.Equal(t, "PENDING", resp.PaymentStatus)
	assert.Equal(t, int64(39998), resp.TotalFareCents)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_Create_SeatConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, domain.NewValidationError("seat already booked", "12A")).Once()

	body, _ := json.Marshal(map[string]any{
		"flight_id": 4,
		"email":     "aoife@example.com",
		"seats":     []string{"12A"},
	})
	req := httptest.NewRequest(http.MethodPost, "/bookings/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "seat already booked", resp["error"])
	assert.Equal(t, []any{"12A"}, resp["conflicting_seats"])
}

func TestBookingHandler_ConfirmPayment(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	original := int64(39998)
	confirmed := &domain.Booking{
		ID:                9,
		FlightID:          4,
		SeatNumbers:       []string{"12A", "12B"},
		TotalFareCents:    39998,
		PaymentStatus:     domain.PaymentStatusConfirmed,
		PNRCodes:          []string{"AB123-12A-9F00AB", "AB123-12B-1C22DE"},
		OriginalFareCents: &original,
	}
	mockService.On("ConfirmPayment", mock.Anything, int64(9)).Return(confirmed, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/bookings/9/payment", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIRMED", resp.PaymentStatus)
	assert.Len(t, resp.PNRCodes, 2)
}

func TestBookingHandler_UpdateSeats_BadID(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	req := httptest.NewRequest(http.MethodPut, "/bookings/abc/seats", bytes.NewReader([]byte(`{"seats":["1A"]}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "UpdateSeats")
}

func TestBookingHandler_RequestRefund(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	amount := int64(19999)
	refunded := &domain.Booking{
		ID:                9,
		PaymentStatus:     domain.PaymentStatusRefunded,
		RefundAmountCents: &amount,
		RefundedSeats:     []string{"12B"},
	}
	mockService.On("RequestRefund", mock.Anything, int64(9)).Return(refunded, []string{"12B"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/bookings/9/refund", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp refundResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "REFUNDED", resp.Booking.PaymentStatus)
	assert.Equal(t, []string{"12B"}, resp.RefundedSeats)
}

func TestBookingHandler_RequestRefund_Ineligible(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("RequestRefund", mock.Anything, int64(9)).
		Return(nil, nil, domain.ErrRefundIneligible).Once()

	req := httptest.NewRequest(http.MethodPost, "/bookings/9/refund", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "warning")
}

func TestBookingHandler_Get_NotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("GetBooking", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/bookings/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_Delete(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("DeleteBooking", mock.Anything, int64(9)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/bookings/9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}
