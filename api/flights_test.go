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
	"github.com/akolesov/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, origin, destination, departureDate string) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination, departureDate)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) SearchRoundTrip(ctx context.Context, origin, destination, departureDate, returnDate string) ([]domain.Flight, []domain.Flight, error) {
	args := m.Called(ctx, origin, destination, departureDate, returnDate)
	return args.Get(0).([]domain.Flight), args.Get(1).([]domain.Flight), args.Error(2)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.CreateFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockSeatInventory struct {
	mock.Mock
}

func (m *MockSeatInventory) OccupiedSeats(ctx context.Context, flightID, excludeBookingID int64) ([]string, error) {
	args := m.Called(ctx, flightID, excludeBookingID)
	return args.Get(0).([]string), args.Error(1)
}

func newFlightRouter(service flights.FlightUseCase, inventory SeatInventory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewFlightHandler(service, inventory).Register(router.Group("/flights"))
	return router
}

func TestFlightHandler_List(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService, &MockSeatInventory{})

	mockService.On("List", mock.Anything).Return([]domain.Flight{
		{ID: 1, FlightNumber: "AB123", Origin: "Dublin", Destination: "London"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/flights/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []domain.Flight
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, "AB123", resp[0].FlightNumber)
}

func TestFlightHandler_Search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService, &MockSeatInventory{})

	mockService.On("Search", mock.Anything, "Dublin", "London", "2026-09-01").
		Return([]domain.Flight{{ID: 1}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/flights/search?origin=Dublin&destination=London&date=2026-09-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_Search_RoundTrip(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService, &MockSeatInventory{})

	mockService.On("SearchRoundTrip", mock.Anything, "Dublin", "London", "2026-09-01", "2026-09-08").
		Return([]domain.Flight{{ID: 1}}, []domain.Flight{{ID: 2}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet,
		"/flights/search?origin=Dublin&destination=London&date=2026-09-01&trip_type=round&return_date=2026-09-08", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp roundTripResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Flights, 1)
	assert.Len(t, resp.ReturnFlights, 1)
	mockService.AssertNotCalled(t, "Search")
}

func TestFlightHandler_Get_NotFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService, &MockSeatInventory{})

	mockService.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/flights/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlightHandler_SeatMap(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockInventory := &MockSeatInventory{}
	router := newFlightRouter(mockService, mockInventory)

	mockService.On("GetByID", mock.Anything, int64(4)).Return(&domain.Flight{ID: 4}, nil).Once()
	mockInventory.On("OccupiedSeats", mock.Anything, int64(4), int64(0)).
		Return([]string{"1A", "2C"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/flights/4/seatmap", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp seatMapResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, resp.Rows)
	assert.Equal(t, []string{"A", "B", "C"}, resp.LeftSeats)
	assert.Equal(t, []string{"D", "E", "F"}, resp.RightSeats)
	assert.Equal(t, []string{"1A", "2C"}, resp.OccupiedSeats)
}

func TestFlightHandler_Create(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService, &MockSeatInventory{})

	departure := time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)
	input := flights.CreateFlightInput{
		FlightNumber:  "AB123",
		Origin:        "Dublin",
		Destination:   "London",
		DepartureTime: departure,
		ArrivalTime:   departure.Add(80 * time.Minute),
		FareCents:     19999,
	}
	mockService.On("Create", mock.Anything, input).
		Return(&domain.Flight{ID: 1, FlightNumber: "AB123"}, nil).Once()

	body, _ := json.Marshal(input)
	req := httptest.NewRequest(http.MethodPost, "/flights/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}
