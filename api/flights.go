package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/akolesov/flightbooking/internal/domain"
	"github.com/akolesov/flightbooking/internal/seatmap"
	"github.com/akolesov/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

// SeatInventory resolves which seats are taken on a flight; implemented by
// the booking service.
type SeatInventory interface {
	OccupiedSeats(ctx context.Context, flightID, excludeBookingID int64) ([]string, error)
}

type FlightHandler struct {
	service   flights.FlightUseCase
	inventory SeatInventory
}

type seatMapResponse struct {
	FlightID      int64    `json:"flight_id"`
	Rows          []int    `json:"rows"`
	LeftSeats     []string `json:"left_seats"`
	RightSeats    []string `json:"right_seats"`
	OccupiedSeats []string `json:"occupied_seats"`
}

func NewFlightHandler(service flights.FlightUseCase, inventory SeatInventory) *FlightHandler {
	return &FlightHandler{service: service, inventory: inventory}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
	router.GET("/:id/seatmap", h.seatMap)
	router.POST("/", h.create)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

type roundTripResponse struct {
	Flights       []domain.Flight `json:"flights"`
	ReturnFlights []domain.Flight `json:"return_flights"`
}

func (h *FlightHandler) search(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	date := c.Query("date")

	if c.Query("trip_type") == "round" {
		outbound, inbound, err := h.service.SearchRoundTrip(c.Request.Context(),
			origin, destination, date, c.Query("return_date"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, roundTripResponse{Flights: outbound, ReturnFlights: inbound})
		return
	}

	found, err := h.service.Search(c.Request.Context(), origin, destination, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) seatMap(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	if _, err := h.service.GetByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	occupied, err := h.inventory.OccupiedSeats(c.Request.Context(), id, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, seatMapResponse{
		FlightID:      id,
		Rows:          seatmap.Rows(),
		LeftSeats:     seatmap.LeftSeats,
		RightSeats:    seatmap.RightSeats,
		OccupiedSeats: occupied,
	})
}

func (h *FlightHandler) create(c *gin.Context) {
	var input flights.CreateFlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func flightID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return 0, false
	}
	return id, true
}
