package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/akolesov/flightbooking/internal/domain"
	"github.com/akolesov/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID  int64    `json:"flight_id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Seats     []string `json:"seats"`
}

type updateSeatsRequest struct {
	Seats []string `json:"seats"`
}

type bookingResponse struct {
	ID                int64    `json:"id"`
	FlightID          int64    `json:"flight_id"`
	PassengerID       int64    `json:"passenger_id"`
	SeatNumbers       []string `json:"seat_numbers"`
	TotalFareCents    int64    `json:"total_fare_cents"`
	PaymentStatus     string   `json:"payment_status"`
	PNRCodes          []string `json:"pnr_codes"`
	BookingDate       string   `json:"booking_date"`
	OriginalFareCents *int64   `json:"original_fare_cents,omitempty"`
	RefundNeeded      bool     `json:"refund_needed"`
	RefundAmountCents *int64   `json:"refund_amount_cents,omitempty"`
	RefundedSeats     []string `json:"refunded_seats,omitempty"`
	RefundDifference  int64    `json:"refund_difference_cents"`
}

type refundResponse struct {
	Booking       bookingResponse `json:"booking"`
	RefundedSeats []string        `json:"refunded_seats"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/payment", h.confirmPayment)
	router.PUT("/:id/seats", h.updateSeats)
	router.POST("/:id/refund", h.requestRefund)
	router.DELETE("/:id", h.delete)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightID:  req.FlightID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Seats:     req.Seats,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, *toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	found, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) confirmPayment(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	confirmed, err := h.service.ConfirmPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(confirmed))
}

func (h *BookingHandler) updateSeats(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req updateSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.service.UpdateSeats(c.Request.Context(), id, req.Seats)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) requestRefund(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	refunded, seats, err := h.service.RequestRefund(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, refundResponse{
		Booking:       *toBookingResponse(refunded),
		RefundedSeats: seats,
	})
}

func (h *BookingHandler) delete(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteBooking(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return 0, false
	}
	return id, true
}

func toBookingResponse(b *domain.Booking) *bookingResponse {
	return &bookingResponse{
		ID:                b.ID,
		FlightID:          b.FlightID,
		PassengerID:       b.PassengerID,
		SeatNumbers:       b.SeatNumbers,
		TotalFareCents:    b.TotalFareCents,
		PaymentStatus:     string(b.PaymentStatus),
		PNRCodes:          b.PNRCodes,
		BookingDate:       b.BookingDate.Format(time.RFC3339),
		OriginalFareCents: b.OriginalFareCents,
		RefundNeeded:      b.RefundNeeded,
		RefundAmountCents: b.RefundAmountCents,
		RefundedSeats:     b.RefundedSeats,
		RefundDifference:  b.RefundDifference(),
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Validation
// failures are user errors, refund ineligibility is a non-fatal warning.
func respondError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		payload := gin.H{"error": vErr.Msg}
		if len(vErr.ConflictingSeats) > 0 {
			payload["conflicting_seats"] = vErr.ConflictingSeats
		}
		c.JSON(http.StatusBadRequest, payload)
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrRefundIneligible):
		c.JSON(http.StatusConflict, gin.H{"warning": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
