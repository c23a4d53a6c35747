package booking

import (
	"context"
	"strconv"
	"time"

	"github.com/akolesov/flightbooking/internal/domain"
	"github.com/akolesov/flightbooking/internal/kafka"
	"github.com/akolesov/flightbooking/internal/pnr"
	"github.com/akolesov/flightbooking/internal/repository"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmPayment(ctx context.Context, bookingID int64) (*domain.Booking, error)
	UpdateSeats(ctx context.Context, bookingID int64, seats []string) (*domain.Booking, error)
	RequestRefund(ctx context.Context, bookingID int64) (*domain.Booking, []string, error)
	DeleteBooking(ctx context.Context, bookingID int64) error
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	OccupiedSeats(ctx context.Context, flightID, excludeBookingID int64) ([]string, error)
	SendPaymentReminders(ctx context.Context, olderThan time.Duration) ([]domain.Booking, error)
}

// Cache serializes seat mutations per flight. Optional: without it the
// occupied-seat check and the booking write are not atomic.
type Cache interface {
	AcquireFlightLock(ctx context.Context, flightID int64, ttl time.Duration) (bool, error)
	ReleaseFlightLock(ctx context.Context, flightID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// Retry budget for notification publishes.
const notificationPublishRetries = 3

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	passengers         repository.PassengerRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	lockTTL            time.Duration
	generatePNR        func(flightNumber, seat string) string
}

type CreateBookingInput struct {
	FlightID  int64    `json:"flight_id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Seats     []string `json:"seats"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithPNRGenerator(generate func(flightNumber, seat string) string) BookingServiceOption {
	return func(s *BookingService) {
		s.generatePNR = generate
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	passengers repository.PassengerRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	lockTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		flights:      flights,
		passengers:   passengers,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		lockTTL:      lockTTL,
		generatePNR:  pnr.Generate,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	seats := normalizeSeats(input.Seats)
	if len(seats) == 0 {
		return nil, domain.NewValidationError("no seats selected")
	}
	if input.Email == "" {
		return nil, domain.NewValidationError("email is required")
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockFlight(ctx, flight.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	occupied, err := s.OccupiedSeats(ctx, flight.ID, 0)
	if err != nil {
		return nil, err
	}
	if conflicts := intersect(seats, occupied); len(conflicts) > 0 {
		return nil, domain.NewValidationError("seat already booked", conflicts...)
	}

	passenger := &domain.Passenger{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
	}
	if err := s.passengers.UpsertByEmail(ctx, passenger); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		FlightID:       flight.ID,
		PassengerID:    passenger.ID,
		SeatNumbers:    seats,
		TotalFareCents: flight.FareCents * int64(len(seats)),
		PaymentStatus:  domain.PaymentStatusPending,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking, flight, passenger.Email, 0)
	return booking, nil
}

// ConfirmPayment marks the booking paid. No precondition on the current
// status: re-confirming regenerates every PNR and re-snapshots the fare.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	flight, err := s.flights.GetByID(ctx, booking.FlightID)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(booking.SeatNumbers))
	for _, seat := range booking.SeatNumbers {
		codes = append(codes, s.generatePNR(flight.FlightNumber, seat))
	}

	original := booking.TotalFareCents
	booking.PNRCodes = codes
	booking.PaymentStatus = domain.PaymentStatusConfirmed
	booking.OriginalFareCents = &original
	booking.RefundNeeded = false
	booking.RefundAmountCents = nil
	booking.RefundedSeats = nil

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "payment_confirmed", booking, flight, "", 0)
	return booking, nil
}

func (s *BookingService) UpdateSeats(ctx context.Context, bookingID int64, seats []string) (*domain.Booking, error) {
	newSeats := normalizeSeats(seats)
	if len(newSeats) == 0 {
		return nil, domain.NewValidationError("no seats selected")
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	flight, err := s.flights.GetByID(ctx, booking.FlightID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockFlight(ctx, flight.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Conflict check excludes this booking's own seats.
	occupied, err := s.OccupiedSeats(ctx, flight.ID, booking.ID)
	if err != nil {
		return nil, err
	}
	if conflicts := intersect(newSeats, occupied); len(conflicts) > 0 {
		return nil, domain.NewValidationError("seat conflict", conflicts...)
	}

	oldFare := booking.TotalFareCents
	newFare := flight.FareCents * int64(len(newSeats))
	removed := difference(booking.SeatNumbers, newSeats)

	booking.SeatNumbers = newSeats
	booking.TotalFareCents = newFare

	if newFare > oldFare {
		// Passenger owes more: back to the payment step.
		booking.PaymentStatus = domain.PaymentStatusPending
		booking.PNRCodes = nil
		booking.RefundedSeats = nil
	} else {
		// Equal or lower fare: arm the refund bookkeeping (amount may be
		// zero for an equal-count seat swap) and reissue every PNR.
		refund := oldFare - newFare
		booking.OriginalFareCents = &oldFare
		booking.RefundNeeded = true
		booking.RefundAmountCents = &refund
		booking.RefundedSeats = removed
		codes := make([]string, 0, len(newSeats))
		for _, seat := range newSeats {
			codes = append(codes, s.generatePNR(flight.FlightNumber, seat))
		}
		booking.PNRCodes = codes
		booking.PaymentStatus = domain.PaymentStatusConfirmed
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "seats_updated", booking, flight, "", 0)
	return booking, nil
}

// RequestRefund settles the amount owed for dropped seats. The payout is
// always derived from the original-fare snapshot against the current
// total, not from the provisional amount written by UpdateSeats.
func (s *BookingService) RequestRefund(ctx context.Context, bookingID int64) (*domain.Booking, []string, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if booking.PaymentStatus != domain.PaymentStatusConfirmed || !booking.RefundNeeded {
		return nil, nil, domain.ErrRefundIneligible
	}

	amount := booking.RefundDifference()
	booking.PaymentStatus = domain.PaymentStatusRefunded
	booking.RefundAmountCents = &amount
	booking.RefundNeeded = false

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, nil, err
	}

	s.publish(ctx, "booking_refunded", booking, nil, "", amount)
	return booking, booking.RefundedSeats, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, bookingID int64) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := s.bookings.Delete(ctx, bookingID); err != nil {
		return err
	}
	s.publish(ctx, "booking_deleted", booking, nil, "", 0)
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListAll(ctx)
}

// OccupiedSeats unions the seat selections of every booking on the flight,
// optionally skipping one booking for edit flows. Bookings with an empty
// selection contribute nothing.
func (s *BookingService) OccupiedSeats(ctx context.Context, flightID, excludeBookingID int64) ([]string, error) {
	bookings, err := s.bookings.ListByFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	occupied := make([]string, 0)
	for _, b := range bookings {
		if b.ID == excludeBookingID {
			continue
		}
		for _, seat := range b.SeatNumbers {
			if _, ok := seen[seat]; ok {
				continue
			}
			seen[seat] = struct{}{}
			occupied = append(occupied, seat)
		}
	}
	return occupied, nil
}

// SendPaymentReminders publishes a reminder event for bookings that have
// sat in Pending longer than olderThan. Booking state is never touched.
func (s *BookingService) SendPaymentReminders(ctx context.Context, olderThan time.Duration) ([]domain.Booking, error) {
	deadline := time.Now().Add(-olderThan)
	pending, err := s.bookings.ListPendingBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for i := range pending {
		s.publish(ctx, "payment_reminder", &pending[i], nil, "", 0)
	}
	return pending, nil
}

func (s *BookingService) lockFlight(ctx context.Context, flightID int64) (func(), error) {
	if s.cache == nil {
		return func() {}, nil
	}
	ok, err := s.cache.AcquireFlightLock(ctx, flightID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewValidationError("flight is busy, try again")
	}
	return func() { _ = s.cache.ReleaseFlightLock(ctx, flightID) }, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, flight *domain.Flight, email string, refundCents int64) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}

	if flight == nil {
		var err error
		flight, err = s.flights.GetByID(ctx, booking.FlightID)
		if err != nil {
			logrus.WithError(err).Warnf("skip %s event: flight lookup failed", eventType)
			return
		}
	}
	if email == "" {
		passenger, err := s.passengers.GetByID(ctx, booking.PassengerID)
		if err != nil {
			logrus.WithError(err).Warnf("skip %s event: passenger lookup failed", eventType)
			return
		}
		email = passenger.Email
	}

	event := kafka.BookingEvent{
		Type:           eventType,
		BookingID:      booking.ID,
		FlightID:       booking.FlightID,
		FlightNumber:   flight.FlightNumber,
		Email:          email,
		SeatNumbers:    booking.SeatNumbers,
		TotalFareCents: booking.TotalFareCents,
		RefundCents:    refundCents,
		RefundedSeats:  booking.RefundedSeats,
		PaymentStatus:  string(booking.PaymentStatus),
		OccurredAt:     time.Now(),
	}

	key := eventKey(booking.ID)
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		logrus.WithError(err).Warnf("failed to publish %s event for booking %d", eventType, booking.ID)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.PublishWithRetry(ctx, s.notificationsTopic, key, event, notificationPublishRetries); err != nil {
			logrus.WithError(err).Warnf("failed to publish %s notification for booking %d", eventType, booking.ID)
		}
	}
}

func eventKey(bookingID int64) string {
	return strconv.FormatInt(bookingID, 10)
}

// normalizeSeats trims blanks and drops repeats, keeping first-seen order.
func normalizeSeats(seats []string) []string {
	seen := make(map[string]struct{}, len(seats))
	out := make([]string, 0, len(seats))
	for _, seat := range seats {
		if seat == "" {
			continue
		}
		if _, ok := seen[seat]; ok {
			continue
		}
		seen[seat] = struct{}{}
		out = append(out, seat)
	}
	return out
}

func intersect(selection, occupied []string) []string {
	taken := make(map[string]struct{}, len(occupied))
	for _, seat := range occupied {
		taken[seat] = struct{}{}
	}
	conflicts := make([]string, 0)
	for _, seat := range selection {
		if _, ok := taken[seat]; ok {
			conflicts = append(conflicts, seat)
		}
	}
	return conflicts
}

func difference(oldSeats, newSeats []string) []string {
	kept := make(map[string]struct{}, len(newSeats))
	for _, seat := range newSeats {
		kept[seat] = struct{}{}
	}
	removed := make([]string, 0)
	for _, seat := range oldSeats {
		if _, ok := kept[seat]; !ok {
			removed = append(removed, seat)
		}
	}
	return removed
}

var _ BookingUseCase = (*BookingService)(nil)
