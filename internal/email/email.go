package email

import (
	"context"

	"github.com/akolesov/flightbooking/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender is a simulated notification channel: it logs instead of talking
// to a mail gateway.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	logrus.WithFields(logrus.Fields{
		"to":      event.Email,
		"event":   event.Type,
		"flight":  event.FlightNumber,
		"seats":   event.SeatNumbers,
		"booking": event.BookingID,
	}).Info("send booking email")
	return nil
}
