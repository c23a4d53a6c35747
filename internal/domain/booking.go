package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type Booking struct {
	ID          int64
	FlightID    int64
	PassengerID int64
	// SeatNumbers is an ordered, duplicate-free seat selection. Persisted
	// comma-joined, one PNR code per seat at the same position.
	SeatNumbers    []string
	TotalFareCents int64
	PaymentStatus  PaymentStatus
	PNRCodes       []string
	BookingDate    time.Time

	// Refund bookkeeping. Nil/zero until a refund-eligible seat change.
	OriginalFareCents *int64
	RefundNeeded      bool
	RefundAmountCents *int64
	RefundedSeats     []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefundDifference is the amount owed back to the passenger: the gap
// between the fare snapshotted at payment time and the current total.
// Zero when no snapshot exists or the fare did not decrease.
func (b *Booking) RefundDifference() int64 {
	if b.OriginalFareCents == nil {
		return 0
	}
	if diff := *b.OriginalFareCents - b.TotalFareCents; diff > 0 {
		return diff
	}
	return 0
}
