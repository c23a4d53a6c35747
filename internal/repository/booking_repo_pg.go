package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akolesov/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id int64) error
	ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListPendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, flight_id, passenger_id, seat_numbers, total_fare_cents, payment_status, pnr_codes, booking_date, original_fare_cents, refund_needed, refund_amount_cents, refunded_seats, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (flight_id, passenger_id, seat_numbers, total_fare_cents, payment_status, pnr_codes, refunded_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, booking_date, created_at, updated_at`,
		booking.FlightID, booking.PassengerID, joinSeats(booking.SeatNumbers), booking.TotalFareCents, booking.PaymentStatus, joinSeats(booking.PNRCodes), joinSeats(booking.RefundedSeats)).
		Scan(&booking.ID, &booking.BookingDate, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.NewValidationError("passenger already has a booking on this flight")
		}
		return err
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET seat_numbers=$1, total_fare_cents=$2, payment_status=$3, pnr_codes=$4, original_fare_cents=$5, refund_needed=$6, refund_amount_cents=$7, refunded_seats=$8, updated_at=now() WHERE id=$9`,
		joinSeats(booking.SeatNumbers), booking.TotalFareCents, booking.PaymentStatus, joinSeats(booking.PNRCodes), booking.OriginalFareCents, booking.RefundNeeded, booking.RefundAmountCents, joinSeats(booking.RefundedSeats), booking.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGBookingRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGBookingRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE flight_id=$1`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY booking_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListPendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE payment_status=$1 AND booking_date <= $2`, domain.PaymentStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var seats, pnrs, refunded string
	err := row.Scan(&b.ID, &b.FlightID, &b.PassengerID, &seats, &b.TotalFareCents, &b.PaymentStatus, &pnrs, &b.BookingDate, &b.OriginalFareCents, &b.RefundNeeded, &b.RefundAmountCents, &refunded, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	b.SeatNumbers = splitSeats(seats)
	b.PNRCodes = splitSeats(pnrs)
	b.RefundedSeats = splitSeats(refunded)
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// Seats and PNR codes are stored comma-joined in a single text column.
func joinSeats(seats []string) string {
	return strings.Join(seats, ",")
}

func splitSeats(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

var _ BookingRepository = (*PGBookingRepository)(nil)
