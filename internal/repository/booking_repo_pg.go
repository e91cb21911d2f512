package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
)

type BookingRepository interface {
	// Create inserts the booking and its passengers in one transaction.
	// A PNR uniqueness collision maps to domain.ErrDuplicatePNR.
	Create(ctx context.Context, booking *domain.Booking, passengers []domain.Passenger) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	Passengers(ctx context.Context, bookingID int64) ([]domain.Passenger, error)
	// Confirm flips PENDING_PAYMENT to CONFIRMED. The status guard is part
	// of the UPDATE, so a booking cancelled in the meantime cannot be
	// resurrected; when the guard fails the error is ErrNotFound and the
	// caller re-reads to find out why.
	Confirm(ctx context.Context, id int64, paymentRef string) (*domain.Booking, error)
	// Cancel flips the booking to CANCELLED only while its status is still
	// `from`. ErrNotFound means the booking is gone or another writer
	// transitioned it first.
	Cancel(ctx context.Context, id int64, refund decimal.Decimal, at time.Time, from domain.BookingStatus) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error)
	ListPendingPaymentBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
}

const bookingColumns = `id, user_id, flight_id, pnr, status, price_each, total_price, contact_email, contact_phone, coalesce(payment_reference, ''), coalesce(refund_amount, 0), cancelled_at, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.FlightID, &b.PNR, &b.Status, &b.PriceEach,
		&b.TotalPrice, &b.ContactEmail, &b.ContactPhone, &b.PaymentReference,
		&b.RefundAmount, &b.CancelledAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking, passengers []domain.Passenger) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `INSERT INTO bookings (user_id, flight_id, pnr, status, price_each, total_price, contact_email, contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		booking.UserID, booking.FlightID, booking.PNR, booking.Status,
		booking.PriceEach, booking.TotalPrice, booking.ContactEmail, booking.ContactPhone).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicatePNR
		}
		return err
	}

	for i := range passengers {
		passengers[i].BookingID = booking.ID
		err = tx.QueryRow(ctx, `INSERT INTO passengers (booking_id, flight_id, seat_number, seat_type, full_name, date_of_birth, passport_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			passengers[i].BookingID, passengers[i].FlightID, passengers[i].SeatNumber,
			passengers[i].SeatType, passengers[i].FullName, passengers[i].DateOfBirth,
			passengers[i].PassportNumber).
			Scan(&passengers[i].ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr=$1`, pnr)
	return scanBooking(row)
}

func (r *PGBookingRepository) Passengers(ctx context.Context, bookingID int64) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, flight_id, seat_number, seat_type, full_name, coalesce(date_of_birth, ''), coalesce(passport_number, '')
		FROM passengers WHERE booking_id=$1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passengers []domain.Passenger
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.FlightID, &p.SeatNumber, &p.SeatType,
			&p.FullName, &p.DateOfBirth, &p.PassportNumber); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

func (r *PGBookingRepository) Confirm(ctx context.Context, id int64, paymentRef string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, payment_reference=$2, updated_at=now()
		WHERE id=$3 AND status=$4 RETURNING `+bookingColumns,
		domain.BookingStatusConfirmed, paymentRef, id, domain.BookingStatusPendingPayment)
	return scanBooking(row)
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id int64, refund decimal.Decimal, at time.Time, from domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, refund_amount=$2, cancelled_at=$3, updated_at=now()
		WHERE id=$4 AND status=$5 RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, refund, at, id, from)
	return scanBooking(row)
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]domain.BookingDetail, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, domain.BookingDetail{Booking: *b})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range details {
		passengers, err := r.Passengers(ctx, details[i].Booking.ID)
		if err != nil {
			return nil, err
		}
		details[i].Passengers = passengers

		payment, err := r.payment(ctx, details[i].Booking.ID)
		if err != nil {
			return nil, err
		}
		details[i].Payment = payment
	}
	return details, nil
}

func (r *PGBookingRepository) payment(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT id, booking_id, reference, method, amount_paid, status, created_at
		FROM payments WHERE booking_id=$1 ORDER BY created_at DESC LIMIT 1`, bookingID)
	var p domain.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.Reference, &p.Method, &p.AmountPaid, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGBookingRepository) ListPendingPaymentBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status=$1 AND created_at <= $2`,
		domain.BookingStatusPendingPayment, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		stale = append(stale, *b)
	}
	return stale, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
