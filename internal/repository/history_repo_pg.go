package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
)

// HistoryRepository appends price history rows. The table is append-only;
// retention is an operational concern, not handled here.
type HistoryRepository interface {
	Insert(ctx context.Context, point *domain.PricePoint) error
	ListByFlight(ctx context.Context, flightID int64, limit int) ([]domain.PricePoint, error)
}

// ArchiveRepository stores cancellation snapshots. Append-only.
type ArchiveRepository interface {
	Insert(ctx context.Context, archive *domain.CancelledBooking) error
}

type PGHistoryRepository struct {
	db *pgxpool.Pool
}

func NewHistoryRepository(db *pgxpool.Pool) HistoryRepository {
	return &PGHistoryRepository{db: db}
}

func (r *PGHistoryRepository) Insert(ctx context.Context, point *domain.PricePoint) error {
	return r.db.QueryRow(ctx, `INSERT INTO flight_price_history (flight_id, recorded_price, demand_factor, seats_remaining, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		point.FlightID, point.RecordedPrice, point.DemandFactor, point.SeatsRemaining, point.RecordedAt).
		Scan(&point.ID)
}

func (r *PGHistoryRepository) ListByFlight(ctx context.Context, flightID int64, limit int) ([]domain.PricePoint, error) {
	rows, err := r.db.Query(ctx, `SELECT id, flight_id, recorded_price, demand_factor, seats_remaining, recorded_at
		FROM flight_price_history WHERE flight_id=$1 ORDER BY recorded_at DESC LIMIT $2`, flightID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]domain.PricePoint, 0)
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.ID, &p.FlightID, &p.RecordedPrice, &p.DemandFactor, &p.SeatsRemaining, &p.RecordedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

type PGArchiveRepository struct {
	db *pgxpool.Pool
}

func NewArchiveRepository(db *pgxpool.Pool) ArchiveRepository {
	return &PGArchiveRepository{db: db}
}

func (r *PGArchiveRepository) Insert(ctx context.Context, archive *domain.CancelledBooking) error {
	return r.db.QueryRow(ctx, `INSERT INTO cancelled_bookings (pnr, user_id, flight_id, price_paid, refund_amount, reason, passenger_name, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING archive_id`,
		archive.PNR, archive.UserID, archive.FlightID, archive.PricePaid,
		archive.RefundAmount, archive.Reason, archive.PassengerName, archive.CancelledAt).
		Scan(&archive.ArchiveID)
}

var _ HistoryRepository = (*PGHistoryRepository)(nil)
var _ ArchiveRepository = (*PGArchiveRepository)(nil)
