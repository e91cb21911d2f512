package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
)

// FlightFilter narrows a flight search. Zero values mean "no filter".
type FlightFilter struct {
	Origin      string
	Destination string
	Date        *time.Time
	SortBy      string // "price" sorting happens in the service; "departure" here
	Order       string // "asc" or "desc"
}

type FlightRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, filter FlightFilter) ([]domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	// AssignedSeats returns the seat numbers currently held by passengers
	// of non-cancelled bookings on the flight.
	AssignedSeats(ctx context.Context, flightID int64) (map[string]bool, error)
	// ReserveSeats atomically decrements the seat counter, failing with
	// ErrSeatUnavailable when fewer than count seats remain. The guard and
	// the decrement are one statement so concurrent writers cannot lose
	// updates. Returns the counter after the decrement.
	ReserveSeats(ctx context.Context, flightID int64, count int) (int, error)
	// ReleaseSeats atomically increments the seat counter, bounded above
	// by total_seats. Returns the counter after the increment.
	ReleaseSeats(ctx context.Context, flightID int64, count int) (int, error)
	UpdateDemandFactor(ctx context.Context, flightID int64, factor float64) error
}

const flightColumns = `id, flight_number, airline, from_airport, to_airport, departure_time, arrival_time, base_price, total_seats, seats_remaining, demand_factor, status, created_at, updated_at`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.FromAirport, &f.ToAirport,
		&f.DepartureTime, &f.ArrivalTime, &f.BasePrice, &f.TotalSeats, &f.SeatsRemaining,
		&f.DemandFactor, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	return scanFlight(row)
}

func (r *PGFlightRepository) Search(ctx context.Context, filter FlightFilter) ([]domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE status=$1 AND seats_remaining > 0 AND departure_time > now()`
	args := []interface{}{domain.FlightStatusScheduled}

	if filter.Origin != "" {
		args = append(args, filter.Origin)
		query += fmt.Sprintf(" AND from_airport=$%d", len(args))
	}
	if filter.Destination != "" {
		args = append(args, filter.Destination)
		query += fmt.Sprintf(" AND to_airport=$%d", len(args))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		query += fmt.Sprintf(" AND departure_time::date = ($%d)::date", len(args))
	}

	order := "ASC"
	if filter.Order == "desc" {
		order = "DESC"
	}
	query += " ORDER BY departure_time " + order

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, airline, from_airport, to_airport, departure_time, arrival_time, base_price, total_seats, seats_remaining, demand_factor, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		flight.FlightNumber, flight.Airline, flight.FromAirport, flight.ToAirport,
		flight.DepartureTime, flight.ArrivalTime, flight.BasePrice, flight.TotalSeats,
		flight.DemandFactor, flight.Status).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
}

func (r *PGFlightRepository) AssignedSeats(ctx context.Context, flightID int64) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT p.seat_number FROM passengers p
		JOIN bookings b ON b.id = p.booking_id
		WHERE p.flight_id=$1 AND b.status <> $2`, flightID, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make(map[string]bool)
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		seats[seat] = true
	}
	return seats, rows.Err()
}

func (r *PGFlightRepository) ReserveSeats(ctx context.Context, flightID int64, count int) (int, error) {
	var remaining int
	err := r.db.QueryRow(ctx, `UPDATE flights SET seats_remaining = seats_remaining - $2, updated_at=now()
		WHERE id=$1 AND seats_remaining >= $2
		RETURNING seats_remaining`, flightID, count).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No row matched: either the flight is gone or the guard failed.
			if _, gErr := r.GetByID(ctx, flightID); gErr != nil {
				return 0, gErr
			}
			return 0, fmt.Errorf("%w: %d seats requested", domain.ErrSeatUnavailable, count)
		}
		return 0, err
	}
	return remaining, nil
}

func (r *PGFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, count int) (int, error) {
	var remaining int
	err := r.db.QueryRow(ctx, `UPDATE flights SET seats_remaining = LEAST(seats_remaining + $2, total_seats), updated_at=now()
		WHERE id=$1
		RETURNING seats_remaining`, flightID, count).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return remaining, nil
}

func (r *PGFlightRepository) UpdateDemandFactor(ctx context.Context, flightID int64, factor float64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE flights SET demand_factor=$1, updated_at=now() WHERE id=$2`, factor, flightID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
