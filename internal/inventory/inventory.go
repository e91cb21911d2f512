// Package inventory owns per-flight seat state: the remaining-seat counter
// and the set of assigned seat numbers. All mutations for one flight run
// inside that flight's critical section, so two concurrent reservations for
// the same seat can never both commit, and seats_remaining never leaves
// [0, total_seats].
package inventory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/repository"
)

// Recorder appends a price history entry for the given post-mutation flight
// snapshot. Implemented by the history package.
type Recorder interface {
	Record(ctx context.Context, flight *domain.Flight) error
}

type Inventory struct {
	flights  repository.FlightRepository
	recorder Recorder
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func New(flights repository.FlightRepository, recorder Recorder, logger *zap.Logger) *Inventory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inventory{
		flights:  flights,
		recorder: recorder,
		logger:   logger,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// flightLock returns the mutex guarding one flight's inventory. Locks are
// created on first use and kept for the life of the process.
func (inv *Inventory) flightLock(flightID int64) *sync.Mutex {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	lock, ok := inv.locks[flightID]
	if !ok {
		lock = &sync.Mutex{}
		inv.locks[flightID] = lock
	}
	return lock
}

func (inv *Inventory) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	return inv.flights.GetByID(ctx, id)
}

// Reserve commits the requested seats under the flight's critical section
// and then invokes fn with the post-reservation snapshot and the resolved
// seat labels, still under the lock. Empty entries in seats are
// auto-assigned to the lowest free seats. fn is where the caller persists
// whatever must be consistent with the reservation (booking and passenger
// rows, priced against exactly this snapshot). If fn returns an error the
// seat decrement is rolled back and nothing is recorded. The whole
// operation is all-or-nothing: either every requested seat is committed or
// none is.
func (inv *Inventory) Reserve(ctx context.Context, flightID int64, seats []string, fn func(snapshot *domain.Flight, seats []string) error) error {
	if len(seats) == 0 {
		return domain.NewValidationError("seats", "at least one seat required")
	}

	lock := inv.flightLock(flightID)
	lock.Lock()
	defer lock.Unlock()

	flight, err := inv.flights.GetByID(ctx, flightID)
	if err != nil {
		return err
	}
	if len(seats) > flight.SeatsRemaining {
		return fmt.Errorf("%w: %d seats requested, %d remaining", domain.ErrSeatUnavailable, len(seats), flight.SeatsRemaining)
	}

	assigned, err := inv.flights.AssignedSeats(ctx, flightID)
	if err != nil {
		return err
	}

	resolved, err := inv.resolveSeats(flight, assigned, seats)
	if err != nil {
		return err
	}

	remaining, err := inv.flights.ReserveSeats(ctx, flightID, len(resolved))
	if err != nil {
		return err
	}
	flight.SeatsRemaining = remaining

	if fn != nil {
		if err := fn(flight, resolved); err != nil {
			if _, rbErr := inv.flights.ReleaseSeats(ctx, flightID, len(resolved)); rbErr != nil {
				inv.logger.Error("seat rollback failed",
					zap.Int64("flight_id", flightID), zap.Error(rbErr))
			}
			return err
		}
	}

	inv.record(ctx, flight)
	return nil
}

// resolveSeats validates explicit seat labels against the cabin layout and
// the assigned set, then fills empty entries with the lowest free seats.
// Called with the flight lock held.
func (inv *Inventory) resolveSeats(flight *domain.Flight, assigned map[string]bool, seats []string) ([]string, error) {
	taken := make(map[string]bool, len(assigned)+len(seats))
	for seat := range assigned {
		taken[seat] = true
	}

	resolved := make([]string, len(seats))
	var auto []int
	for i, seat := range seats {
		seat = NormalizeSeat(seat)
		if seat == "" {
			auto = append(auto, i)
			continue
		}
		ord, ok := seatOrdinal(seat)
		if !ok || ord >= flight.TotalSeats {
			return nil, domain.NewValidationError("seat_number", "seat "+seat+" is not in the cabin layout")
		}
		if taken[seat] {
			return nil, fmt.Errorf("%w: seat %s already assigned", domain.ErrSeatUnavailable, seat)
		}
		taken[seat] = true
		resolved[i] = seat
	}

	next := 0
	for _, i := range auto {
		for ; next < flight.TotalSeats; next++ {
			label := seatLabel(next)
			if !taken[label] {
				taken[label] = true
				resolved[i] = label
				next++
				break
			}
		}
		if resolved[i] == "" {
			return nil, fmt.Errorf("%w: no free seat to auto-assign", domain.ErrSeatUnavailable)
		}
	}
	return resolved, nil
}

// Release gives seats back under the flight's critical section. fn runs
// first, before the counter moves, and must flip the owning booking out of
// active status so the seat numbers stop counting as assigned; if it errors
// the release is abandoned. The counter is bounded above by total_seats.
func (inv *Inventory) Release(ctx context.Context, flightID int64, seats []string, fn func(snapshot *domain.Flight) error) error {
	lock := inv.flightLock(flightID)
	lock.Lock()
	defer lock.Unlock()

	flight, err := inv.flights.GetByID(ctx, flightID)
	if err != nil {
		return err
	}

	if fn != nil {
		if err := fn(flight); err != nil {
			return err
		}
	}

	remaining, err := inv.flights.ReleaseSeats(ctx, flightID, len(seats))
	if err != nil {
		return err
	}
	flight.SeatsRemaining = remaining

	inv.record(ctx, flight)
	return nil
}

// Locked runs fn under the flight's critical section without moving the
// seat counter. Booking status transitions that must not interleave with
// Reserve or Release, such as payment settlement, go through here.
func (inv *Inventory) Locked(ctx context.Context, flightID int64, fn func(snapshot *domain.Flight) error) error {
	lock := inv.flightLock(flightID)
	lock.Lock()
	defer lock.Unlock()

	flight, err := inv.flights.GetByID(ctx, flightID)
	if err != nil {
		return err
	}
	return fn(flight)
}

// SetDemandFactor stores an externally supplied demand factor, clamped to
// [0.80, 1.60]. The demand model itself lives outside the core.
func (inv *Inventory) SetDemandFactor(ctx context.Context, flightID int64, value float64) (*domain.Flight, error) {
	lock := inv.flightLock(flightID)
	lock.Lock()
	defer lock.Unlock()

	flight, err := inv.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}

	clamped := domain.ClampDemandFactor(value)
	if err := inv.flights.UpdateDemandFactor(ctx, flightID, clamped); err != nil {
		return nil, err
	}
	flight.DemandFactor = clamped

	inv.record(ctx, flight)
	return flight, nil
}

// record appends price history for a committed mutation. Failures are
// logged, not propagated: the inventory change already happened and audit
// backpressure must not fail the booking path.
func (inv *Inventory) record(ctx context.Context, flight *domain.Flight) {
	if inv.recorder == nil {
		return
	}
	if err := inv.recorder.Record(ctx, flight); err != nil {
		inv.logger.Warn("price history append failed",
			zap.Int64("flight_id", flight.ID), zap.Error(err))
	}
}
