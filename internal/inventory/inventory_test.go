package inventory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/history"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/repository/memory"
)

func testFlight(remaining, total int) domain.Flight {
	return domain.Flight{
		FlightNumber:   "FB101",
		Airline:        "TestAir",
		FromAirport:    "DEL",
		ToAirport:      "BOM",
		DepartureTime:  time.Now().Add(48 * time.Hour),
		ArrivalTime:    time.Now().Add(50 * time.Hour),
		BasePrice:      decimal.RequireFromString("500"),
		TotalSeats:     total,
		SeatsRemaining: remaining,
		DemandFactor:   1.0,
	}
}

func newTestInventory(store *memory.Store) *Inventory {
	recorder := history.NewRecorder(store.History(), nil, nil)
	return New(store.Flights(), recorder, nil)
}

// persistBooking writes a booking with one passenger per resolved seat so
// the seats count as assigned for later reservations.
func persistBooking(ctx context.Context, store *memory.Store, flightID int64, pnr string, seats []string) error {
	passengers := make([]domain.Passenger, len(seats))
	for i, seat := range seats {
		passengers[i] = domain.Passenger{
			FlightID:   flightID,
			SeatNumber: seat,
			SeatType:   SeatTypeFor(seat),
			FullName:   "Passenger " + seat,
		}
	}
	return store.Bookings().Create(ctx, &domain.Booking{
		UserID:   1,
		FlightID: flightID,
		PNR:      pnr,
		Status:   domain.BookingStatusPendingPayment,
	}, passengers)
}

func TestReserve_ExplicitSeats(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(12, 12))
	inv := newTestInventory(store)

	var snapshotRemaining int
	var resolved []string
	err := inv.Reserve(context.Background(), f.ID, []string{"1A", "2C"}, func(snapshot *domain.Flight, seats []string) error {
		snapshotRemaining = snapshot.SeatsRemaining
		resolved = seats
		return persistBooking(context.Background(), store, f.ID, "PNRAAAAAA1", seats)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1A", "2C"}, resolved)
	assert.Equal(t, 10, snapshotRemaining)

	got, err := inv.GetFlight(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.SeatsRemaining)
	assert.Equal(t, 1, store.HistoryLen(f.ID))
}

func TestReserve_AutoAssignLowestFree(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(12, 12))
	inv := newTestInventory(store)

	var resolved []string
	err := inv.Reserve(context.Background(), f.ID, []string{"1B", "", ""}, func(_ *domain.Flight, seats []string) error {
		resolved = seats
		return persistBooking(context.Background(), store, f.ID, "PNRAAAAAA2", seats)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1B", "1A", "1C"}, resolved)

	// A later auto-assign skips everything already held.
	err = inv.Reserve(context.Background(), f.ID, []string{""}, func(_ *domain.Flight, seats []string) error {
		resolved = seats
		return persistBooking(context.Background(), store, f.ID, "PNRAAAAAA3", seats)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1D"}, resolved)
}

func TestReserve_SeatAlreadyAssigned(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(12, 12))
	inv := newTestInventory(store)

	err := inv.Reserve(context.Background(), f.ID, []string{"1A"}, func(_ *domain.Flight, seats []string) error {
		return persistBooking(context.Background(), store, f.ID, "PNRAAAAAA4", seats)
	})
	require.NoError(t, err)

	err = inv.Reserve(context.Background(), f.ID, []string{"1A"}, nil)
	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)

	// The failed attempt must not move the counter or record history.
	got, _ := inv.GetFlight(context.Background(), f.ID)
	assert.Equal(t, 11, got.SeatsRemaining)
	assert.Equal(t, 1, store.HistoryLen(f.ID))
}

func TestReserve_NotEnoughSeats(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(2, 12))
	inv := newTestInventory(store)

	err := inv.Reserve(context.Background(), f.ID, []string{"", "", ""}, nil)
	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
}

func TestReserve_InvalidSeatLabel(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(12, 12))
	inv := newTestInventory(store)

	err := inv.Reserve(context.Background(), f.ID, []string{"12G"}, nil)
	assert.True(t, domain.IsValidation(err))

	// Valid label but beyond the cabin.
	err = inv.Reserve(context.Background(), f.ID, []string{"50A"}, nil)
	assert.True(t, domain.IsValidation(err))
}

func TestReserve_RollbackOnCallbackError(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(12, 12))
	inv := newTestInventory(store)

	boom := fmt.Errorf("insert failed")
	err := inv.Reserve(context.Background(), f.ID, []string{"1A"}, func(_ *domain.Flight, _ []string) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := inv.GetFlight(context.Background(), f.ID)
	assert.Equal(t, 12, got.SeatsRemaining)
	assert.Equal(t, 0, store.HistoryLen(f.ID))
}

func TestReserve_LastSeatRace(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(1, 1))
	inv := newTestInventory(store)

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners, conflicts := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := inv.Reserve(context.Background(), f.ID, []string{""}, func(_ *domain.Flight, seats []string) error {
				return persistBooking(context.Background(), store, f.ID, fmt.Sprintf("PNR%07d", i), seats)
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
			} else if assert.ErrorIs(t, err, domain.ErrSeatUnavailable) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, workers-1, conflicts)

	got, _ := inv.GetFlight(context.Background(), f.ID)
	assert.Equal(t, 0, got.SeatsRemaining)
	assert.Equal(t, 1, store.HistoryLen(f.ID))
}

func TestReserve_ConcurrentSameSeat(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(12, 12))
	inv := newTestInventory(store)

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := inv.Reserve(context.Background(), f.ID, []string{"3C"}, func(_ *domain.Flight, seats []string) error {
				return persistBooking(context.Background(), store, f.ID, fmt.Sprintf("PNR%07d", i), seats)
			})
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	got, _ := inv.GetFlight(context.Background(), f.ID)
	assert.Equal(t, 11, got.SeatsRemaining)
}

func TestSeatCounter_SharedStoreTwoEngines(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(30, 60))

	// Two engine instances over one store, as if a second process were
	// mutating the same flight. The counter moves through guarded relative
	// updates in the store, so no interleaving loses a write.
	invA := newTestInventory(store)
	invB := newTestInventory(store)

	const pairs = 10
	var wg sync.WaitGroup
	for i := 0; i < pairs; i++ {
		wg.Add(2)
		go func(seat string) {
			defer wg.Done()
			assert.NoError(t, invA.Reserve(context.Background(), f.ID, []string{seat}, nil))
		}(seatLabel(i))
		go func() {
			defer wg.Done()
			assert.NoError(t, invB.Release(context.Background(), f.ID, []string{"9A"}, nil))
		}()
	}
	wg.Wait()

	got, err := invA.GetFlight(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.SeatsRemaining)
}

func TestRelease_ReturnsSeats(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(10, 12))
	inv := newTestInventory(store)

	err := inv.Release(context.Background(), f.ID, []string{"1A", "1B"}, nil)
	require.NoError(t, err)

	got, _ := inv.GetFlight(context.Background(), f.ID)
	assert.Equal(t, 12, got.SeatsRemaining)
	assert.Equal(t, 1, store.HistoryLen(f.ID))
}

func TestRelease_BoundedByTotalSeats(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(11, 12))
	inv := newTestInventory(store)

	err := inv.Release(context.Background(), f.ID, []string{"1A", "1B", "1C"}, nil)
	require.NoError(t, err)

	got, _ := inv.GetFlight(context.Background(), f.ID)
	assert.Equal(t, 12, got.SeatsRemaining)
}

func TestRelease_AbandonedOnCallbackError(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(10, 12))
	inv := newTestInventory(store)

	boom := fmt.Errorf("cancel failed")
	err := inv.Release(context.Background(), f.ID, []string{"1A"}, func(_ *domain.Flight) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := inv.GetFlight(context.Background(), f.ID)
	assert.Equal(t, 10, got.SeatsRemaining)
	assert.Equal(t, 0, store.HistoryLen(f.ID))
}

func TestSetDemandFactor_Clamps(t *testing.T) {
	store := memory.NewStore()
	f := store.SeedFlight(testFlight(12, 12))
	inv := newTestInventory(store)

	got, err := inv.SetDemandFactor(context.Background(), f.ID, 2.5)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxDemandFactor, got.DemandFactor)

	got, err = inv.SetDemandFactor(context.Background(), f.ID, 0.1)
	require.NoError(t, err)
	assert.Equal(t, domain.MinDemandFactor, got.DemandFactor)

	got, err = inv.SetDemandFactor(context.Background(), f.ID, 1.25)
	require.NoError(t, err)
	assert.Equal(t, 1.25, got.DemandFactor)

	assert.Equal(t, 3, store.HistoryLen(f.ID))
}

func TestSetDemandFactor_UnknownFlight(t *testing.T) {
	store := memory.NewStore()
	inv := newTestInventory(store)

	_, err := inv.SetDemandFactor(context.Background(), 99, 1.0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
