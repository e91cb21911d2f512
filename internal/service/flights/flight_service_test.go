package flights

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/history"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/inventory"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/repository/memory"
)

type fakeCache struct {
	fares map[int64]*domain.FlightFare
	err   error
}

func (c *fakeCache) GetFare(_ context.Context, flightID int64) (*domain.FlightFare, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.fares[flightID], nil
}

func newTestService(store *memory.Store, cache FareCache) *FlightService {
	recorder := history.NewRecorder(store.History(), nil, nil)
	inv := inventory.New(store.Flights(), recorder, nil)
	return NewFlightService(store.Flights(), store.History(), inv, recorder, cache, nil)
}

func seedFlight(store *memory.Store, number, from, to string, departure time.Time, base string, remaining, total int) *domain.Flight {
	return store.SeedFlight(domain.Flight{
		FlightNumber:   number,
		Airline:        "TestAir",
		FromAirport:    from,
		ToAirport:      to,
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(2 * time.Hour),
		BasePrice:      decimal.RequireFromString(base),
		TotalSeats:     total,
		SeatsRemaining: remaining,
		DemandFactor:   1.0,
	})
}

func TestSearch_LivePrices(t *testing.T) {
	store := memory.NewStore()
	departure := time.Now().Add(72 * time.Hour)
	f1 := seedFlight(store, "FB100", "DEL", "BOM", departure, "500", 100, 200)
	seedFlight(store, "FB200", "DEL", "BLR", departure, "400", 50, 50)
	svc := newTestService(store, nil)

	results, err := svc.Search(context.Background(), SearchInput{Origin: "del", Destination: "bom"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, f1.ID, results[0].ID)
	// Half full, neutral demand: 500 * 1.25.
	assert.True(t, results[0].CurrentPrice.Equal(decimal.RequireFromString("625")),
		"price %s", results[0].CurrentPrice)
}

func TestSearch_ExcludesDepartedFlights(t *testing.T) {
	store := memory.NewStore()
	seedFlight(store, "FB300", "DEL", "BOM", time.Now().Add(-3*time.Hour), "500", 100, 200)
	upcoming := seedFlight(store, "FB301", "DEL", "BOM", time.Now().Add(24*time.Hour), "500", 100, 200)
	svc := newTestService(store, nil)

	results, err := svc.Search(context.Background(), SearchInput{Origin: "DEL", Destination: "BOM"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, upcoming.ID, results[0].ID)
}

func TestSearch_SortByPrice(t *testing.T) {
	store := memory.NewStore()
	departure := time.Now().Add(72 * time.Hour)
	cheap := seedFlight(store, "FB1", "DEL", "BOM", departure.Add(time.Hour), "300", 200, 200)
	costly := seedFlight(store, "FB2", "DEL", "BOM", departure, "900", 200, 200)
	svc := newTestService(store, nil)

	results, err := svc.Search(context.Background(), SearchInput{SortBy: "price", Order: "asc"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, cheap.ID, results[0].ID)

	results, err = svc.Search(context.Background(), SearchInput{SortBy: "price", Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, costly.ID, results[0].ID)
}

func TestSearch_ConsistentCacheHit(t *testing.T) {
	store := memory.NewStore()
	departure := time.Now().Add(72 * time.Hour)
	f := seedFlight(store, "FB1", "DEL", "BOM", departure, "500", 100, 200)

	sentinel := decimal.RequireFromString("123.45")
	cache := &fakeCache{fares: map[int64]*domain.FlightFare{
		f.ID: {FlightID: f.ID, CurrentPrice: sentinel, DemandFactor: 1.0, SeatsRemaining: 100},
	}}
	svc := newTestService(store, cache)

	results, err := svc.Search(context.Background(), SearchInput{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].CurrentPrice.Equal(sentinel))
}

func TestSearch_StaleCacheRecomputed(t *testing.T) {
	store := memory.NewStore()
	departure := time.Now().Add(72 * time.Hour)
	f := seedFlight(store, "FB1", "DEL", "BOM", departure, "500", 100, 200)

	// Cache thinks more seats are left than the row just read; its price
	// must not be served.
	cache := &fakeCache{fares: map[int64]*domain.FlightFare{
		f.ID: {FlightID: f.ID, CurrentPrice: decimal.RequireFromString("1.00"), DemandFactor: 1.0, SeatsRemaining: 150},
	}}
	svc := newTestService(store, cache)

	results, err := svc.Search(context.Background(), SearchInput{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].CurrentPrice.Equal(decimal.RequireFromString("625")))
}

func TestSearch_CacheErrorFallsBack(t *testing.T) {
	store := memory.NewStore()
	departure := time.Now().Add(72 * time.Hour)
	seedFlight(store, "FB1", "DEL", "BOM", departure, "500", 200, 200)

	svc := newTestService(store, &fakeCache{err: context.DeadlineExceeded})

	results, err := svc.Search(context.Background(), SearchInput{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].CurrentPrice.Equal(decimal.RequireFromString("500")))
}

func TestGetByID(t *testing.T) {
	store := memory.NewStore()
	f := seedFlight(store, "FB1", "DEL", "BOM", time.Now().Add(24*time.Hour), "500", 0, 200)
	svc := newTestService(store, nil)

	got, err := svc.GetByID(context.Background(), f.ID)
	require.NoError(t, err)
	// Sold out: 1.5x.
	assert.True(t, got.CurrentPrice.Equal(decimal.RequireFromString("750")))

	_, err = svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeatMap(t *testing.T) {
	store := memory.NewStore()
	f := seedFlight(store, "FB1", "DEL", "BOM", time.Now().Add(24*time.Hour), "500", 10, 12)
	svc := newTestService(store, nil)

	err := store.Bookings().Create(context.Background(), &domain.Booking{
		UserID: 1, FlightID: f.ID, PNR: "PNRSEATMAP", Status: domain.BookingStatusConfirmed,
	}, []domain.Passenger{
		{FlightID: f.ID, SeatNumber: "2B", SeatType: domain.SeatTypeMiddle, FullName: "Asha Rao"},
		{FlightID: f.ID, SeatNumber: "1A", SeatType: domain.SeatTypeWindow, FullName: "Vikram Rao"},
	})
	require.NoError(t, err)

	seatMap, err := svc.SeatMap(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, seatMap.TotalSeats)
	assert.Equal(t, 10, seatMap.SeatsRemaining)
	assert.Equal(t, []string{"1A", "2B"}, seatMap.OccupiedSeats)
}

func TestCreate(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store, nil)
	departure := time.Now().Add(96 * time.Hour)

	flight, err := svc.Create(context.Background(), CreateFlightInput{
		FlightNumber:  "fb707",
		Airline:       "TestAir",
		FromAirport:   "del",
		ToAirport:     "maa",
		DepartureTime: departure,
		ArrivalTime:   departure.Add(2 * time.Hour),
		BasePrice:     decimal.RequireFromString("450"),
		TotalSeats:    180,
	})
	require.NoError(t, err)
	assert.Equal(t, "FB707", flight.FlightNumber)
	assert.Equal(t, "DEL", flight.FromAirport)
	assert.Equal(t, 180, flight.SeatsRemaining)
	assert.Equal(t, 1.0, flight.DemandFactor)
	assert.Equal(t, domain.FlightStatusScheduled, flight.Status)

	// The opening price is on record immediately.
	assert.Equal(t, 1, store.HistoryLen(flight.ID))
}

func TestCreate_Validation(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store, nil)
	departure := time.Now().Add(96 * time.Hour)

	valid := CreateFlightInput{
		FlightNumber:  "FB1",
		Airline:       "TestAir",
		FromAirport:   "DEL",
		ToAirport:     "MAA",
		DepartureTime: departure,
		ArrivalTime:   departure.Add(2 * time.Hour),
		BasePrice:     decimal.RequireFromString("450"),
		TotalSeats:    180,
	}

	tests := []struct {
		name   string
		mutate func(*CreateFlightInput)
	}{
		{"short airport code", func(in *CreateFlightInput) { in.FromAirport = "DL" }},
		{"arrival before departure", func(in *CreateFlightInput) { in.ArrivalTime = departure.Add(-time.Hour) }},
		{"zero price", func(in *CreateFlightInput) { in.BasePrice = decimal.Zero }},
		{"no seats", func(in *CreateFlightInput) { in.TotalSeats = 0 }},
		{"too many seats", func(in *CreateFlightInput) { in.TotalSeats = 700 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
}

func TestSetDemandFactor(t *testing.T) {
	store := memory.NewStore()
	f := seedFlight(store, "FB1", "DEL", "BOM", time.Now().Add(24*time.Hour), "500", 200, 200)
	svc := newTestService(store, nil)

	got, err := svc.SetDemandFactor(context.Background(), f.ID, 9.9)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxDemandFactor, got.DemandFactor)
}

func TestPriceHistory(t *testing.T) {
	store := memory.NewStore()
	f := seedFlight(store, "FB1", "DEL", "BOM", time.Now().Add(24*time.Hour), "500", 200, 200)
	svc := newTestService(store, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.SetDemandFactor(context.Background(), f.ID, 1.0+float64(i)/10)
		require.NoError(t, err)
	}

	points, err := svc.PriceHistory(context.Background(), f.ID, 2)
	require.NoError(t, err)
	assert.Len(t, points, 2)
	// Newest first: the last demand change is on top.
	assert.InDelta(t, 1.2, points[0].DemandFactor, 1e-9)

	_, err = svc.PriceHistory(context.Background(), 99, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
