// Package memory provides in-memory implementations of the repository
// interfaces. They back the unit and concurrency tests and are not used in
// production wiring.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/repository"
)

type Store struct {
	mu         sync.RWMutex
	flights    map[int64]*domain.Flight
	bookings   map[int64]*domain.Booking
	passengers map[int64][]domain.Passenger // keyed by booking id
	payments   map[int64][]domain.Payment   // keyed by booking id
	history    []domain.PricePoint
	archive    []domain.CancelledBooking
	nextID     int64
}

func NewStore() *Store {
	return &Store{
		flights:    make(map[int64]*domain.Flight),
		bookings:   make(map[int64]*domain.Booking),
		passengers: make(map[int64][]domain.Passenger),
		payments:   make(map[int64][]domain.Payment),
	}
}

func (s *Store) Flights() repository.FlightRepository   { return &flightRepo{s} }
func (s *Store) Bookings() repository.BookingRepository { return &bookingRepo{s} }
func (s *Store) Payments() repository.PaymentRepository { return &paymentRepo{s} }
func (s *Store) History() repository.HistoryRepository  { return &historyRepo{s} }
func (s *Store) Archive() repository.ArchiveRepository  { return &archiveRepo{s} }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// SeedFlight inserts a flight directly, for test setup.
func (s *Store) SeedFlight(f domain.Flight) *domain.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == 0 {
		f.ID = s.id()
	}
	if f.Status == "" {
		f.Status = domain.FlightStatusScheduled
	}
	now := time.Now()
	f.CreatedAt, f.UpdatedAt = now, now
	cp := f
	s.flights[f.ID] = &cp
	return &cp
}

// HistoryLen reports how many price points have been recorded for a flight.
func (s *Store) HistoryLen(flightID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.history {
		if p.FlightID == flightID {
			n++
		}
	}
	return n
}

// ArchiveRows returns a copy of the cancellation archive.
func (s *Store) ArchiveRows() []domain.CancelledBooking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CancelledBooking, len(s.archive))
	copy(out, s.archive)
	return out
}

type flightRepo struct{ s *Store }

func (r *flightRepo) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.flights[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *flightRepo) Search(_ context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Flight, 0)
	for _, f := range r.s.flights {
		if f.Status != domain.FlightStatusScheduled || f.SeatsRemaining <= 0 {
			continue
		}
		if !f.DepartureTime.After(time.Now()) {
			continue
		}
		if filter.Origin != "" && !strings.EqualFold(f.FromAirport, filter.Origin) {
			continue
		}
		if filter.Destination != "" && !strings.EqualFold(f.ToAirport, filter.Destination) {
			continue
		}
		if filter.Date != nil {
			y1, m1, d1 := f.DepartureTime.Date()
			y2, m2, d2 := filter.Date.Date()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				continue
			}
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.Order == "desc" {
			return out[i].DepartureTime.After(out[j].DepartureTime)
		}
		return out[i].DepartureTime.Before(out[j].DepartureTime)
	})
	return out, nil
}

func (r *flightRepo) Create(_ context.Context, flight *domain.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	flight.ID = r.s.id()
	flight.SeatsRemaining = flight.TotalSeats
	now := time.Now()
	flight.CreatedAt, flight.UpdatedAt = now, now
	cp := *flight
	r.s.flights[flight.ID] = &cp
	return nil
}

func (r *flightRepo) AssignedSeats(_ context.Context, flightID int64) (map[string]bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seats := make(map[string]bool)
	for bookingID, list := range r.s.passengers {
		b, ok := r.s.bookings[bookingID]
		if !ok || b.Status == domain.BookingStatusCancelled {
			continue
		}
		for _, p := range list {
			if p.FlightID == flightID {
				seats[p.SeatNumber] = true
			}
		}
	}
	return seats, nil
}

func (r *flightRepo) ReserveSeats(_ context.Context, flightID int64, count int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.flights[flightID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if f.SeatsRemaining < count {
		return 0, fmt.Errorf("%w: %d seats requested", domain.ErrSeatUnavailable, count)
	}
	f.SeatsRemaining -= count
	f.UpdatedAt = time.Now()
	return f.SeatsRemaining, nil
}

func (r *flightRepo) ReleaseSeats(_ context.Context, flightID int64, count int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.flights[flightID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	f.SeatsRemaining += count
	if f.SeatsRemaining > f.TotalSeats {
		f.SeatsRemaining = f.TotalSeats
	}
	f.UpdatedAt = time.Now()
	return f.SeatsRemaining, nil
}

func (r *flightRepo) UpdateDemandFactor(_ context.Context, flightID int64, factor float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.flights[flightID]
	if !ok {
		return domain.ErrNotFound
	}
	f.DemandFactor = factor
	f.UpdatedAt = time.Now()
	return nil
}

type bookingRepo struct{ s *Store }

func (r *bookingRepo) Create(_ context.Context, booking *domain.Booking, passengers []domain.Passenger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.PNR == booking.PNR {
			return domain.ErrDuplicatePNR
		}
	}
	booking.ID = r.s.id()
	now := time.Now()
	booking.CreatedAt, booking.UpdatedAt = now, now
	cp := *booking
	r.s.bookings[booking.ID] = &cp

	stored := make([]domain.Passenger, len(passengers))
	for i := range passengers {
		passengers[i].ID = r.s.id()
		passengers[i].BookingID = booking.ID
		stored[i] = passengers[i]
	}
	r.s.passengers[booking.ID] = stored
	return nil
}

func (r *bookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *bookingRepo) GetByPNR(_ context.Context, pnr string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.bookings {
		if b.PNR == pnr {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *bookingRepo) Passengers(_ context.Context, bookingID int64) ([]domain.Passenger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := r.s.passengers[bookingID]
	out := make([]domain.Passenger, len(list))
	copy(out, list)
	return out, nil
}

func (r *bookingRepo) Confirm(_ context.Context, id int64, paymentRef string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok || b.Status != domain.BookingStatusPendingPayment {
		return nil, domain.ErrNotFound
	}
	b.Status = domain.BookingStatusConfirmed
	b.PaymentReference = paymentRef
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (r *bookingRepo) Cancel(_ context.Context, id int64, refund decimal.Decimal, at time.Time, from domain.BookingStatus) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok || b.Status != from {
		return nil, domain.ErrNotFound
	}
	b.Status = domain.BookingStatusCancelled
	b.RefundAmount = refund
	b.CancelledAt = &at
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (r *bookingRepo) ListByUser(_ context.Context, userID int64) ([]domain.BookingDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	details := make([]domain.BookingDetail, 0)
	for _, b := range r.s.bookings {
		if b.UserID != userID {
			continue
		}
		d := domain.BookingDetail{Booking: *b}
		d.Passengers = append(d.Passengers, r.s.passengers[b.ID]...)
		if payments := r.s.payments[b.ID]; len(payments) > 0 {
			last := payments[len(payments)-1]
			d.Payment = &last
		}
		details = append(details, d)
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].Booking.CreatedAt.After(details[j].Booking.CreatedAt)
	})
	return details, nil
}

func (r *bookingRepo) ListPendingPaymentBefore(_ context.Context, cutoff time.Time) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var stale []domain.Booking
	for _, b := range r.s.bookings {
		if b.Status == domain.BookingStatusPendingPayment && !b.CreatedAt.After(cutoff) {
			stale = append(stale, *b)
		}
	}
	return stale, nil
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	payment.ID = r.s.id()
	payment.CreatedAt = time.Now()
	r.s.payments[payment.BookingID] = append(r.s.payments[payment.BookingID], *payment)
	return nil
}

func (r *paymentRepo) GetByBooking(_ context.Context, bookingID int64) (*domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	payments := r.s.payments[bookingID]
	if len(payments) == 0 {
		return nil, domain.ErrNotFound
	}
	last := payments[len(payments)-1]
	return &last, nil
}

func (r *paymentRepo) UpdateStatus(_ context.Context, reference string, status domain.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for bookingID, payments := range r.s.payments {
		for i := range payments {
			if payments[i].Reference == reference {
				r.s.payments[bookingID][i].Status = status
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

type historyRepo struct{ s *Store }

func (r *historyRepo) Insert(_ context.Context, point *domain.PricePoint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	point.ID = r.s.id()
	r.s.history = append(r.s.history, *point)
	return nil
}

func (r *historyRepo) ListByFlight(_ context.Context, flightID int64, limit int) ([]domain.PricePoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.PricePoint, 0)
	for i := len(r.s.history) - 1; i >= 0 && len(out) < limit; i-- {
		if r.s.history[i].FlightID == flightID {
			out = append(out, r.s.history[i])
		}
	}
	return out, nil
}

type archiveRepo struct{ s *Store }

func (r *archiveRepo) Insert(_ context.Context, archive *domain.CancelledBooking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	archive.ArchiveID = r.s.id()
	r.s.archive = append(r.s.archive, *archive)
	return nil
}
