package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/inventory"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/kafka"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/monitoring"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/payment"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/pricing"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/repository"
)

const (
	maxPassengersPerBooking = 9
	maxPNRAttempts          = 5
)

type BookingUseCase interface {
	BookFlight(ctx context.Context, input BookFlightInput) (*BookingResult, error)
	ConfirmPayment(ctx context.Context, bookingID int64, method domain.PaymentMethod, amount decimal.Decimal) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID int64, reason string) (*CancelResult, error)
	BookingByPNR(ctx context.Context, pnr string) (*domain.BookingDetail, error)
	BookingHistory(ctx context.Context, userID int64) ([]domain.BookingDetail, error)
	ExpirePendingPayments(ctx context.Context) ([]domain.Booking, error)
}

// SeatInventory is the slice of the inventory the booking manager needs.
type SeatInventory interface {
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
	Reserve(ctx context.Context, flightID int64, seats []string, fn func(snapshot *domain.Flight, seats []string) error) error
	Release(ctx context.Context, flightID int64, seats []string, fn func(snapshot *domain.Flight) error) error
	Locked(ctx context.Context, flightID int64, fn func(snapshot *domain.Flight) error) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type PassengerInput struct {
	FullName       string          `json:"full_name"`
	DateOfBirth    string          `json:"date_of_birth"`
	PassportNumber string          `json:"passport_number"`
	SeatNumber     string          `json:"seat_number"` // empty means auto-assign
	SeatType       domain.SeatType `json:"seat_type"`   // derived from the seat when empty
}

type BookFlightInput struct {
	FlightID     int64            `json:"flight_id"`
	UserID       int64            `json:"user_id"`
	ContactEmail string           `json:"contact_email"`
	ContactPhone string           `json:"contact_phone"`
	Passengers   []PassengerInput `json:"passengers"`
}

type BookingResult struct {
	Booking    domain.Booking     `json:"booking"`
	Passengers []domain.Passenger `json:"passengers"`
}

type CancelResult struct {
	Booking      domain.Booking  `json:"booking"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

type BookingService struct {
	inventory SeatInventory
	bookings  repository.BookingRepository
	payments  repository.PaymentRepository
	archive   repository.ArchiveRepository
	gateway   payment.Gateway
	producer  Producer
	refund    pricing.RefundPolicy
	logger    *zap.Logger

	bookingTopic       string
	notificationsTopic string
	paymentTimeout     time.Duration
	now                func() time.Time
	newPNR             func() (string, error)
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) { s.notificationsTopic = topic }
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) { s.now = now }
}

func WithPNRGenerator(gen func() (string, error)) BookingServiceOption {
	return func(s *BookingService) { s.newPNR = gen }
}

func NewBookingService(
	inv SeatInventory,
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	archive repository.ArchiveRepository,
	gateway payment.Gateway,
	producer Producer,
	refund pricing.RefundPolicy,
	bookingTopic string,
	paymentTimeout time.Duration,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if refund == nil {
		refund = pricing.DefaultRefundPolicy
	}
	s := &BookingService{
		inventory:      inv,
		bookings:       bookings,
		payments:       payments,
		archive:        archive,
		gateway:        gateway,
		producer:       producer,
		refund:         refund,
		logger:         logger,
		bookingTopic:   bookingTopic,
		paymentTimeout: paymentTimeout,
		now:            time.Now,
		newPNR:         GeneratePNR,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BookFlight reserves seats, prices the post-reservation snapshot and
// persists the booking with its passengers, all inside the flight's
// critical section. On any failure nothing is persisted; a lost seat race
// surfaces as domain.ErrSeatUnavailable and the caller may retry against a
// fresh price.
func (s *BookingService) BookFlight(ctx context.Context, input BookFlightInput) (*BookingResult, error) {
	if err := validateBookFlight(&input); err != nil {
		monitoring.BookingsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	seats := make([]string, len(input.Passengers))
	for i, p := range input.Passengers {
		seats[i] = inventory.NormalizeSeat(p.SeatNumber)
	}

	start := s.now()
	var result BookingResult
	err := s.inventory.Reserve(ctx, input.FlightID, seats, func(snapshot *domain.Flight, resolved []string) error {
		priceEach := pricing.Price(snapshot)
		count := decimal.NewFromInt(int64(len(input.Passengers)))

		booking := domain.Booking{
			UserID:       input.UserID,
			FlightID:     input.FlightID,
			Status:       domain.BookingStatusPendingPayment,
			PriceEach:    priceEach,
			TotalPrice:   priceEach.Mul(count).Round(2),
			ContactEmail: input.ContactEmail,
			ContactPhone: input.ContactPhone,
		}

		passengers := make([]domain.Passenger, len(input.Passengers))
		for i, p := range input.Passengers {
			seatType := p.SeatType
			if seatType == "" {
				seatType = inventory.SeatTypeFor(resolved[i])
			}
			passengers[i] = domain.Passenger{
				FlightID:       input.FlightID,
				SeatNumber:     resolved[i],
				SeatType:       seatType,
				FullName:       strings.TrimSpace(p.FullName),
				DateOfBirth:    p.DateOfBirth,
				PassportNumber: p.PassportNumber,
			}
		}

		// PNR collisions are rare; retry generation a bounded number of
		// times and never surface the collision to the caller.
		for attempt := 0; attempt < maxPNRAttempts; attempt++ {
			pnr, err := s.newPNR()
			if err != nil {
				return err
			}
			booking.PNR = pnr
			err = s.bookings.Create(ctx, &booking, passengers)
			if err == nil {
				result = BookingResult{Booking: booking, Passengers: passengers}
				return nil
			}
			if !errors.Is(err, domain.ErrDuplicatePNR) {
				return err
			}
		}
		return fmt.Errorf("pnr generation exhausted after %d attempts: %w", maxPNRAttempts, domain.ErrDuplicatePNR)
	})
	monitoring.BookingDuration.Observe(s.now().Sub(start).Seconds())

	if err != nil {
		if errors.Is(err, domain.ErrSeatUnavailable) {
			monitoring.SeatConflictsTotal.Inc()
			monitoring.BookingsTotal.WithLabelValues("seat_conflict").Inc()
		} else {
			monitoring.BookingsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	monitoring.BookingsTotal.WithLabelValues("created").Inc()
	s.publish(ctx, kafka.EventBookingCreated, &result.Booking)
	return &result, nil
}

// ConfirmPayment settles a PENDING_PAYMENT booking. The offered amount must
// equal the total recorded at booking time. On mismatch or gateway decline
// the booking is cancelled and its seats released before the error returns,
// so inventory is always consistent afterwards.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID int64, method domain.PaymentMethod, amount decimal.Decimal) (*domain.Booking, error) {
	if !method.Valid() {
		return nil, domain.NewValidationError("method", "unknown payment method")
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case domain.BookingStatusPendingPayment:
	case domain.BookingStatusCancelled:
		return nil, domain.ErrAlreadyCancelled
	default:
		return nil, domain.NewValidationError("booking", "not awaiting payment")
	}

	reference := payment.NewReference()

	if !amount.Equal(b.TotalPrice) {
		if err := s.failPayment(ctx, b, reference, method, amount, "payment amount mismatch"); err != nil {
			return nil, err
		}
		monitoring.PaymentsTotal.WithLabelValues("mismatch").Inc()
		return nil, fmt.Errorf("%w: offered %s, booked %s", domain.ErrPaymentMismatch, amount.StringFixed(2), b.TotalPrice.StringFixed(2))
	}

	// The charge itself happens outside any flight lock.
	if err := s.gateway.Charge(ctx, reference, method, amount); err != nil {
		if errors.Is(err, domain.ErrPaymentFailed) {
			if fErr := s.failPayment(ctx, b, reference, method, amount, "payment declined"); fErr != nil {
				return nil, fErr
			}
			monitoring.PaymentsTotal.WithLabelValues("declined").Inc()
			return nil, domain.ErrPaymentFailed
		}
		return nil, err
	}

	// Settlement runs under the flight's critical section, the same lock the
	// cancellation paths hold. A booking cancelled while the charge was in
	// flight is seen here and the charge is voided instead of resurrecting
	// the booking over seats that have already been given back.
	var confirmed *domain.Booking
	err = s.inventory.Locked(ctx, b.FlightID, func(_ *domain.Flight) error {
		current, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return err
		}
		if current.Status != domain.BookingStatusPendingPayment {
			void := &domain.Payment{
				BookingID:  b.ID,
				Reference:  reference,
				Method:     method,
				AmountPaid: amount,
				Status:     domain.PaymentStatusRefunded,
			}
			if err := s.payments.Create(ctx, void); err != nil {
				return err
			}
			return domain.ErrAlreadyCancelled
		}

		pay := &domain.Payment{
			BookingID:  b.ID,
			Reference:  reference,
			Method:     method,
			AmountPaid: amount,
			Status:     domain.PaymentStatusSuccess,
		}
		if err := s.payments.Create(ctx, pay); err != nil {
			return err
		}

		confirmed, err = s.bookings.Confirm(ctx, b.ID, reference)
		if errors.Is(err, domain.ErrNotFound) {
			// The status guard in the UPDATE lost to another writer.
			if uErr := s.payments.UpdateStatus(ctx, reference, domain.PaymentStatusRefunded); uErr != nil {
				return uErr
			}
			return domain.ErrAlreadyCancelled
		}
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyCancelled) {
			monitoring.PaymentsTotal.WithLabelValues("voided").Inc()
		}
		return nil, err
	}

	monitoring.PaymentsTotal.WithLabelValues("success").Inc()
	s.publish(ctx, kafka.EventBookingConfirmed, confirmed)
	return confirmed, nil
}

// failPayment cancels the booking, releases its seats and records the
// failed charge. The cancel runs first: when the booking was already
// cancelled while payment was in flight, no payment row is written.
func (s *BookingService) failPayment(ctx context.Context, b *domain.Booking, reference string, method domain.PaymentMethod, amount decimal.Decimal, reason string) error {
	if err := s.cancelHeldSeats(ctx, b, decimal.Zero, reason); err != nil {
		return err
	}

	pay := &domain.Payment{
		BookingID:  b.ID,
		Reference:  reference,
		Method:     method,
		AmountPaid: amount,
		Status:     domain.PaymentStatusFailed,
	}
	if err := s.payments.Create(ctx, pay); err != nil {
		return err
	}
	monitoring.CancellationsTotal.WithLabelValues("payment_failure").Inc()
	s.publish(ctx, kafka.EventPaymentFailed, b)
	return nil
}

// CancelBooking reverses a CONFIRMED or PENDING_PAYMENT booking, archives
// it, releases its seats and computes the refund from the configured
// policy. A repeated call observes CANCELLED inside the critical section
// and returns domain.ErrAlreadyCancelled without mutating anything.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, reason string) (*CancelResult, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case domain.BookingStatusConfirmed, domain.BookingStatusPendingPayment:
	default:
		return nil, domain.ErrAlreadyCancelled
	}

	if reason == "" {
		reason = "user requested"
	}

	passengers, err := s.bookings.Passengers(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	seats := seatNumbers(passengers)

	var result CancelResult
	err = s.inventory.Release(ctx, b.FlightID, seats, func(snapshot *domain.Flight) error {
		// Re-read under the lock: a concurrent cancel or the reaper may
		// have beaten us here.
		current, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return err
		}
		switch current.Status {
		case domain.BookingStatusConfirmed, domain.BookingStatusPendingPayment:
		default:
			return domain.ErrAlreadyCancelled
		}

		amountPaid := decimal.Zero
		if current.Status == domain.BookingStatusConfirmed {
			amountPaid = current.TotalPrice
		}
		refund := s.refund(amountPaid, snapshot.DepartureTime.Sub(s.now()))

		cancelled, err := s.bookings.Cancel(ctx, current.ID, refund, s.now(), current.Status)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAlreadyCancelled
		}
		if err != nil {
			return err
		}

		if err := s.archiveCancellation(ctx, cancelled, passengers, refund, reason); err != nil {
			return err
		}

		if current.PaymentReference != "" {
			if err := s.payments.UpdateStatus(ctx, current.PaymentReference, domain.PaymentStatusRefunded); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}

		result = CancelResult{Booking: *cancelled, RefundAmount: refund}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.CancellationsTotal.WithLabelValues("user").Inc()
	s.publish(ctx, kafka.EventBookingCancelled, &result.Booking)
	return &result, nil
}

// cancelHeldSeats is the shared rollback path for payment failures and the
// reaper: flip to CANCELLED, archive and give the seats back.
func (s *BookingService) cancelHeldSeats(ctx context.Context, b *domain.Booking, refund decimal.Decimal, reason string) error {
	passengers, err := s.bookings.Passengers(ctx, b.ID)
	if err != nil {
		return err
	}

	return s.inventory.Release(ctx, b.FlightID, seatNumbers(passengers), func(_ *domain.Flight) error {
		current, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return err
		}
		if current.Status != domain.BookingStatusPendingPayment {
			return domain.ErrAlreadyCancelled
		}
		cancelled, err := s.bookings.Cancel(ctx, b.ID, refund, s.now(), domain.BookingStatusPendingPayment)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAlreadyCancelled
		}
		if err != nil {
			return err
		}
		b.Status = cancelled.Status
		return s.archiveCancellation(ctx, cancelled, passengers, refund, reason)
	})
}

func (s *BookingService) archiveCancellation(ctx context.Context, b *domain.Booking, passengers []domain.Passenger, refund decimal.Decimal, reason string) error {
	lead := ""
	if len(passengers) > 0 {
		lead = passengers[0].FullName
	}
	return s.archive.Insert(ctx, &domain.CancelledBooking{
		PNR:           b.PNR,
		UserID:        b.UserID,
		FlightID:      b.FlightID,
		PricePaid:     b.TotalPrice,
		RefundAmount:  refund,
		Reason:        reason,
		PassengerName: lead,
		CancelledAt:   s.now(),
	})
}

// BookingByPNR resolves a record locator to its booking, passengers and
// latest payment.
func (s *BookingService) BookingByPNR(ctx context.Context, pnr string) (*domain.BookingDetail, error) {
	pnr = strings.ToUpper(strings.TrimSpace(pnr))
	if pnr == "" {
		return nil, domain.NewValidationError("pnr", "required")
	}

	b, err := s.bookings.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}
	passengers, err := s.bookings.Passengers(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	detail := &domain.BookingDetail{Booking: *b, Passengers: passengers}
	pay, err := s.payments.GetByBooking(ctx, b.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	detail.Payment = pay
	return detail, nil
}

func (s *BookingService) BookingHistory(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// ExpirePendingPayments is the reaper body: PENDING_PAYMENT bookings older
// than the payment timeout are cancelled and their seats released, each
// under its flight's critical section.
func (s *BookingService) ExpirePendingPayments(ctx context.Context) ([]domain.Booking, error) {
	cutoff := s.now().Add(-s.paymentTimeout)
	stale, err := s.bookings.ListPendingPaymentBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	expired := make([]domain.Booking, 0, len(stale))
	for i := range stale {
		b := stale[i]
		if err := s.cancelHeldSeats(ctx, &b, decimal.Zero, "payment window expired"); err != nil {
			if errors.Is(err, domain.ErrAlreadyCancelled) {
				continue
			}
			s.logger.Error("expire booking failed", zap.Int64("booking_id", b.ID), zap.Error(err))
			continue
		}
		monitoring.CancellationsTotal.WithLabelValues("reaper").Inc()
		s.publish(ctx, kafka.EventBookingExpired, &b)
		expired = append(expired, b)
	}
	return expired, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:         eventType,
		PNR:          b.PNR,
		BookingID:    b.ID,
		FlightID:     b.FlightID,
		UserID:       b.UserID,
		Status:       string(b.Status),
		TotalPrice:   b.TotalPrice,
		RefundAmount: b.RefundAmount,
		ContactEmail: b.ContactEmail,
		OccurredAt:   s.now(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, b.PNR, event); err != nil {
		s.logger.Warn("publish booking event failed",
			zap.String("type", eventType), zap.String("pnr", b.PNR), zap.Error(err))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, b.PNR, event); err != nil {
			s.logger.Warn("publish notification failed",
				zap.String("type", eventType), zap.String("pnr", b.PNR), zap.Error(err))
		}
	}
}

func seatNumbers(passengers []domain.Passenger) []string {
	seats := make([]string, len(passengers))
	for i, p := range passengers {
		seats[i] = p.SeatNumber
	}
	return seats
}

var _ BookingUseCase = (*BookingService)(nil)
