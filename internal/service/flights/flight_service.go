package flights

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/pricing"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/repository"
)

type FlightUseCase interface {
	Search(ctx context.Context, input SearchInput) ([]FlightWithPrice, error)
	GetByID(ctx context.Context, id int64) (*FlightWithPrice, error)
	SeatMap(ctx context.Context, flightID int64) (*SeatMap, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	SetDemandFactor(ctx context.Context, flightID int64, factor float64) (*domain.Flight, error)
	PriceHistory(ctx context.Context, flightID int64, limit int) ([]domain.PricePoint, error)
}

// FareCache reads the derived current-price read model. A nil result means
// a miss and the price is recomputed from the live snapshot.
type FareCache interface {
	GetFare(ctx context.Context, flightID int64) (*domain.FlightFare, error)
}

// DemandSetter is the inventory operation behind demand factor updates.
type DemandSetter interface {
	SetDemandFactor(ctx context.Context, flightID int64, value float64) (*domain.Flight, error)
}

// Recorder seeds the price history when a flight is created.
type Recorder interface {
	Record(ctx context.Context, flight *domain.Flight) error
}

type SearchInput struct {
	Origin      string
	Destination string
	Date        *time.Time
	SortBy      string // "price" or "departure"
	Order       string // "asc" or "desc"
}

type FlightWithPrice struct {
	domain.Flight
	CurrentPrice decimal.Decimal `json:"current_price"`
}

type SeatMap struct {
	FlightID       int64    `json:"flight_id"`
	TotalSeats     int      `json:"total_seats"`
	SeatsRemaining int      `json:"seats_remaining"`
	OccupiedSeats  []string `json:"occupied_seats"`
}

type CreateFlightInput struct {
	FlightNumber  string          `json:"flight_number"`
	Airline       string          `json:"airline"`
	FromAirport   string          `json:"from_airport"`
	ToAirport     string          `json:"to_airport"`
	DepartureTime time.Time       `json:"departure_time"`
	ArrivalTime   time.Time       `json:"arrival_time"`
	BasePrice     decimal.Decimal `json:"base_price"`
	TotalSeats    int             `json:"total_seats"`
}

type FlightService struct {
	repo     repository.FlightRepository
	history  repository.HistoryRepository
	demand   DemandSetter
	recorder Recorder
	cache    FareCache
	logger   *zap.Logger
}

func NewFlightService(repo repository.FlightRepository, history repository.HistoryRepository, demand DemandSetter, recorder Recorder, cache FareCache, logger *zap.Logger) *FlightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlightService{repo: repo, history: history, demand: demand, recorder: recorder, cache: cache, logger: logger}
}

// Search lists bookable flights with a live fare per result. The cached
// read-model price is used only when it matches the snapshot just read;
// otherwise the fare comes straight from the pricing function, so a stale
// cache can never show a price the current occupancy does not justify.
func (s *FlightService) Search(ctx context.Context, input SearchInput) ([]FlightWithPrice, error) {
	flights, err := s.repo.Search(ctx, repository.FlightFilter{
		Origin:      strings.ToUpper(strings.TrimSpace(input.Origin)),
		Destination: strings.ToUpper(strings.TrimSpace(input.Destination)),
		Date:        input.Date,
		SortBy:      input.SortBy,
		Order:       input.Order,
	})
	if err != nil {
		return nil, err
	}

	results := make([]FlightWithPrice, len(flights))
	for i := range flights {
		results[i] = FlightWithPrice{
			Flight:       flights[i],
			CurrentPrice: s.currentPrice(ctx, &flights[i]),
		}
	}

	if input.SortBy == "price" {
		desc := input.Order == "desc"
		sort.SliceStable(results, func(i, j int) bool {
			if desc {
				return results[i].CurrentPrice.GreaterThan(results[j].CurrentPrice)
			}
			return results[i].CurrentPrice.LessThan(results[j].CurrentPrice)
		})
	}
	return results, nil
}

func (s *FlightService) currentPrice(ctx context.Context, f *domain.Flight) decimal.Decimal {
	if s.cache != nil {
		fare, err := s.cache.GetFare(ctx, f.ID)
		if err != nil {
			s.logger.Warn("fare cache read failed", zap.Int64("flight_id", f.ID), zap.Error(err))
		} else if fare != nil && fare.SeatsRemaining == f.SeatsRemaining && fare.DemandFactor == f.DemandFactor {
			return fare.CurrentPrice
		}
	}
	return pricing.Price(f)
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*FlightWithPrice, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &FlightWithPrice{Flight: *f, CurrentPrice: s.currentPrice(ctx, f)}, nil
}

func (s *FlightService) SeatMap(ctx context.Context, flightID int64) (*SeatMap, error) {
	f, err := s.repo.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.repo.AssignedSeats(ctx, flightID)
	if err != nil {
		return nil, err
	}
	occupied := make([]string, 0, len(assigned))
	for seat := range assigned {
		occupied = append(occupied, seat)
	}
	sort.Strings(occupied)
	return &SeatMap{
		FlightID:       f.ID,
		TotalSeats:     f.TotalSeats,
		SeatsRemaining: f.SeatsRemaining,
		OccupiedSeats:  occupied,
	}, nil
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if len(input.FromAirport) != 3 || len(input.ToAirport) != 3 {
		return nil, domain.NewValidationError("airport", "codes must be 3 letters")
	}
	if !input.ArrivalTime.After(input.DepartureTime) {
		return nil, domain.NewValidationError("arrival_time", "must be after departure")
	}
	if input.BasePrice.Sign() <= 0 {
		return nil, domain.NewValidationError("base_price", "must be positive")
	}
	if input.TotalSeats <= 0 || input.TotalSeats > 500 {
		return nil, domain.NewValidationError("total_seats", "must be between 1 and 500")
	}

	flight := &domain.Flight{
		FlightNumber:  strings.ToUpper(strings.TrimSpace(input.FlightNumber)),
		Airline:       input.Airline,
		FromAirport:   strings.ToUpper(input.FromAirport),
		ToAirport:     strings.ToUpper(input.ToAirport),
		DepartureTime: input.DepartureTime,
		ArrivalTime:   input.ArrivalTime,
		BasePrice:     input.BasePrice,
		TotalSeats:    input.TotalSeats,
		DemandFactor:  1.0,
		Status:        domain.FlightStatusScheduled,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}
	flight.SeatsRemaining = flight.TotalSeats

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, flight); err != nil {
			s.logger.Warn("initial price record failed", zap.Int64("flight_id", flight.ID), zap.Error(err))
		}
	}
	return flight, nil
}

func (s *FlightService) SetDemandFactor(ctx context.Context, flightID int64, factor float64) (*domain.Flight, error) {
	return s.demand.SetDemandFactor(ctx, flightID, factor)
}

func (s *FlightService) PriceHistory(ctx context.Context, flightID int64, limit int) ([]domain.PricePoint, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if _, err := s.repo.GetByID(ctx, flightID); err != nil {
		return nil, err
	}
	return s.history.ListByFlight(ctx, flightID, limit)
}

var _ FlightUseCase = (*FlightService)(nil)
