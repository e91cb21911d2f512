// Package history implements the append-only price audit log and keeps the
// derived current-price read model in step with it.
package history

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/pricing"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/repository"
)

// FareUpdater refreshes the per-flight read model consumed by search.
// Implemented by the Redis cache.
type FareUpdater interface {
	SetFare(ctx context.Context, fare domain.FlightFare) error
}

type Recorder struct {
	repo      repository.HistoryRepository
	readModel FareUpdater
	logger    *zap.Logger
	now       func() time.Time
}

func NewRecorder(repo repository.HistoryRepository, readModel FareUpdater, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{repo: repo, readModel: readModel, logger: logger, now: time.Now}
}

// Record appends a (price, demand_factor, seats_remaining, timestamp) tuple
// for the committed snapshot and pushes the same price into the read model.
// The recorded price is by construction the current price: every inventory
// mutation records, so the latest row always reflects live state.
func (r *Recorder) Record(ctx context.Context, flight *domain.Flight) error {
	price := pricing.Price(flight)
	point := &domain.PricePoint{
		FlightID:       flight.ID,
		RecordedPrice:  price,
		DemandFactor:   flight.DemandFactor,
		SeatsRemaining: flight.SeatsRemaining,
		RecordedAt:     r.now(),
	}
	if err := r.repo.Insert(ctx, point); err != nil {
		return err
	}

	if r.readModel != nil {
		fare := domain.FlightFare{
			FlightID:       flight.ID,
			CurrentPrice:   price,
			DemandFactor:   flight.DemandFactor,
			SeatsRemaining: flight.SeatsRemaining,
			UpdatedAt:      point.RecordedAt,
		}
		if err := r.readModel.SetFare(ctx, fare); err != nil {
			r.logger.Warn("read model refresh failed",
				zap.Int64("flight_id", flight.ID), zap.Error(err))
		}
	}
	return nil
}
