package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
)

var (
	one  = decimal.NewFromInt(1)
	half = decimal.RequireFromString("0.5")
)

// Price computes the current fare for a flight snapshot:
//
//	base_price * demand_factor * (1 + (1 - seats_remaining/total_seats) * 0.5)
//
// rounded to 2 decimal places. It is a pure function of the snapshot: the
// same (base_price, demand_factor, seats_remaining, total_seats) tuple
// always yields the same price. Occupancy pushes the fare up to 1.5x the
// demand-adjusted base as the flight fills.
//
// Callers that need the fare actually charged for a reservation must price
// the exact snapshot committed by that reservation, not an earlier read.
func Price(f *domain.Flight) decimal.Decimal {
	total := f.TotalSeats
	if total <= 0 {
		total = 1
	}
	occupancy := decimal.NewFromInt(int64(total - f.SeatsRemaining)).
		Div(decimal.NewFromInt(int64(total)))
	multiplier := one.Add(occupancy.Mul(half))
	return f.BasePrice.
		Mul(decimal.NewFromFloat(f.DemandFactor)).
		Mul(multiplier).
		Round(2)
}
