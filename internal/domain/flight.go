package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Demand factor bounds. Values supplied from outside are clamped into
// this range before they touch pricing.
const (
	MinDemandFactor = 0.80
	MaxDemandFactor = 1.60
)

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "SCHEDULED"
	FlightStatusDeparted  FlightStatus = "DEPARTED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
)

type Flight struct {
	ID             int64           `json:"id"`
	FlightNumber   string          `json:"flight_number"`
	Airline        string          `json:"airline"`
	FromAirport    string          `json:"from_airport"`
	ToAirport      string          `json:"to_airport"`
	DepartureTime  time.Time       `json:"departure_time"`
	ArrivalTime    time.Time       `json:"arrival_time"`
	BasePrice      decimal.Decimal `json:"base_price"`
	TotalSeats     int             `json:"total_seats"`
	SeatsRemaining int             `json:"seats_remaining"`
	DemandFactor   float64         `json:"demand_factor"`
	Status         FlightStatus    `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ClampDemandFactor forces v into [MinDemandFactor, MaxDemandFactor].
func ClampDemandFactor(v float64) float64 {
	if v < MinDemandFactor {
		return MinDemandFactor
	}
	if v > MaxDemandFactor {
		return MaxDemandFactor
	}
	return v
}

// PricePoint is one append-only price history entry, written after every
// inventory mutation.
type PricePoint struct {
	ID             int64           `json:"id"`
	FlightID       int64           `json:"flight_id"`
	RecordedPrice  decimal.Decimal `json:"recorded_price"`
	DemandFactor   float64         `json:"demand_factor"`
	SeatsRemaining int             `json:"seats_remaining"`
	RecordedAt     time.Time       `json:"recorded_at"`
}
