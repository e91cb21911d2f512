package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FlightFare is the derived read model row consumed by the search layer:
// one entry per flight carrying the price implied by the latest committed
// inventory state. Refreshed after every inventory mutation.
type FlightFare struct {
	FlightID       int64           `json:"flight_id"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	DemandFactor   float64         `json:"demand_factor"`
	SeatsRemaining int             `json:"seats_remaining"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
