// Package payment holds the simulated payment gateway. Real gateway
// integration would live behind the same interface.
package payment

import (
	"context"
	"encoding/hex"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
)

// Gateway charges a payment method. Charge returns domain.ErrPaymentFailed
// on a decline; any other error is an infrastructure fault.
type Gateway interface {
	Charge(ctx context.Context, reference string, method domain.PaymentMethod, amount decimal.Decimal) error
}

// Simulator declines a configurable fraction of charges at random.
type Simulator struct {
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulator(failureRate float64, seed int64) *Simulator {
	return &Simulator{
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulator) Charge(_ context.Context, _ string, method domain.PaymentMethod, amount decimal.Decimal) error {
	if !method.Valid() {
		return domain.NewValidationError("method", "unknown payment method")
	}
	if amount.Sign() <= 0 {
		return domain.NewValidationError("amount", "must be positive")
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()

	if roll < s.failureRate {
		return domain.ErrPaymentFailed
	}
	return nil
}

// NewReference allocates a payment reference in the PAY_ namespace.
func NewReference() string {
	id := uuid.New()
	return "PAY_" + strings.ToUpper(hex.EncodeToString(id[:8]))
}

var _ Gateway = (*Simulator)(nil)
