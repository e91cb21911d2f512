package payment

import (
	"context"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
)

func TestSimulator_AlwaysApproves(t *testing.T) {
	sim := NewSimulator(0, 1)
	for i := 0; i < 50; i++ {
		err := sim.Charge(context.Background(), "PAY_TEST", domain.PaymentMethodUPI, decimal.NewFromInt(100))
		assert.NoError(t, err)
	}
}

func TestSimulator_AlwaysDeclines(t *testing.T) {
	sim := NewSimulator(1, 1)
	err := sim.Charge(context.Background(), "PAY_TEST", domain.PaymentMethodCard, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, domain.ErrPaymentFailed)
}

func TestSimulator_Validation(t *testing.T) {
	sim := NewSimulator(0, 1)

	err := sim.Charge(context.Background(), "PAY_TEST", "BARTER", decimal.NewFromInt(100))
	assert.True(t, domain.IsValidation(err))

	err = sim.Charge(context.Background(), "PAY_TEST", domain.PaymentMethodUPI, decimal.Zero)
	assert.True(t, domain.IsValidation(err))
}

func TestNewReference(t *testing.T) {
	pattern := regexp.MustCompile(`^PAY_[0-9A-F]{16}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := NewReference()
		assert.Regexp(t, pattern, ref)
		seen[ref] = true
	}
	assert.Len(t, seen, 100)
}
