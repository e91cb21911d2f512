package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RefundPolicy maps the amount actually paid and the time remaining to
// departure onto a refund amount. Policies are injected into the
// cancellation path so the schedule stays configuration, not code.
type RefundPolicy func(amountPaid decimal.Decimal, untilDeparture time.Duration) decimal.Decimal

// RefundStep grants Percent of the paid amount when cancellation happens
// more than HoursBefore hours ahead of departure.
type RefundStep struct {
	HoursBefore int `yaml:"hours_before"`
	Percent     int `yaml:"percent"`
}

// DefaultRefundSteps mirrors the standard schedule: generous far out,
// nothing once the flight has departed.
var DefaultRefundSteps = []RefundStep{
	{HoursBefore: 72, Percent: 90},
	{HoursBefore: 48, Percent: 80},
	{HoursBefore: 24, Percent: 60},
	{HoursBefore: 6, Percent: 40},
	{HoursBefore: 0, Percent: 20},
}

// StepRefundPolicy builds a RefundPolicy from a step schedule. The first
// step (largest HoursBefore first) whose threshold is exceeded wins; past
// departure the refund is zero.
func StepRefundPolicy(steps []RefundStep) RefundPolicy {
	schedule := make([]RefundStep, len(steps))
	copy(schedule, steps)
	sort.Slice(schedule, func(i, j int) bool {
		return schedule[i].HoursBefore > schedule[j].HoursBefore
	})

	return func(amountPaid decimal.Decimal, untilDeparture time.Duration) decimal.Decimal {
		if untilDeparture <= 0 {
			return decimal.Zero
		}
		for _, step := range schedule {
			if untilDeparture > time.Duration(step.HoursBefore)*time.Hour {
				pct := decimal.NewFromInt(int64(step.Percent)).Div(decimal.NewFromInt(100))
				return amountPaid.Mul(pct).Round(2)
			}
		}
		return decimal.Zero
	}
}

// DefaultRefundPolicy applies DefaultRefundSteps.
var DefaultRefundPolicy = StepRefundPolicy(DefaultRefundSteps)
