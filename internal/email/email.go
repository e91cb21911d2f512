package email

import (
	"context"

	"go.uber.org/zap"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/kafka"
)

// Sender delivers booking notifications. The current implementation only
// logs; swapping in SMTP stays behind the same method.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(_ context.Context, event kafka.BookingEvent) error {
	s.logger.Info("notification sent",
		zap.String("to", event.ContactEmail),
		zap.String("event", event.Type),
		zap.String("pnr", event.PNR),
		zap.Int64("flight_id", event.FlightID),
	)
	return nil
}
