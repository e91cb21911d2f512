package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusSuccess  PaymentStatus = "SUCCESS"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodCard       PaymentMethod = "CARD"
	PaymentMethodWallet     PaymentMethod = "WALLET"
	PaymentMethodNetBanking PaymentMethod = "NETBANKING"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodWallet, PaymentMethodNetBanking:
		return true
	}
	return false
}

type Payment struct {
	ID         int64           `json:"id"`
	BookingID  int64           `json:"booking_id"`
	Reference  string          `json:"reference"`
	Method     PaymentMethod   `json:"method"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Status     PaymentStatus   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CancelledBooking is the archival snapshot written once per cancelled
// booking. Rows are never updated or deleted.
type CancelledBooking struct {
	ArchiveID     int64           `json:"archive_id"`
	PNR           string          `json:"pnr"`
	UserID        int64           `json:"user_id"`
	FlightID      int64           `json:"flight_id"`
	PricePaid     decimal.Decimal `json:"price_paid"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
	Reason        string          `json:"reason"`
	PassengerName string          `json:"passenger_name"`
	CancelledAt   time.Time       `json:"cancelled_at"`
}
