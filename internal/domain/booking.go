package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending        BookingStatus = "PENDING"
	BookingStatusPendingPayment BookingStatus = "PENDING_PAYMENT"
	BookingStatusConfirmed      BookingStatus = "CONFIRMED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
)

type SeatType string

const (
	SeatTypeWindow SeatType = "WINDOW"
	SeatTypeAisle  SeatType = "AISLE"
	SeatTypeMiddle SeatType = "MIDDLE"
)

type Booking struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	FlightID         int64           `json:"flight_id"`
	PNR              string          `json:"pnr"`
	Status           BookingStatus   `json:"status"`
	PriceEach        decimal.Decimal `json:"price_each"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	ContactEmail     string          `json:"contact_email"`
	ContactPhone     string          `json:"contact_phone"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	RefundAmount     decimal.Decimal `json:"refund_amount"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type Passenger struct {
	ID             int64    `json:"id"`
	BookingID      int64    `json:"booking_id"`
	FlightID       int64    `json:"flight_id"`
	SeatNumber     string   `json:"seat_number"`
	SeatType       SeatType `json:"seat_type"`
	FullName       string   `json:"full_name"`
	DateOfBirth    string   `json:"date_of_birth,omitempty"`
	PassportNumber string   `json:"passport_number,omitempty"`
}

// BookingDetail is the read model returned by booking history: a booking
// with its passengers and payment, if one exists.
type BookingDetail struct {
	Booking    Booking     `json:"booking"`
	Passengers []Passenger `json:"passengers"`
	Payment    *Payment    `json:"payment,omitempty"`
}
