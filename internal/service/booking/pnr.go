package booking

import (
	"crypto/rand"
	"strings"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/inventory"
)

// PNR alphabet omits 0/O and 1/I to keep record locators readable over the
// phone.
const pnrCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePNR allocates a 10-character record locator: a PNR prefix plus
// seven random characters. Uniqueness is enforced by the bookings table;
// collisions are retried by the caller.
func GeneratePNR() (string, error) {
	buf := make([]byte, 7)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = pnrCharset[int(buf[i])%len(pnrCharset)]
	}
	return "PNR" + string(buf), nil
}

func validateBookFlight(input *BookFlightInput) error {
	if input.FlightID <= 0 {
		return domain.NewValidationError("flight_id", "must be positive")
	}
	if input.UserID <= 0 {
		return domain.NewValidationError("user_id", "must be positive")
	}
	if !strings.Contains(input.ContactEmail, "@") {
		return domain.NewValidationError("contact_email", "must be a valid email address")
	}
	if strings.TrimSpace(input.ContactPhone) == "" {
		return domain.NewValidationError("contact_phone", "required")
	}
	if len(input.Passengers) == 0 {
		return domain.NewValidationError("passengers", "at least one passenger required")
	}
	if len(input.Passengers) > maxPassengersPerBooking {
		return domain.NewValidationError("passengers", "too many passengers for one booking")
	}

	seen := make(map[string]bool, len(input.Passengers))
	for i := range input.Passengers {
		p := &input.Passengers[i]
		if len(strings.TrimSpace(p.FullName)) < 2 {
			return domain.NewValidationError("full_name", "must be at least 2 characters")
		}
		seat := inventory.NormalizeSeat(p.SeatNumber)
		p.SeatNumber = seat
		if seat != "" {
			if !inventory.ValidSeatLabel(seat) {
				return domain.NewValidationError("seat_number", "use a label like 12A")
			}
			if seen[seat] {
				return domain.NewValidationError("seat_number", "seat "+seat+" requested twice")
			}
			seen[seat] = true
		}
		switch p.SeatType {
		case "", domain.SeatTypeWindow, domain.SeatTypeAisle, domain.SeatTypeMiddle:
		default:
			return domain.NewValidationError("seat_type", "must be WINDOW, AISLE or MIDDLE")
		}
	}
	return nil
}
