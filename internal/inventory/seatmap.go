package inventory

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
)

// Cabin layout: six seats per row labelled A-F, rows numbered from 1.
// A/F are window, C/D aisle, B/E middle.
const seatLetters = "ABCDEF"

var seatPattern = regexp.MustCompile(`^\d{1,2}[A-F]$`)

// NormalizeSeat uppercases and trims a seat label.
func NormalizeSeat(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// ValidSeatLabel reports whether label looks like "12A".
func ValidSeatLabel(label string) bool {
	return seatPattern.MatchString(label)
}

// SeatTypeFor derives the seat type from the seat letter.
func SeatTypeFor(label string) domain.SeatType {
	switch label[len(label)-1] {
	case 'A', 'F':
		return domain.SeatTypeWindow
	case 'C', 'D':
		return domain.SeatTypeAisle
	default:
		return domain.SeatTypeMiddle
	}
}

// seatLabel maps a zero-based seat index to its label.
func seatLabel(i int) string {
	row := i/len(seatLetters) + 1
	return strconv.Itoa(row) + string(seatLetters[i%len(seatLetters)])
}

// seatOrdinal maps a label back to its zero-based index, reporting whether
// the label parses at all.
func seatOrdinal(label string) (int, bool) {
	if !ValidSeatLabel(label) {
		return 0, false
	}
	letter := label[len(label)-1]
	row, err := strconv.Atoi(label[:len(label)-1])
	if err != nil || row < 1 {
		return 0, false
	}
	return (row-1)*len(seatLetters) + strings.IndexByte(seatLetters, letter), true
}
