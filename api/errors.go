package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
)

// writeError maps domain errors onto HTTP status codes. Anything not in the
// taxonomy is a 500 with the message hidden.
func writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSeatUnavailable), errors.Is(err, domain.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPaymentMismatch), errors.Is(err, domain.ErrPaymentFailed):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
