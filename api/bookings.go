package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.POST("/:id/payment", h.pay)
	router.DELETE("/:id", h.cancel)
	router.GET("/pnr/:pnr", h.byPNR)
	router.GET("/user/:user_id", h.history)
}

type passengerRequest struct {
	FullName       string `json:"full_name"`
	DateOfBirth    string `json:"date_of_birth"`
	PassportNumber string `json:"passport_number"`
	SeatNumber     string `json:"seat_number"`
	SeatType       string `json:"seat_type"`
}

type createBookingRequest struct {
	FlightID     int64              `json:"flight_id"`
	UserID       int64              `json:"user_id"`
	ContactEmail string             `json:"contact_email"`
	ContactPhone string             `json:"contact_phone"`
	Passengers   []passengerRequest `json:"passengers"`
}

type payRequest struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	passengers := make([]booking.PassengerInput, len(req.Passengers))
	for i, p := range req.Passengers {
		passengers[i] = booking.PassengerInput{
			FullName:       p.FullName,
			DateOfBirth:    p.DateOfBirth,
			PassportNumber: p.PassportNumber,
			SeatNumber:     p.SeatNumber,
			SeatType:       domain.SeatType(p.SeatType),
		}
	}

	result, err := h.service.BookFlight(c.Request.Context(), booking.BookFlightInput{
		FlightID:     req.FlightID,
		UserID:       req.UserID,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Passengers:   passengers,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *BookingHandler) pay(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	confirmed, err := h.service.ConfirmPayment(c.Request.Context(), id, domain.PaymentMethod(req.Method), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmed)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req cancelRequest
	// Body is optional on cancel.
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.CancelBooking(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) byPNR(c *gin.Context) {
	detail, err := h.service.BookingByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *BookingHandler) history(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	bookings, err := h.service.BookingHistory(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if bookings == nil {
		bookings = []domain.BookingDetail{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}
