package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.search)
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.GET("/:id/seats", h.seatMap)
	router.GET("/:id/price-history", h.priceHistory)
	router.PATCH("/:id/demand", h.setDemand)
}

type createFlightRequest struct {
	FlightNumber  string          `json:"flight_number"`
	Airline       string          `json:"airline"`
	FromAirport   string          `json:"from_airport"`
	ToAirport     string          `json:"to_airport"`
	DepartureTime time.Time       `json:"departure_time"`
	ArrivalTime   time.Time       `json:"arrival_time"`
	BasePrice     decimal.Decimal `json:"base_price"`
	TotalSeats    int             `json:"total_seats"`
}

type setDemandRequest struct {
	DemandFactor float64 `json:"demand_factor"`
}

func (h *FlightHandler) search(c *gin.Context) {
	input := flights.SearchInput{
		Origin:      c.Query("from"),
		Destination: c.Query("to"),
		SortBy:      c.DefaultQuery("sort_by", "departure"),
		Order:       c.DefaultQuery("order", "asc"),
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		input.Date = &date
	}

	results, err := h.service.Search(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flights": results, "count": len(results)})
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Create(c.Request.Context(), flights.CreateFlightInput{
		FlightNumber:  req.FlightNumber,
		Airline:       req.Airline,
		FromAirport:   req.FromAirport,
		ToAirport:     req.ToAirport,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		BasePrice:     req.BasePrice,
		TotalSeats:    req.TotalSeats,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) seatMap(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	seatMap, err := h.service.SeatMap(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seatMap)
}

func (h *FlightHandler) priceHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	points, err := h.service.PriceHistory(c.Request.Context(), id, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if points == nil {
		points = []domain.PricePoint{}
	}
	c.JSON(http.StatusOK, gin.H{"flight_id": id, "history": points})
}

func (h *FlightHandler) setDemand(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req setDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flight, err := h.service.SetDemandFactor(c.Request.Context(), id, req.DemandFactor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
