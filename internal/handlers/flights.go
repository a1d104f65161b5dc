package handlers

import (
	"net/http"

	"skybook/internal/models"

	"github.com/gin-gonic/gin"
)

type flightSearchQuery struct {
	Origin      string `form:"origin" binding:"omitempty,len=3,alpha"`
	Destination string `form:"destination" binding:"omitempty,len=3,alpha"`
	Date        string `form:"date"`
	Page        int    `form:"page,default=1" binding:"min=1"`
	PageSize    int    `form:"page_size,default=20" binding:"min=1,max=100"`
}

// SearchFlights - GET /api/flights
// Поиск по origin, destination (IATA) и date (YYYY-MM-DD)
func (h *Handlers) SearchFlights(c *gin.Context) {
	var q flightSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := models.FlightSearchParams{
		Origin:      q.Origin,
		Destination: q.Destination,
		Date:        q.Date,
		Page:        q.Page,
		PageSize:    q.PageSize,
	}

	flights, err := h.flights.Search(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err, "search flights")
		return
	}

	c.JSON(http.StatusOK, flights)
}

// GetFlight - GET /api/flights/:id
func (h *Handlers) GetFlight(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	flight, err := h.flights.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get flight")
		return
	}

	c.JSON(http.StatusOK, flight)
}

// FlightAvailability - GET /api/flights/:id/availability
// Свободные места по классам
func (h *Handlers) FlightAvailability(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	inventory, err := h.inventory.Availability(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get availability")
		return
	}

	c.JSON(http.StatusOK, inventory)
}

// FlightSeatMap - GET /api/flights/:id/seats
func (h *Handlers) FlightSeatMap(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	seatMap, err := h.flights.SeatMap(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get seat map")
		return
	}

	c.JSON(http.StatusOK, seatMap)
}

// CreateFlight - POST /api/flights
func (h *Handlers) CreateFlight(c *gin.Context) {
	var req models.CreateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.flights.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "create flight")
		return
	}

	c.JSON(http.StatusCreated, flight)
}

// UpdateFlightStatus - PATCH /api/flights/:id/status
// Отмена рейса возвращает деньги по всем выпущенным билетам
func (h *Handlers) UpdateFlightStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateFlightStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.flights.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handleServiceError(c, err, "update flight status")
		return
	}

	c.JSON(http.StatusOK, flight)
}

// DeactivateFlight - PATCH /api/flights/:id/deactivate
func (h *Handlers) DeactivateFlight(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.flights.Deactivate(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "deactivate flight")
		return
	}

	c.Status(http.StatusNoContent)
}
