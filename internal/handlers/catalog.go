package handlers

import (
	"net/http"

	"skybook/internal/models"

	"github.com/gin-gonic/gin"
)

// Справочники: авиакомпании, аэропорты, самолеты

// CreateAirline - POST /api/airlines
func (h *Handlers) CreateAirline(c *gin.Context) {
	var req models.CreateAirlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	airline, err := h.fleet.CreateAirline(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "create airline")
		return
	}

	c.JSON(http.StatusCreated, airline)
}

// ListAirlines - GET /api/airlines
func (h *Handlers) ListAirlines(c *gin.Context) {
	airlines, err := h.fleet.ListAirlines(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "list airlines")
		return
	}

	c.JSON(http.StatusOK, airlines)
}

// GetAirline - GET /api/airlines/:id
func (h *Handlers) GetAirline(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	airline, err := h.fleet.GetAirline(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get airline")
		return
	}

	c.JSON(http.StatusOK, airline)
}

// CreateAirport - POST /api/airports
func (h *Handlers) CreateAirport(c *gin.Context) {
	var req models.CreateAirportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	airport, err := h.fleet.CreateAirport(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "create airport")
		return
	}

	c.JSON(http.StatusCreated, airport)
}

// ListAirports - GET /api/airports
func (h *Handlers) ListAirports(c *gin.Context) {
	airports, err := h.fleet.ListAirports(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "list airports")
		return
	}

	c.JSON(http.StatusOK, airports)
}

// GetAirport - GET /api/airports/:id
func (h *Handlers) GetAirport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	airport, err := h.fleet.GetAirport(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get airport")
		return
	}

	c.JSON(http.StatusOK, airport)
}

// CreateAircraft - POST /api/aircraft
// Конфигурация салона проверяется в сервисе
func (h *Handlers) CreateAircraft(c *gin.Context) {
	var req models.CreateAircraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	aircraft, err := h.fleet.CreateAircraft(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "create aircraft")
		return
	}

	c.JSON(http.StatusCreated, aircraft)
}

// ListAircraft - GET /api/aircraft
func (h *Handlers) ListAircraft(c *gin.Context) {
	aircraft, err := h.fleet.ListAircraft(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "list aircraft")
		return
	}

	c.JSON(http.StatusOK, aircraft)
}

// GetAircraft - GET /api/aircraft/:id
func (h *Handlers) GetAircraft(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	aircraft, err := h.fleet.GetAircraft(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get aircraft")
		return
	}

	c.JSON(http.StatusOK, aircraft)
}

// DeactivateAircraft - PATCH /api/aircraft/:id/deactivate
// 409 если у самолета есть активные рейсы
func (h *Handlers) DeactivateAircraft(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.fleet.DeactivateAircraft(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "deactivate aircraft")
		return
	}

	c.Status(http.StatusNoContent)
}
