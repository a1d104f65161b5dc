package handlers

import (
	"context"
	"net/http"
	"strings"

	"skybook/internal/models"

	"github.com/gin-gonic/gin"
)

const IdempotencyHeader = "Idempotency-Key"

type reservationListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pendiente confirmada pagada cancelada vencida"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
}

// CreateReservation - POST /api/reservations
// Создать бронирование, места удерживаются в экономе до выпуска билетов
func (h *Handlers) CreateReservation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.reservations.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err, "create reservation")
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

// ListReservations - GET /api/reservations
func (h *Handlers) ListReservations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var q reservationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.reservations.List(c.Request.Context(), userID, models.ListReservationsParams{
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		handleServiceError(c, err, "list reservations")
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetReservation - GET /api/reservations/:id
func (h *Handlers) GetReservation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	reservation, err := h.reservations.Get(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err, "get reservation")
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// UpdateReservation - PATCH /api/reservations/:id
// Только предпочтения и примечания, только в статусе pendiente
func (h *Handlers) UpdateReservation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.reservations.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		handleServiceError(c, err, "update reservation")
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// ConfirmReservation - PATCH /api/reservations/:id/confirm
func (h *Handlers) ConfirmReservation(c *gin.Context) {
	h.transition(c, h.reservations.Confirm, "confirm reservation")
}

// PayReservation - PATCH /api/reservations/:id/pay
func (h *Handlers) PayReservation(c *gin.Context) {
	h.transition(c, h.reservations.MarkPaid, "mark reservation paid")
}

// CancelReservation - PATCH /api/reservations/:id/cancel
// Выпущенные билеты будущих рейсов отменяются с возвратом
func (h *Handlers) CancelReservation(c *gin.Context) {
	h.transition(c, h.reservations.Cancel, "cancel reservation")
}

func (h *Handlers) transition(c *gin.Context, apply func(context.Context, int64, int64) (*models.Reservation, error), action string) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	reservation, err := apply(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err, action)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// PurchaseTickets - POST /api/reservations/:id/purchase
// Оплата и выпуск билетов. Повтор с тем же Idempotency-Key получает 409.
func (h *Handlers) PurchaseTickets(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(IdempotencyHeader))
	if len(req.IdempotencyKey) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key must be at most 128 characters"})
		return
	}

	response, err := h.bookings.Purchase(c.Request.Context(), userID, id, &req)
	if err != nil {
		handleServiceError(c, err, "purchase tickets")
		return
	}

	c.JSON(http.StatusCreated, response)
}
