package handlers

import (
	"net/http"

	"skybook/internal/models"

	"github.com/gin-gonic/gin"
)

type adminReservationQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=pendiente confirmada pagada cancelada vencida"`
	UserEmail string `form:"user_email" binding:"omitempty,max=255"`
	Code      string `form:"code" binding:"omitempty,max=10"`
	Page      int    `form:"page,default=1" binding:"min=1"`
	PageSize  int    `form:"page_size,default=20" binding:"min=1,max=100"`
}

type adminTicketQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=emitido usado cancelado reembolsado"`
	Code     string `form:"code" binding:"omitempty,max=16"`
	FlightID int64  `form:"flight_id" binding:"omitempty,min=1"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
}

// ListAllReservations - GET /api/admin/reservations
// Бронирования всех пользователей, фильтры по статусу, email и коду
func (h *Handlers) ListAllReservations(c *gin.Context) {
	var q adminReservationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.reservations.ListAll(c.Request.Context(), models.AdminReservationFilter{
		Status:    q.Status,
		UserEmail: q.UserEmail,
		Code:      q.Code,
		Page:      q.Page,
		PageSize:  q.PageSize,
	})
	if err != nil {
		handleServiceError(c, err, "list all reservations")
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListAllTickets - GET /api/admin/tickets
func (h *Handlers) ListAllTickets(c *gin.Context) {
	var q adminTicketQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.tickets.ListAll(c.Request.Context(), models.AdminTicketFilter{
		Status:   q.Status,
		Code:     q.Code,
		FlightID: q.FlightID,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		handleServiceError(c, err, "list all tickets")
		return
	}

	c.JSON(http.StatusOK, list)
}
