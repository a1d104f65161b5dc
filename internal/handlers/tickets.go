package handlers

import (
	"net/http"

	"skybook/internal/models"

	"github.com/gin-gonic/gin"
)

type ticketListQuery struct {
	Status        string `form:"status" binding:"omitempty,oneof=emitido usado cancelado reembolsado"`
	ReservationID int64  `form:"reservation_id" binding:"omitempty,min=1"`
	Page          int    `form:"page,default=1" binding:"min=1"`
	PageSize      int    `form:"page_size,default=20" binding:"min=1,max=100"`
}

// ListTickets - GET /api/tickets
func (h *Handlers) ListTickets(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var q ticketListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tickets, err := h.tickets.List(c.Request.Context(), userID, models.ListTicketsParams{
		Status:        q.Status,
		ReservationID: q.ReservationID,
		Page:          q.Page,
		PageSize:      q.PageSize,
	})
	if err != nil {
		handleServiceError(c, err, "list tickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// GetTicket - GET /api/tickets/:id
func (h *Handlers) GetTicket(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	ticket, err := h.tickets.Get(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err, "get ticket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// CheckIn - POST /api/tickets/:id/check-in
// Окно регистрации: от 24 часов до 1 часа до вылета
func (h *Handlers) CheckIn(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.CheckInRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ticket, err := h.tickets.CheckIn(c.Request.Context(), userID, id, &req)
	if err != nil {
		handleServiceError(c, err, "check in")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// CancelTicket - PATCH /api/tickets/:id/cancel
// Возврат 80% цены, только до вылета
func (h *Handlers) CancelTicket(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	response, err := h.tickets.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err, "cancel ticket")
		return
	}

	c.JSON(http.StatusOK, response)
}

// BoardTicket - PATCH /api/tickets/:id/board
func (h *Handlers) BoardTicket(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ticket, err := h.tickets.MarkUsed(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "board ticket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}
