package handlers

import (
	"net/http"

	"skybook/internal/middleware"
	"skybook/internal/models"

	"github.com/gin-gonic/gin"
)

// Register - POST /api/auth/register
// Регистрация пользователя, сразу выдает токен
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login - POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Me - GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "load user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// Logout - POST /api/auth/logout
// Отзывает текущий токен до конца его срока
func (h *Handlers) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		handleServiceError(c, err, "logout")
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateCard - PUT /api/auth/card
func (h *Handlers) UpdateCard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.UpdateCard(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err, "update card")
		return
	}

	c.JSON(http.StatusOK, user)
}
