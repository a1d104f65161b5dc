package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"skybook/internal/auth"
	apperrors "skybook/internal/errors"
	"skybook/internal/logger"
	"skybook/internal/middleware"
	"skybook/internal/models"
	"skybook/internal/service"

	"github.com/gin-gonic/gin"
)

// Узкие интерфейсы сервисов, нужные хендлерам

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	UpdateCard(ctx context.Context, userID int64, req *models.UpdateCardRequest) (*models.User, error)
}

type FleetService interface {
	CreateAirline(ctx context.Context, req *models.CreateAirlineRequest) (*models.Airline, error)
	GetAirline(ctx context.Context, id int64) (*models.Airline, error)
	ListAirlines(ctx context.Context) ([]models.Airline, error)
	CreateAirport(ctx context.Context, req *models.CreateAirportRequest) (*models.Airport, error)
	GetAirport(ctx context.Context, id int64) (*models.Airport, error)
	ListAirports(ctx context.Context) ([]models.Airport, error)
	CreateAircraft(ctx context.Context, req *models.CreateAircraftRequest) (*models.Aircraft, error)
	GetAircraft(ctx context.Context, id int64) (*models.Aircraft, error)
	ListAircraft(ctx context.Context) ([]models.Aircraft, error)
	DeactivateAircraft(ctx context.Context, id int64) error
}

type FlightService interface {
	Create(ctx context.Context, req *models.CreateFlightRequest) (*models.Flight, error)
	Get(ctx context.Context, id int64) (*models.Flight, error)
	Search(ctx context.Context, params models.FlightSearchParams) ([]models.Flight, error)
	SeatMap(ctx context.Context, id int64) (*models.SeatMapResponse, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.Flight, error)
	Deactivate(ctx context.Context, id int64) error
}

type InventoryService interface {
	Availability(ctx context.Context, flightID int64) ([]models.FlightInventory, error)
}

type ReservationService interface {
	Create(ctx context.Context, userID int64, req *models.CreateReservationRequest) (*models.Reservation, error)
	Get(ctx context.Context, userID, id int64) (*models.Reservation, error)
	List(ctx context.Context, userID int64, params models.ListReservationsParams) ([]models.Reservation, error)
	ListAll(ctx context.Context, filter models.AdminReservationFilter) ([]models.Reservation, error)
	Update(ctx context.Context, userID, id int64, req *models.UpdateReservationRequest) (*models.Reservation, error)
	Confirm(ctx context.Context, userID, id int64) (*models.Reservation, error)
	MarkPaid(ctx context.Context, userID, id int64) (*models.Reservation, error)
	Cancel(ctx context.Context, userID, id int64) (*models.Reservation, error)
}

type BookingService interface {
	Purchase(ctx context.Context, userID, reservationID int64, req *models.PurchaseRequest) (*models.PurchaseResponse, error)
}

type TicketService interface {
	Get(ctx context.Context, userID, id int64) (*models.Ticket, error)
	List(ctx context.Context, userID int64, params models.ListTicketsParams) ([]models.Ticket, error)
	ListAll(ctx context.Context, filter models.AdminTicketFilter) ([]models.Ticket, error)
	CheckIn(ctx context.Context, userID, id int64, req *models.CheckInRequest) (*models.Ticket, error)
	Cancel(ctx context.Context, userID, id int64) (*models.CancelTicketResponse, error)
	MarkUsed(ctx context.Context, id int64) (*models.Ticket, error)
}

type Handlers struct {
	auth         AuthService
	fleet        FleetService
	flights      FlightService
	inventory    InventoryService
	reservations ReservationService
	bookings     BookingService
	tickets      TicketService
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		auth:         services.Auth,
		fleet:        services.Fleet,
		flights:      services.Flights,
		inventory:    services.Inventory,
		reservations: services.Reservations,
		bookings:     services.Bookings,
		tickets:      services.Tickets,
	}
}

// statusFor сопоставляет доменную ошибку HTTP-статусу
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrExpired):
		return http.StatusGone
	case errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrReferentialConflict),
		errors.Is(err, apperrors.ErrInsufficientInventory),
		errors.Is(err, apperrors.ErrSeatUnavailable),
		errors.Is(err, apperrors.ErrDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrPaymentMethodUnavailable),
		errors.Is(err, apperrors.ErrCheckInTooEarly),
		errors.Is(err, apperrors.ErrCheckInClosed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError отвечает клиенту по ошибке сервиса.
// Внутренние ошибки логируются, клиенту уходит только action.
func handleServiceError(c *gin.Context, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("Failed to "+action, "error", err)
		c.JSON(status, gin.H{"error": "Failed to " + action})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// pathID читает положительный :id из пути
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// currentUser возвращает id из BearerAuth
func currentUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return id, ok
}
