package service

import (
	"context"
	"time"

	"skybook/internal/auth"
	"skybook/internal/cache"
	"skybook/internal/external"
	"skybook/internal/logger"
	"skybook/internal/messaging"
	"skybook/internal/models"
	"skybook/internal/repository"
	"skybook/internal/search"
)

// Хранилища, от которых зависят сервисы. Реализации - в repository.

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateCard(ctx context.Context, id int64, last4 string) error
}

type AirlineStore interface {
	Create(ctx context.Context, airline *models.Airline) error
	GetByID(ctx context.Context, id int64) (*models.Airline, error)
	List(ctx context.Context) ([]models.Airline, error)
}

type AirportStore interface {
	Create(ctx context.Context, airport *models.Airport) error
	GetByID(ctx context.Context, id int64) (*models.Airport, error)
	GetByCode(ctx context.Context, code string) (*models.Airport, error)
	List(ctx context.Context) ([]models.Airport, error)
}

type AircraftStore interface {
	Create(ctx context.Context, aircraft *models.Aircraft) error
	GetByID(ctx context.Context, id int64) (*models.Aircraft, error)
	List(ctx context.Context) ([]models.Aircraft, error)
	Deactivate(ctx context.Context, id int64) error
}

type FlightStore interface {
	Create(ctx context.Context, flight *models.Flight, ledger []models.FlightInventory, seats func(flightID int64) []models.FlightSeat) error
	GetByID(ctx context.Context, id int64) (*models.Flight, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Flight, error)
	Search(ctx context.Context, params models.FlightSearchParams) ([]models.Flight, error)
	UpdateStatus(ctx context.Context, id int64, status string, refundIssued bool, at time.Time) ([]models.Ticket, error)
	Deactivate(ctx context.Context, id int64) error
}

type InventoryStore interface {
	Reserve(ctx context.Context, flightID int64, class string, count int) error
	Release(ctx context.Context, flightID int64, class string, count int) error
	GetByFlight(ctx context.Context, flightID int64) ([]models.FlightInventory, error)
}

type SeatStore interface {
	GetByFlight(ctx context.Context, flightID int64) ([]models.FlightSeat, error)
}

type ReservationStore interface {
	Create(ctx context.Context, res *models.Reservation, passengers []models.Passenger) error
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	List(ctx context.Context, userID int64, params models.ListReservationsParams) ([]models.Reservation, error)
	Search(ctx context.Context, filter models.AdminReservationFilter) ([]models.Reservation, error)
	Transition(ctx context.Context, id int64, from, to string, expiresAt *time.Time) error
	UpdateDetails(ctx context.Context, id int64, prefs models.Preferences, observations *string) error
	Expire(ctx context.Context, id int64, now time.Time) (bool, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]models.Reservation, error)
	Cancel(ctx context.Context, id int64, expectedStatus string, now time.Time) ([]models.Ticket, error)
}

type TicketStore interface {
	IssueBatch(ctx context.Context, p repository.IssueParams) ([]models.Ticket, error)
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	List(ctx context.Context, userID int64, params models.ListTicketsParams) ([]models.Ticket, error)
	Search(ctx context.Context, filter models.AdminTicketFilter) ([]models.Ticket, error)
	CheckIn(ctx context.Context, id int64, baggage models.BaggageList, specialNeeds []string, at time.Time) (*models.Ticket, error)
	Cancel(ctx context.Context, id int64, refundCents int64, at time.Time) (*models.Ticket, error)
	MarkUsed(ctx context.Context, id int64) (*models.Ticket, error)
}

// Внешние зависимости

type EventPublisher interface {
	Publish(subject string, data any) error
}

type PaymentProcessor interface {
	Charge(ctx context.Context, method string, details map[string]string, amountCents int64) (*models.PaymentReceipt, error)
	Refund(ctx context.Context, ticketCode string, amountCents int64)
}

type FlightSearcher interface {
	Index(ctx context.Context, doc search.FlightDocument) error
	Search(ctx context.Context, params models.FlightSearchParams) ([]int64, error)
}

type UserCache interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	SetUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type IdempotencyGuard interface {
	AcquireIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseIdempotencyKey(ctx context.Context, key string) error
}

type Services struct {
	Auth         *AuthService
	Fleet        *FleetService
	Flights      *FlightService
	Inventory    *InventoryService
	Reservations *ReservationService
	Bookings     *BookingService
	Tickets      *TicketService
}

// Dependencies собирает все, что нужно для построения сервисов.
// NATS, Valkey и Elasticsearch опциональны: nil отключает соответствующую функцию.
type Dependencies struct {
	Repos          *repository.Repositories
	NATS           *messaging.NATSClient
	Cache          *cache.ValkeyClient
	Search         *search.FlightIndex
	Payments       *external.PaymentSimulator
	Tokens         *auth.TokenManager
	BcryptCost     int
	IdempotencyTTL time.Duration
}

func NewServices(deps Dependencies) *Services {
	repos := deps.Repos

	var publisher EventPublisher
	if deps.NATS != nil {
		publisher = deps.NATS
	}
	var userCache UserCache
	var guard IdempotencyGuard
	if deps.Cache != nil {
		userCache = deps.Cache
		guard = deps.Cache
	}
	var searcher FlightSearcher
	if deps.Search != nil {
		searcher = deps.Search
	}

	authService := NewAuthService(repos.Users, userCache, deps.Tokens, deps.BcryptCost)
	fleetService := NewFleetService(repos.Airlines, repos.Airports, repos.Aircraft)
	flightService := NewFlightService(repos.Flights, repos.Aircraft, repos.Airports, repos.Inventory, repos.Seats, searcher, deps.Payments, publisher)
	inventoryService := NewInventoryService(repos.Inventory)
	reservationService := NewReservationService(repos.Reservations, repos.Flights, deps.Payments, publisher)
	bookingService := NewBookingService(BookingDeps{
		Reservations:   repos.Reservations,
		Flights:        repos.Flights,
		Aircraft:       repos.Aircraft,
		Seats:          repos.Seats,
		Tickets:        repos.Tickets,
		Users:          repos.Users,
		Payments:       deps.Payments,
		Guard:          guard,
		Publisher:      publisher,
		IdempotencyTTL: deps.IdempotencyTTL,
	})
	ticketService := NewTicketService(repos.Tickets, repos.Flights, deps.Payments, publisher)

	return &Services{
		Auth:         authService,
		Fleet:        fleetService,
		Flights:      flightService,
		Inventory:    inventoryService,
		Reservations: reservationService,
		Bookings:     bookingService,
		Tickets:      ticketService,
	}
}

// publish отправляет событие в NATS. Ошибка публикации не прерывает операцию.
func publish(ctx context.Context, publisher EventPublisher, subject string, payload any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(subject, payload); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"subject", subject,
			"error", err,
		)
	}
}

func reservationEvent(res *models.Reservation, reason string, at time.Time) models.ReservationEvent {
	return models.ReservationEvent{
		ReservationID:   res.ID,
		Code:            res.Code,
		UserID:          res.UserID,
		Status:          res.Status,
		FlightIDs:       res.FlightIDs,
		PassengerCount:  res.PassengerCount,
		TotalPriceCents: res.TotalPriceCents,
		Reason:          reason,
		Timestamp:       at,
	}
}

func ticketEvent(t *models.Ticket, at time.Time) models.TicketEvent {
	ev := models.TicketEvent{
		TicketID:      t.ID,
		Code:          t.Code,
		ReservationID: t.ReservationID,
		FlightID:      t.FlightID,
		UserID:        t.UserID,
		Status:        t.Status,
		Timestamp:     at,
	}
	if t.RefundCents != nil {
		ev.RefundCents = *t.RefundCents
	}
	return ev
}
