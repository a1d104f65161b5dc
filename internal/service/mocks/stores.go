package mocks

import (
	"context"
	"time"

	"skybook/internal/models"
	"skybook/internal/repository"
	"skybook/internal/search"

	"github.com/stretchr/testify/mock"
)

// MockUserStore is a mock implementation of service.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) UpdateCard(ctx context.Context, id int64, last4 string) error {
	args := m.Called(ctx, id, last4)
	return args.Error(0)
}

// MockAirlineStore is a mock implementation of service.AirlineStore
type MockAirlineStore struct {
	mock.Mock
}

func (m *MockAirlineStore) Create(ctx context.Context, airline *models.Airline) error {
	args := m.Called(ctx, airline)
	return args.Error(0)
}

func (m *MockAirlineStore) GetByID(ctx context.Context, id int64) (*models.Airline, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Airline), args.Error(1)
}

func (m *MockAirlineStore) List(ctx context.Context) ([]models.Airline, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Airline), args.Error(1)
}

// MockAirportStore is a mock implementation of service.AirportStore
type MockAirportStore struct {
	mock.Mock
}

func (m *MockAirportStore) Create(ctx context.Context, airport *models.Airport) error {
	args := m.Called(ctx, airport)
	return args.Error(0)
}

func (m *MockAirportStore) GetByID(ctx context.Context, id int64) (*models.Airport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Airport), args.Error(1)
}

func (m *MockAirportStore) GetByCode(ctx context.Context, code string) (*models.Airport, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Airport), args.Error(1)
}

func (m *MockAirportStore) List(ctx context.Context) ([]models.Airport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Airport), args.Error(1)
}

// MockAircraftStore is a mock implementation of service.AircraftStore
type MockAircraftStore struct {
	mock.Mock
}

func (m *MockAircraftStore) Create(ctx context.Context, aircraft *models.Aircraft) error {
	args := m.Called(ctx, aircraft)
	return args.Error(0)
}

func (m *MockAircraftStore) GetByID(ctx context.Context, id int64) (*models.Aircraft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Aircraft), args.Error(1)
}

func (m *MockAircraftStore) List(ctx context.Context) ([]models.Aircraft, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Aircraft), args.Error(1)
}

func (m *MockAircraftStore) Deactivate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFlightStore is a mock implementation of service.FlightStore
type MockFlightStore struct {
	mock.Mock
}

func (m *MockFlightStore) Create(ctx context.Context, flight *models.Flight, ledger []models.FlightInventory, seats func(flightID int64) []models.FlightSeat) error {
	args := m.Called(ctx, flight, ledger, seats)
	return args.Error(0)
}

func (m *MockFlightStore) GetByID(ctx context.Context, id int64) (*models.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flight), args.Error(1)
}

func (m *MockFlightStore) GetByIDs(ctx context.Context, ids []int64) ([]models.Flight, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flight), args.Error(1)
}

func (m *MockFlightStore) Search(ctx context.Context, params models.FlightSearchParams) ([]models.Flight, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flight), args.Error(1)
}

func (m *MockFlightStore) UpdateStatus(ctx context.Context, id int64, status string, refundIssued bool, at time.Time) ([]models.Ticket, error) {
	args := m.Called(ctx, id, status, refundIssued, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockFlightStore) Deactivate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInventoryStore is a mock implementation of service.InventoryStore
type MockInventoryStore struct {
	mock.Mock
}

func (m *MockInventoryStore) Reserve(ctx context.Context, flightID int64, class string, count int) error {
	args := m.Called(ctx, flightID, class, count)
	return args.Error(0)
}

func (m *MockInventoryStore) Release(ctx context.Context, flightID int64, class string, count int) error {
	args := m.Called(ctx, flightID, class, count)
	return args.Error(0)
}

func (m *MockInventoryStore) GetByFlight(ctx context.Context, flightID int64) ([]models.FlightInventory, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FlightInventory), args.Error(1)
}

// MockSeatStore is a mock implementation of service.SeatStore
type MockSeatStore struct {
	mock.Mock
}

func (m *MockSeatStore) GetByFlight(ctx context.Context, flightID int64) ([]models.FlightSeat, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FlightSeat), args.Error(1)
}

// MockReservationStore is a mock implementation of service.ReservationStore
type MockReservationStore struct {
	mock.Mock
}

func (m *MockReservationStore) Create(ctx context.Context, res *models.Reservation, passengers []models.Passenger) error {
	args := m.Called(ctx, res, passengers)
	return args.Error(0)
}

func (m *MockReservationStore) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockReservationStore) List(ctx context.Context, userID int64, params models.ListReservationsParams) ([]models.Reservation, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *MockReservationStore) Search(ctx context.Context, filter models.AdminReservationFilter) ([]models.Reservation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *MockReservationStore) Transition(ctx context.Context, id int64, from, to string, expiresAt *time.Time) error {
	args := m.Called(ctx, id, from, to, expiresAt)
	return args.Error(0)
}

func (m *MockReservationStore) UpdateDetails(ctx context.Context, id int64, prefs models.Preferences, observations *string) error {
	args := m.Called(ctx, id, prefs, observations)
	return args.Error(0)
}

func (m *MockReservationStore) Expire(ctx context.Context, id int64, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationStore) ListOverdue(ctx context.Context, now time.Time, limit int) ([]models.Reservation, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *MockReservationStore) Cancel(ctx context.Context, id int64, expectedStatus string, now time.Time) ([]models.Ticket, error) {
	args := m.Called(ctx, id, expectedStatus, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

// MockTicketStore is a mock implementation of service.TicketStore
type MockTicketStore struct {
	mock.Mock
}

func (m *MockTicketStore) IssueBatch(ctx context.Context, p repository.IssueParams) ([]models.Ticket, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockTicketStore) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketStore) List(ctx context.Context, userID int64, params models.ListTicketsParams) ([]models.Ticket, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockTicketStore) Search(ctx context.Context, filter models.AdminTicketFilter) ([]models.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockTicketStore) CheckIn(ctx context.Context, id int64, baggage models.BaggageList, specialNeeds []string, at time.Time) (*models.Ticket, error) {
	args := m.Called(ctx, id, baggage, specialNeeds, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketStore) Cancel(ctx context.Context, id int64, refundCents int64, at time.Time) (*models.Ticket, error) {
	args := m.Called(ctx, id, refundCents, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketStore) MarkUsed(ctx context.Context, id int64) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

// MockPublisher is a mock implementation of service.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(subject string, data any) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

// MockPaymentProcessor is a mock implementation of service.PaymentProcessor
type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) Charge(ctx context.Context, method string, details map[string]string, amountCents int64) (*models.PaymentReceipt, error) {
	args := m.Called(ctx, method, details, amountCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentReceipt), args.Error(1)
}

func (m *MockPaymentProcessor) Refund(ctx context.Context, ticketCode string, amountCents int64) {
	m.Called(ctx, ticketCode, amountCents)
}

// MockFlightSearcher is a mock implementation of service.FlightSearcher
type MockFlightSearcher struct {
	mock.Mock
}

func (m *MockFlightSearcher) Index(ctx context.Context, doc search.FlightDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockFlightSearcher) Search(ctx context.Context, params models.FlightSearchParams) ([]int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockUserCache is a mock implementation of service.UserCache
type MockUserCache struct {
	mock.Mock
}

func (m *MockUserCache) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCache) SetUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCache) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserCache) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockUserCache) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockIdempotencyGuard is a mock implementation of service.IdempotencyGuard
type MockIdempotencyGuard struct {
	mock.Mock
}

func (m *MockIdempotencyGuard) AcquireIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyGuard) ReleaseIdempotencyKey(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
