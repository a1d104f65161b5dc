package service

import (
	"context"
	"testing"
	"time"

	"skybook/internal/booking"
	apperrors "skybook/internal/errors"
	"skybook/internal/models"
	"skybook/internal/repository"
	"skybook/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type purchaseFixture struct {
	reservations *mocks.MockReservationStore
	flights      *mocks.MockFlightStore
	aircraft     *mocks.MockAircraftStore
	seats        *mocks.MockSeatStore
	tickets      *mocks.MockTicketStore
	users        *mocks.MockUserStore
	payments     *mocks.MockPaymentProcessor
	guard        *mocks.MockIdempotencyGuard
	publisher    *mocks.MockPublisher
	svc          *BookingService
}

func newPurchaseFixture() *purchaseFixture {
	f := &purchaseFixture{
		reservations: new(mocks.MockReservationStore),
		flights:      new(mocks.MockFlightStore),
		aircraft:     new(mocks.MockAircraftStore),
		seats:        new(mocks.MockSeatStore),
		tickets:      new(mocks.MockTicketStore),
		users:        new(mocks.MockUserStore),
		payments:     new(mocks.MockPaymentProcessor),
		guard:        new(mocks.MockIdempotencyGuard),
		publisher:    new(mocks.MockPublisher),
	}
	f.svc = NewBookingService(BookingDeps{
		Reservations: f.reservations,
		Flights:      f.flights,
		Aircraft:     f.aircraft,
		Seats:        f.seats,
		Tickets:      f.tickets,
		Users:        f.users,
		Payments:     f.payments,
		Guard:        f.guard,
		Publisher:    f.publisher,
	})
	f.svc.now = func() time.Time { return testNow }
	return f
}

func pendingReservation() *models.Reservation {
	return &models.Reservation{
		ID:             10,
		Code:           "RES-ABC123",
		UserID:         7,
		TripType:       models.TripOneWay,
		FlightIDs:      []int64{100},
		Status:         models.ReservationPending,
		HeldClass:      models.ClassEconomy,
		SeatsHeld:      true,
		PassengerCount: 2,
		ExpiresAt:      testNow.Add(12 * time.Hour),
		Passengers: []models.Passenger{
			{ID: 1, ReservationID: 10, FirstName: "Ana"},
			{ID: 2, ReservationID: 10, FirstName: "Luis"},
		},
	}
}

func testFlight() models.Flight {
	return models.Flight{
		ID:             100,
		Number:         "SB100",
		AircraftID:     5,
		DepartureAt:    testNow.Add(72 * time.Hour),
		ArrivalAt:      testNow.Add(75 * time.Hour),
		Status:         models.FlightScheduled,
		BasePriceCents: 10000,
		Fares:          models.FareTable{models.ClassBusiness: 15000},
		IsActive:       true,
	}
}

func testAircraft() *models.Aircraft {
	return &models.Aircraft{
		ID:         5,
		TotalSeats: 56,
		IsActive:   true,
		SeatConfig: models.SeatLayout{
			{Class: models.ClassBusiness, Rows: "1-2", SeatsPerRow: 4, Total: 8},
			{Class: models.ClassEconomy, Rows: "3-10", SeatsPerRow: 6, Total: 48},
		},
	}
}

func purchaseRequest() *models.PurchaseRequest {
	return &models.PurchaseRequest{
		PaymentMethod:  models.PaymentTransfer,
		PaymentDetails: map[string]string{"referencia": "TRX-1"},
		DeliveryMethod: models.DeliveryEmail,
		ServiceClass:   models.ClassBusiness,
	}
}

// expectCatalog wires the flight, aircraft and seat lookups of a purchase
func (f *purchaseFixture) expectCatalog() {
	f.flights.On("GetByIDs", mock.Anything, []int64{100}).Return([]models.Flight{testFlight()}, nil)
	f.aircraft.On("GetByID", mock.Anything, int64(5)).Return(testAircraft(), nil)
	f.seats.On("GetByFlight", mock.Anything, int64(100)).Return(booking.ExpandLayout(100, testAircraft().SeatConfig), nil)
}

func TestPurchaseIssuesOneTicketPerPassenger(t *testing.T) {
	f := newPurchaseFixture()
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(pendingReservation(), nil)
	f.expectCatalog()

	receipt := &models.PaymentReceipt{TransactionID: "tx-1", Method: models.PaymentTransfer, AmountCents: 30000}
	f.payments.On("Charge", mock.Anything, models.PaymentTransfer, mock.Anything, int64(30000)).Return(receipt, nil)

	var captured repository.IssueParams
	issued := []models.Ticket{
		{ID: 1, Code: "TKT-1", PassengerID: 1, FlightID: 100, Seat: "1A", Class: models.ClassBusiness, PriceCents: 15000, Status: models.TicketIssued},
		{ID: 2, Code: "TKT-2", PassengerID: 2, FlightID: 100, Seat: "1B", Class: models.ClassBusiness, PriceCents: 15000, Status: models.TicketIssued},
	}
	f.tickets.On("IssueBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(repository.IssueParams) }).
		Return(issued, nil)
	f.publisher.On("Publish", models.EventTicketsIssued, mock.Anything).Return(nil)

	resp, err := f.svc.Purchase(context.Background(), 7, 10, purchaseRequest())
	require.NoError(t, err)

	assert.Len(t, resp.Tickets, 2)
	assert.Equal(t, models.ReservationConfirmed, resp.Reservation.Status)
	assert.True(t, resp.Reservation.TicketsIssued)
	assert.Equal(t, models.ClassBusiness, resp.Reservation.HeldClass)
	assert.Equal(t, "tx-1", resp.Payment.TransactionID)

	assert.Equal(t, models.ReservationPending, captured.ExpectedStatus)
	assert.Equal(t, models.ClassBusiness, captured.Class)
	assert.Equal(t, 2, captured.PassengerCount)
	assert.Equal(t, booking.PaymentDeadline(testNow), captured.ExpiresAt)
	require.Len(t, captured.Tickets, 2)
	assert.Equal(t, "1A", captured.Tickets[0].Seat)
	assert.Equal(t, "1B", captured.Tickets[1].Seat)
	for _, tk := range captured.Tickets {
		assert.Equal(t, int64(15000), tk.PriceCents)
		assert.Equal(t, models.TicketIssued, tk.Status)
		assert.Equal(t, testFlight().DepartureAt.Add(24*time.Hour), tk.ExpiresAt)
		assert.NotEmpty(t, tk.Code)
	}
	assert.NotEqual(t, captured.Tickets[0].Code, captured.Tickets[1].Code)

	f.payments.AssertExpectations(t)
	f.tickets.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestPurchaseHonoursRequestedSeats(t *testing.T) {
	f := newPurchaseFixture()
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(pendingReservation(), nil)
	f.expectCatalog()
	f.payments.On("Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.PaymentReceipt{TransactionID: "tx-2"}, nil)

	var captured repository.IssueParams
	f.tickets.On("IssueBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(repository.IssueParams) }).
		Return([]models.Ticket{}, nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	req := purchaseRequest()
	req.SeatAssignments = [][]string{{"2c", ""}}

	_, err := f.svc.Purchase(context.Background(), 7, 10, req)
	require.NoError(t, err)

	require.Len(t, captured.Tickets, 2)
	assert.Equal(t, "2C", captured.Tickets[0].Seat)
	assert.Equal(t, "1A", captured.Tickets[1].Seat)
}

func TestPurchaseRejectsBadSeatRequests(t *testing.T) {
	tests := []struct {
		name        string
		assignments [][]string
		wantErr     error
	}{
		{name: "wrong flight count", assignments: [][]string{{"1A", "1B"}, {"1A", "1B"}}, wantErr: apperrors.ErrValidation},
		{name: "wrong passenger count", assignments: [][]string{{"1A"}}, wantErr: apperrors.ErrValidation},
		{name: "seat in another class", assignments: [][]string{{"5A", "1B"}}, wantErr: apperrors.ErrValidation},
		{name: "same seat twice", assignments: [][]string{{"1A", "1A"}}, wantErr: apperrors.ErrSeatUnavailable},
		{name: "unknown seat", assignments: [][]string{{"40A", "1B"}}, wantErr: apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPurchaseFixture()
			f.reservations.On("GetByID", mock.Anything, int64(10)).Return(pendingReservation(), nil)
			f.expectCatalog()

			req := purchaseRequest()
			req.SeatAssignments = tt.assignments

			_, err := f.svc.Purchase(context.Background(), 7, 10, req)
			assert.ErrorIs(t, err, tt.wantErr)
			f.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPurchaseRequiresConfiguredClass(t *testing.T) {
	f := newPurchaseFixture()
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(pendingReservation(), nil)
	f.expectCatalog()

	req := purchaseRequest()
	req.ServiceClass = models.ClassFirst

	_, err := f.svc.Purchase(context.Background(), 7, 10, req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseByCardRequiresStoredCard(t *testing.T) {
	f := newPurchaseFixture()
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(pendingReservation(), nil)
	f.users.On("GetByID", mock.Anything, int64(7)).Return(&models.User{ID: 7}, nil)

	req := purchaseRequest()
	req.PaymentMethod = models.PaymentCard

	_, err := f.svc.Purchase(context.Background(), 7, 10, req)
	assert.ErrorIs(t, err, apperrors.ErrPaymentMethodUnavailable)
}

func TestPurchaseHomeDeliveryNeedsAddress(t *testing.T) {
	f := newPurchaseFixture()
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(pendingReservation(), nil)

	req := purchaseRequest()
	req.DeliveryMethod = models.DeliveryHome

	_, err := f.svc.Purchase(context.Background(), 7, 10, req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPurchaseOfForeignReservationIsNotFound(t *testing.T) {
	f := newPurchaseFixture()
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(pendingReservation(), nil)

	_, err := f.svc.Purchase(context.Background(), 99, 10, purchaseRequest())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPurchaseExpiresOverdueReservation(t *testing.T) {
	f := newPurchaseFixture()
	res := pendingReservation()
	res.ExpiresAt = testNow.Add(-time.Minute)
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(res, nil)
	f.reservations.On("Expire", mock.Anything, int64(10), testNow).Return(true, nil)
	f.publisher.On("Publish", models.EventReservationExpired, mock.Anything).Return(nil)

	_, err := f.svc.Purchase(context.Background(), 7, 10, purchaseRequest())
	assert.ErrorIs(t, err, apperrors.ErrExpired)
	f.reservations.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestPurchaseConfirmedReservationPastPaymentDeadline(t *testing.T) {
	f := newPurchaseFixture()
	res := pendingReservation()
	res.Status = models.ReservationConfirmed
	res.ExpiresAt = testNow.Add(-time.Hour)
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(res, nil)
	f.expectCatalog()

	receipt := &models.PaymentReceipt{TransactionID: "tx-2", Method: models.PaymentTransfer, AmountCents: 30000}
	f.payments.On("Charge", mock.Anything, models.PaymentTransfer, mock.Anything, int64(30000)).Return(receipt, nil)
	f.tickets.On("IssueBatch", mock.Anything, mock.Anything).Return([]models.Ticket{
		{ID: 1, Code: "TKT-1", PassengerID: 1, FlightID: 100, Seat: "1A", Class: models.ClassBusiness, PriceCents: 15000, Status: models.TicketIssued},
		{ID: 2, Code: "TKT-2", PassengerID: 2, FlightID: 100, Seat: "1B", Class: models.ClassBusiness, PriceCents: 15000, Status: models.TicketIssued},
	}, nil)
	f.publisher.On("Publish", models.EventTicketsIssued, mock.Anything).Return(nil)

	_, err := f.svc.Purchase(context.Background(), 7, 10, purchaseRequest())
	require.NoError(t, err)
	f.reservations.AssertNotCalled(t, "Expire", mock.Anything, mock.Anything, mock.Anything)
	f.tickets.AssertExpectations(t)
}

func TestPurchaseRejectsIssuedReservation(t *testing.T) {
	f := newPurchaseFixture()
	res := pendingReservation()
	res.Status = models.ReservationConfirmed
	res.TicketsIssued = true
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(res, nil)

	_, err := f.svc.Purchase(context.Background(), 7, 10, purchaseRequest())
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestPurchaseDeclinedPaymentLeavesNoTrace(t *testing.T) {
	f := newPurchaseFixture()
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(pendingReservation(), nil)
	f.expectCatalog()
	f.payments.On("Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrPaymentDeclined)

	_, err := f.svc.Purchase(context.Background(), 7, 10, purchaseRequest())
	assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)
	f.tickets.AssertNotCalled(t, "IssueBatch", mock.Anything, mock.Anything)
}

func TestPurchaseRefundsWhenIssuanceFails(t *testing.T) {
	f := newPurchaseFixture()
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(pendingReservation(), nil)
	f.expectCatalog()
	f.payments.On("Charge", mock.Anything, mock.Anything, mock.Anything, int64(30000)).
		Return(&models.PaymentReceipt{TransactionID: "tx-3", AmountCents: 30000}, nil)
	f.payments.On("Refund", mock.Anything, "tx-3", int64(30000)).Return()
	f.tickets.On("IssueBatch", mock.Anything, mock.Anything).Return(nil, apperrors.ErrInsufficientInventory)

	_, err := f.svc.Purchase(context.Background(), 7, 10, purchaseRequest())
	assert.ErrorIs(t, err, apperrors.ErrInsufficientInventory)
	f.payments.AssertExpectations(t)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPurchaseRejectsDuplicateIdempotencyKey(t *testing.T) {
	f := newPurchaseFixture()
	f.guard.On("AcquireIdempotencyKey", mock.Anything, "purchase:7:10:key-1", 24*time.Hour).Return(false, nil)

	req := purchaseRequest()
	req.IdempotencyKey = "key-1"

	_, err := f.svc.Purchase(context.Background(), 7, 10, req)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateRequest)
	f.reservations.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestPurchaseReleasesIdempotencyKeyOnFailure(t *testing.T) {
	f := newPurchaseFixture()
	f.guard.On("AcquireIdempotencyKey", mock.Anything, "purchase:7:10:key-2", 24*time.Hour).Return(true, nil)
	f.guard.On("ReleaseIdempotencyKey", mock.Anything, "purchase:7:10:key-2").Return(nil)
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(nil, nil)

	req := purchaseRequest()
	req.IdempotencyKey = "key-2"

	_, err := f.svc.Purchase(context.Background(), 7, 10, req)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.guard.AssertExpectations(t)
}

func TestPurchaseInsufficientSeatsBeforeCharging(t *testing.T) {
	f := newPurchaseFixture()
	res := pendingReservation()
	res.PassengerCount = 9
	res.Passengers = make([]models.Passenger, 9)
	for i := range res.Passengers {
		res.Passengers[i].ID = int64(i + 1)
	}
	f.reservations.On("GetByID", mock.Anything, int64(10)).Return(res, nil)
	f.expectCatalog()

	_, err := f.svc.Purchase(context.Background(), 7, 10, purchaseRequest())
	assert.ErrorIs(t, err, apperrors.ErrInsufficientInventory)
	f.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
