package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"
	"skybook/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ticketFixture struct {
	tickets   *mocks.MockTicketStore
	flights   *mocks.MockFlightStore
	payments  *mocks.MockPaymentProcessor
	publisher *mocks.MockPublisher
	svc       *TicketService
}

func newTicketFixture(now time.Time) *ticketFixture {
	f := &ticketFixture{
		tickets:   new(mocks.MockTicketStore),
		flights:   new(mocks.MockFlightStore),
		payments:  new(mocks.MockPaymentProcessor),
		publisher: new(mocks.MockPublisher),
	}
	f.svc = NewTicketService(f.tickets, f.flights, f.payments, f.publisher)
	f.svc.now = func() time.Time { return now }
	return f
}

func issuedTicket() *models.Ticket {
	return &models.Ticket{
		ID:            3,
		Code:          "TKT-3",
		ReservationID: 10,
		PassengerID:   1,
		FlightID:      100,
		UserID:        7,
		Seat:          "1A",
		Class:         models.ClassBusiness,
		PriceCents:    15000,
		Status:        models.TicketIssued,
	}
}

// departureAt is the departure of testFlight
var departureAt = testNow.Add(72 * time.Hour)

func TestCheckInWithinWindow(t *testing.T) {
	now := departureAt.Add(-5 * time.Hour)
	f := newTicketFixture(now)
	f.tickets.On("GetByID", mock.Anything, int64(3)).Return(issuedTicket(), nil)
	f.flights.On("GetByID", mock.Anything, int64(100)).Return(&models.Flight{ID: 100, DepartureAt: departureAt}, nil)

	checked := issuedTicket()
	checked.CheckedIn = true
	checked.CheckedInAt = &now
	baggage := models.BaggageList{{WeightKg: 23, Description: "maleta"}}
	f.tickets.On("CheckIn", mock.Anything, int64(3), baggage, []string{"wheelchair"}, now).Return(checked, nil)
	f.publisher.On("Publish", models.EventTicketCheckedIn, mock.Anything).Return(nil)

	got, err := f.svc.CheckIn(context.Background(), 7, 3, &models.CheckInRequest{
		Baggage:      []models.BaggageRequest{{WeightKg: 23, Description: "maleta"}},
		SpecialNeeds: []string{"wheelchair"},
	})
	require.NoError(t, err)
	assert.True(t, got.CheckedIn)
	f.tickets.AssertExpectations(t)
}

func TestCheckInOutsideWindow(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{name: "thirty hours before", now: departureAt.Add(-30 * time.Hour), wantErr: apperrors.ErrCheckInTooEarly},
		{name: "thirty minutes before", now: departureAt.Add(-30 * time.Minute), wantErr: apperrors.ErrCheckInClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTicketFixture(tt.now)
			f.tickets.On("GetByID", mock.Anything, int64(3)).Return(issuedTicket(), nil)
			f.flights.On("GetByID", mock.Anything, int64(100)).Return(&models.Flight{ID: 100, DepartureAt: departureAt}, nil)

			_, err := f.svc.CheckIn(context.Background(), 7, 3, &models.CheckInRequest{})
			assert.ErrorIs(t, err, tt.wantErr)
			f.tickets.AssertNotCalled(t, "CheckIn", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCheckInRejectsHeavyBaggage(t *testing.T) {
	f := newTicketFixture(departureAt.Add(-2 * time.Hour))
	f.tickets.On("GetByID", mock.Anything, int64(3)).Return(issuedTicket(), nil)
	f.flights.On("GetByID", mock.Anything, int64(100)).Return(&models.Flight{ID: 100, DepartureAt: departureAt}, nil)

	_, err := f.svc.CheckIn(context.Background(), 7, 3, &models.CheckInRequest{
		Baggage: []models.BaggageRequest{{WeightKg: 51}},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCancelTicketRefundsEightyPercent(t *testing.T) {
	now := departureAt.Add(-48 * time.Hour)
	f := newTicketFixture(now)
	f.tickets.On("GetByID", mock.Anything, int64(3)).Return(issuedTicket(), nil)
	f.flights.On("GetByID", mock.Anything, int64(100)).Return(&models.Flight{ID: 100, DepartureAt: departureAt}, nil)

	refund := int64(12000)
	cancelled := issuedTicket()
	cancelled.Status = models.TicketCancelled
	cancelled.RefundCents = &refund
	f.tickets.On("Cancel", mock.Anything, int64(3), int64(12000), now).Return(cancelled, nil)
	f.payments.On("Refund", mock.Anything, "TKT-3", int64(12000)).Return()
	f.publisher.On("Publish", models.EventTicketCancelled, mock.Anything).Return(nil)

	resp, err := f.svc.Cancel(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), resp.RefundCents)
	assert.Equal(t, models.TicketCancelled, resp.Ticket.Status)
	f.payments.AssertExpectations(t)
}

func TestCancelTicketAfterDeparture(t *testing.T) {
	f := newTicketFixture(departureAt.Add(time.Minute))
	f.tickets.On("GetByID", mock.Anything, int64(3)).Return(issuedTicket(), nil)
	f.flights.On("GetByID", mock.Anything, int64(100)).Return(&models.Flight{ID: 100, DepartureAt: departureAt}, nil)

	_, err := f.svc.Cancel(context.Background(), 7, 3)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestCancelUsedTicket(t *testing.T) {
	f := newTicketFixture(testNow)
	used := issuedTicket()
	used.Status = models.TicketUsed
	f.tickets.On("GetByID", mock.Anything, int64(3)).Return(used, nil)
	f.flights.On("GetByID", mock.Anything, int64(100)).Return(&models.Flight{ID: 100, DepartureAt: departureAt}, nil)

	_, err := f.svc.Cancel(context.Background(), 7, 3)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestTicketOfAnotherUserIsNotFound(t *testing.T) {
	f := newTicketFixture(testNow)
	f.tickets.On("GetByID", mock.Anything, int64(3)).Return(issuedTicket(), nil)

	_, err := f.svc.Get(context.Background(), 8, 3)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMarkUsedRequiresCheckIn(t *testing.T) {
	f := newTicketFixture(testNow)
	f.tickets.On("GetByID", mock.Anything, int64(3)).Return(issuedTicket(), nil)

	_, err := f.svc.MarkUsed(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	g := newTicketFixture(testNow)
	checked := issuedTicket()
	checked.CheckedIn = true
	g.tickets.On("GetByID", mock.Anything, int64(3)).Return(checked, nil)
	used := *checked
	used.Status = models.TicketUsed
	g.tickets.On("MarkUsed", mock.Anything, int64(3)).Return(&used, nil)

	got, err := g.svc.MarkUsed(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.TicketUsed, got.Status)
}

func TestListAllTickets(t *testing.T) {
	f := newTicketFixture(time.Now())
	filter := models.AdminTicketFilter{FlightID: 100, Page: 1, PageSize: 20}
	f.tickets.On("Search", mock.Anything, filter).Return([]models.Ticket{*issuedTicket()}, nil)
	f.tickets.On("Search", mock.Anything, models.AdminTicketFilter{}).Return(nil, errors.New("connection reset"))

	list, err := f.svc.ListAll(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "TKT-3", list[0].Code)

	_, err = f.svc.ListAll(context.Background(), models.AdminTicketFilter{})
	assert.ErrorContains(t, err, "failed to search tickets")
}
