package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"
	"skybook/internal/search"
	"skybook/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type flightFixture struct {
	flights   *mocks.MockFlightStore
	aircraft  *mocks.MockAircraftStore
	airports  *mocks.MockAirportStore
	inventory *mocks.MockInventoryStore
	seats     *mocks.MockSeatStore
	searcher  *mocks.MockFlightSearcher
	payments  *mocks.MockPaymentProcessor
	publisher *mocks.MockPublisher
	svc       *FlightService
}

func newFlightFixture() *flightFixture {
	f := &flightFixture{
		flights:   new(mocks.MockFlightStore),
		aircraft:  new(mocks.MockAircraftStore),
		airports:  new(mocks.MockAirportStore),
		inventory: new(mocks.MockInventoryStore),
		seats:     new(mocks.MockSeatStore),
		searcher:  new(mocks.MockFlightSearcher),
		payments:  new(mocks.MockPaymentProcessor),
		publisher: new(mocks.MockPublisher),
	}
	f.svc = NewFlightService(f.flights, f.aircraft, f.airports, f.inventory, f.seats, f.searcher, f.payments, f.publisher)
	f.svc.now = func() time.Time { return testNow }
	return f
}

var (
	bogota   = &models.Airport{ID: 1, Code: "BOG", City: "Bogota", IsActive: true}
	medellin = &models.Airport{ID: 2, Code: "MDE", City: "Medellin", IsActive: true}
)

func createFlightRequest() *models.CreateFlightRequest {
	return &models.CreateFlightRequest{
		Number:         "sb200",
		AircraftID:     5,
		OriginID:       1,
		DestinationID:  2,
		DepartureAt:    testNow.Add(48 * time.Hour),
		ArrivalAt:      testNow.Add(49 * time.Hour),
		BasePriceCents: 10000,
		Fares:          map[string]int64{models.ClassBusiness: 25000},
	}
}

func TestCreateFlightBuildsLedgerAndSeats(t *testing.T) {
	f := newFlightFixture()
	f.aircraft.On("GetByID", mock.Anything, int64(5)).Return(testAircraft(), nil)
	f.airports.On("GetByID", mock.Anything, int64(1)).Return(bogota, nil)
	f.airports.On("GetByID", mock.Anything, int64(2)).Return(medellin, nil)

	var ledger []models.FlightInventory
	var seats []models.FlightSeat
	f.flights.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			flight := args.Get(1).(*models.Flight)
			flight.ID = 200
			ledger = args.Get(2).([]models.FlightInventory)
			seats = args.Get(3).(func(int64) []models.FlightSeat)(flight.ID)
		}).
		Return(nil)
	f.searcher.On("Index", mock.Anything, mock.MatchedBy(func(doc search.FlightDocument) bool {
		return doc.ID == 200 && doc.OriginCode == "BOG" && doc.DestinationCode == "MDE"
	})).Return(nil)

	flight, err := f.svc.Create(context.Background(), createFlightRequest())
	require.NoError(t, err)

	assert.Equal(t, "SB200", flight.Number)
	assert.Equal(t, models.FlightScheduled, flight.Status)
	assert.Equal(t, 60, flight.DurationMinutes)
	assert.True(t, flight.Direct)
	assert.Equal(t, int64(25000), flight.Fares[models.ClassBusiness])

	require.Len(t, ledger, 2)
	assert.Equal(t, models.FlightInventory{FlightID: 200, Class: models.ClassBusiness, Total: 8, Available: 8}, ledger[0])
	assert.Len(t, seats, 56)
	assert.Equal(t, int64(200), seats[0].FlightID)

	f.searcher.AssertExpectations(t)
}

func TestCreateFlightValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CreateFlightRequest)
	}{
		{name: "same airports", mutate: func(r *models.CreateFlightRequest) { r.DestinationID = 1 }},
		{name: "arrival before departure", mutate: func(r *models.CreateFlightRequest) { r.ArrivalAt = r.DepartureAt.Add(-time.Minute) }},
		{name: "departure in the past", mutate: func(r *models.CreateFlightRequest) {
			r.DepartureAt = testNow.Add(-time.Hour)
			r.ArrivalAt = testNow.Add(time.Hour)
		}},
		{name: "fare for missing cabin", mutate: func(r *models.CreateFlightRequest) {
			r.Fares = map[string]int64{models.ClassFirst: 90000}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFlightFixture()
			f.aircraft.On("GetByID", mock.Anything, int64(5)).Return(testAircraft(), nil)
			f.airports.On("GetByID", mock.Anything, int64(1)).Return(bogota, nil)
			f.airports.On("GetByID", mock.Anything, int64(2)).Return(medellin, nil)

			req := createFlightRequest()
			tt.mutate(req)

			_, err := f.svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			f.flights.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateFlightOnInactiveAircraft(t *testing.T) {
	f := newFlightFixture()
	plane := testAircraft()
	plane.IsActive = false
	f.aircraft.On("GetByID", mock.Anything, int64(5)).Return(plane, nil)

	_, err := f.svc.Create(context.Background(), createFlightRequest())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSearchUsesIndex(t *testing.T) {
	f := newFlightFixture()
	params := models.FlightSearchParams{Origin: "BOG", Destination: "MDE", Date: "2026-03-03"}
	f.searcher.On("Search", mock.Anything, params).Return([]int64{100}, nil)
	f.flights.On("GetByIDs", mock.Anything, []int64{100}).Return([]models.Flight{testFlight()}, nil)

	flights, err := f.svc.Search(context.Background(), models.FlightSearchParams{Origin: " bog", Destination: "mde", Date: "2026-03-03"})
	require.NoError(t, err)
	assert.Len(t, flights, 1)
	f.flights.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchFallsBackToDatabase(t *testing.T) {
	f := newFlightFixture()
	params := models.FlightSearchParams{Origin: "BOG"}
	f.searcher.On("Search", mock.Anything, params).Return(nil, errors.New("connection refused"))
	f.flights.On("Search", mock.Anything, params).Return([]models.Flight{testFlight()}, nil)

	flights, err := f.svc.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, flights, 1)
}

func TestSearchRejectsBadDate(t *testing.T) {
	f := newFlightFixture()

	_, err := f.svc.Search(context.Background(), models.FlightSearchParams{Date: "03/03/2026"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCancelFlightRefundsTickets(t *testing.T) {
	f := newFlightFixture()
	flight := testFlight()
	f.flights.On("GetByID", mock.Anything, int64(100)).Return(&flight, nil)

	full := int64(15000)
	refunded := []models.Ticket{{ID: 1, Code: "TKT-1", Status: models.TicketRefunded, PriceCents: 15000, RefundCents: &full}}
	f.flights.On("UpdateStatus", mock.Anything, int64(100), models.FlightCancelled, true, testNow).Return(refunded, nil)
	f.payments.On("Refund", mock.Anything, "TKT-1", int64(15000)).Return()
	f.publisher.On("Publish", models.EventTicketCancelled, mock.Anything).Return(nil)
	f.publisher.On("Publish", models.EventFlightStatusChanged, mock.Anything).Return(nil)
	f.airports.On("GetByID", mock.Anything, mock.Anything).Return(bogota, nil)
	f.searcher.On("Index", mock.Anything, mock.Anything).Return(nil)

	got, err := f.svc.UpdateStatus(context.Background(), 100, models.FlightCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.FlightCancelled, got.Status)
	f.payments.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestUpdateStatusOfCancelledFlight(t *testing.T) {
	f := newFlightFixture()
	flight := testFlight()
	flight.Status = models.FlightCancelled
	f.flights.On("GetByID", mock.Anything, int64(100)).Return(&flight, nil)

	_, err := f.svc.UpdateStatus(context.Background(), 100, models.FlightBoarding)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = f.svc.UpdateStatus(context.Background(), 100, "perdido")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDeactivateFlightWithReservations(t *testing.T) {
	f := newFlightFixture()
	f.flights.On("Deactivate", mock.Anything, int64(100)).Return(apperrors.ErrReferentialConflict)

	err := f.svc.Deactivate(context.Background(), 100)
	assert.ErrorIs(t, err, apperrors.ErrReferentialConflict)
}

func TestSeatMapOfUnknownFlight(t *testing.T) {
	f := newFlightFixture()
	f.seats.On("GetByFlight", mock.Anything, int64(404)).Return([]models.FlightSeat{}, nil)

	_, err := f.svc.SeatMap(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
