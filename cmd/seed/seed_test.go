package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"skybook/internal/booking"
	apperrors "skybook/internal/errors"
	"skybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleStartsNextDay(t *testing.T) {
	now := time.Date(2026, 6, 10, 21, 30, 0, 0, time.UTC)
	flights := schedule(routes, now, 2)

	require.Len(t, flights, len(routes)*2)
	first := flights[0]
	assert.Equal(t, time.Date(2026, 6, 11, 7, 0, 0, 0, time.UTC), first.departureAt)
	assert.Equal(t, first.departureAt.Add(55*time.Minute), first.arrivalAt)
	assert.Equal(t, 12, flights[len(routes)].departureAt.Day())
	for _, f := range flights {
		assert.True(t, f.departureAt.After(now))
	}
}

func TestSeedLayoutIsValid(t *testing.T) {
	layout := make([]models.SeatClassConfig, 0, len(a320Layout))
	for _, c := range a320Layout {
		layout = append(layout, models.SeatClassConfig{Class: c.Class, Rows: c.Rows, SeatsPerRow: c.SeatsPerRow, Total: c.Total})
	}
	require.NoError(t, booking.ValidateLayout(150, layout))
}

func TestRoutesReferenceSeededCatalog(t *testing.T) {
	codes := map[string]bool{}
	for _, a := range airports {
		codes[a.Code] = true
	}
	registrations := map[string]bool{}
	for _, a := range fleet {
		registrations[a.registration] = true
	}
	for _, r := range routes {
		assert.True(t, codes[r.origin], r.number)
		assert.True(t, codes[r.destination], r.number)
		assert.True(t, registrations[r.aircraft], r.number)
	}
}

type fakeCatalog struct {
	nextID   int64
	airlines []models.Airline
	airports []models.Airport
	aircraft []models.Aircraft
}

func (c *fakeCatalog) id() int64 { c.nextID++; return c.nextID }

func (c *fakeCatalog) CreateAirline(_ context.Context, req *models.CreateAirlineRequest) (*models.Airline, error) {
	a := models.Airline{ID: c.id(), Code: req.Code, IsActive: true}
	c.airlines = append(c.airlines, a)
	return &a, nil
}

func (c *fakeCatalog) ListAirlines(context.Context) ([]models.Airline, error) { return c.airlines, nil }

func (c *fakeCatalog) CreateAirport(_ context.Context, req *models.CreateAirportRequest) (*models.Airport, error) {
	a := models.Airport{ID: c.id(), Code: req.Code, IsActive: true}
	c.airports = append(c.airports, a)
	return &a, nil
}

func (c *fakeCatalog) ListAirports(context.Context) ([]models.Airport, error) { return c.airports, nil }

func (c *fakeCatalog) CreateAircraft(_ context.Context, req *models.CreateAircraftRequest) (*models.Aircraft, error) {
	a := models.Aircraft{ID: c.id(), AirlineID: req.AirlineID, Registration: req.Registration, IsActive: true}
	c.aircraft = append(c.aircraft, a)
	return &a, nil
}

func (c *fakeCatalog) ListAircraft(context.Context) ([]models.Aircraft, error) { return c.aircraft, nil }

type fakeFlights struct {
	existing []models.Flight
	created  []models.CreateFlightRequest
	reject   string
}

func (f *fakeFlights) Create(_ context.Context, req *models.CreateFlightRequest) (*models.Flight, error) {
	if req.Number == f.reject {
		return nil, fmt.Errorf("%w: departure must be in the future", apperrors.ErrValidation)
	}
	f.created = append(f.created, *req)
	return &models.Flight{Number: req.Number}, nil
}

func (f *fakeFlights) Search(context.Context, models.FlightSearchParams) ([]models.Flight, error) {
	return f.existing, nil
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	cat := &fakeCatalog{}
	s := &seeder{fleet: cat}

	require.NoError(t, s.seedCatalog(context.Background()))
	assert.Len(t, cat.airlines, len(airlines))
	assert.Len(t, cat.airports, len(airports))
	assert.Len(t, cat.aircraft, len(fleet))
	assert.Equal(t, s.airlineIDs["LA"], cat.aircraft[1].AirlineID)

	require.NoError(t, s.seedCatalog(context.Background()))
	assert.Len(t, cat.airlines, len(airlines))
	assert.Len(t, cat.aircraft, len(fleet))
}

func TestSeedFlights(t *testing.T) {
	s := &seeder{fleet: &fakeCatalog{}}
	require.NoError(t, s.seedCatalog(context.Background()))

	flights := &fakeFlights{existing: []models.Flight{{Number: "AV204"}}, reject: "LA403"}
	s.flights = flights

	created, err := s.seedFlights(context.Background(), schedule(routes, time.Now(), 1))
	require.NoError(t, err)

	assert.Equal(t, len(routes)-2, created)
	for _, req := range flights.created {
		assert.NotEqual(t, "AV204", req.Number)
		assert.NotZero(t, req.AircraftID)
		assert.NotEqual(t, req.OriginID, req.DestinationID)
		assert.Equal(t, req.BasePriceCents, req.Fares[models.ClassEconomy])
	}
}
