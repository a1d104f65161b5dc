package repository

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"skybook/internal/booking"
	"skybook/internal/database"
	apperrors "skybook/internal/errors"
	"skybook/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB подключается к TEST_DATABASE_DSN; без него тесты пропускаются
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}
	db, err := database.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })
	return db
}

// code3 - случайный трехбуквенный код для уникальных справочников
func code3() string {
	var b strings.Builder
	for _, c := range strings.ReplaceAll(uuid.NewString(), "-", "")[:3] {
		b.WriteByte(byte('A' + c%26))
	}
	return b.String()
}

func createTestFlight(t *testing.T, repos *Repositories) *models.Flight {
	t.Helper()
	ctx := context.Background()

	airline := &models.Airline{Code: code3(), Name: "Test Air", Country: "Colombia", IsActive: true}
	require.NoError(t, repos.Airlines.Create(ctx, airline))

	origin := &models.Airport{Code: code3(), Name: "Origin", City: "Bogota", Country: "Colombia", IsActive: true}
	require.NoError(t, repos.Airports.Create(ctx, origin))
	destination := &models.Airport{Code: code3(), Name: "Destination", City: "Cali", Country: "Colombia", IsActive: true}
	require.NoError(t, repos.Airports.Create(ctx, destination))

	layout := models.SeatLayout{
		{Class: models.ClassBusiness, Rows: "1-2", SeatsPerRow: 4, Total: 8},
		{Class: models.ClassEconomy, Rows: "3-4", SeatsPerRow: 6, Total: 12},
	}
	aircraft := &models.Aircraft{
		AirlineID:    airline.ID,
		Model:        "Test 20",
		Registration: "T-" + uuid.NewString()[:8],
		TotalSeats:   20,
		SeatConfig:   layout,
		IsActive:     true,
	}
	require.NoError(t, repos.Aircraft.Create(ctx, aircraft))

	departure := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Minute)
	flight := &models.Flight{
		Number:          "TT" + uuid.NewString()[:4],
		AircraftID:      aircraft.ID,
		OriginID:        origin.ID,
		DestinationID:   destination.ID,
		DepartureAt:     departure,
		ArrivalAt:       departure.Add(time.Hour),
		DurationMinutes: 60,
		Status:          models.FlightScheduled,
		BasePriceCents:  10000,
		Fares:           models.FareTable{},
		Direct:          true,
		IsActive:        true,
	}
	ledger := []models.FlightInventory{
		{Class: models.ClassBusiness, Total: 8, Available: 8},
		{Class: models.ClassEconomy, Total: 12, Available: 12},
	}
	seats := func(flightID int64) []models.FlightSeat { return booking.ExpandLayout(flightID, layout) }
	require.NoError(t, repos.Flights.Create(ctx, flight, ledger, seats))
	return flight
}

func TestInventoryNeverOversells(t *testing.T) {
	repos := NewRepositories(openTestDB(t))
	flight := createTestFlight(t, repos)
	ctx := context.Background()

	var ok, short atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repos.Inventory.Reserve(ctx, flight.ID, models.ClassEconomy, 1)
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, apperrors.ErrInsufficientInventory):
				short.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(12), ok.Load())
	assert.Equal(t, int32(8), short.Load())

	inv, err := repos.Inventory.Get(ctx, flight.ID, models.ClassEconomy)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Available)
}

func TestInventoryReserveDoesNotClamp(t *testing.T) {
	repos := NewRepositories(openTestDB(t))
	flight := createTestFlight(t, repos)
	ctx := context.Background()

	err := repos.Inventory.Reserve(ctx, flight.ID, models.ClassBusiness, 9)
	require.ErrorIs(t, err, apperrors.ErrInsufficientInventory)

	inv, err := repos.Inventory.Get(ctx, flight.ID, models.ClassBusiness)
	require.NoError(t, err)
	assert.Equal(t, 8, inv.Available)
}

func TestInventoryReleaseCapsAtTotal(t *testing.T) {
	repos := NewRepositories(openTestDB(t))
	flight := createTestFlight(t, repos)
	ctx := context.Background()

	require.NoError(t, repos.Inventory.Reserve(ctx, flight.ID, models.ClassBusiness, 3))
	require.NoError(t, repos.Inventory.Release(ctx, flight.ID, models.ClassBusiness, 5))

	ledger, err := repos.Inventory.GetByFlight(ctx, flight.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, models.ClassBusiness, ledger[0].Class)
	assert.Equal(t, 8, ledger[0].Available)
}

func TestFlightCreateExpandsSeatMap(t *testing.T) {
	repos := NewRepositories(openTestDB(t))
	flight := createTestFlight(t, repos)

	seats, err := repos.Seats.GetByFlight(context.Background(), flight.ID)
	require.NoError(t, err)
	assert.Len(t, seats, 20)
}
