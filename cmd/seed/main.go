package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"skybook/internal/auth"
	"skybook/internal/config"
	"skybook/internal/database"
	apperrors "skybook/internal/errors"
	"skybook/internal/external"
	"skybook/internal/logger"
	"skybook/internal/models"
	"skybook/internal/repository"
	"skybook/internal/search"
	"skybook/internal/service"

	"github.com/spf13/pflag"
)

var (
	days          = pflag.Int("days", 14, "number of days of flights to schedule")
	adminEmail    = pflag.String("admin-email", "admin@skybook.test", "email of the admin account to create")
	adminPassword = pflag.String("admin-password", "", "admin password (ADMIN_PASSWORD env if empty)")
	dryRun        = pflag.Bool("dry-run", false, "print the schedule without writing anything")
)

func main() {
	pflag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")
	log := logger.Get()

	if *dryRun {
		for _, f := range schedule(routes, time.Now(), *days) {
			fmt.Println(f)
		}
		return
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	repos := repository.NewRepositories(db)
	deps := service.Dependencies{
		Repos:      repos,
		Payments:   external.NewPaymentSimulator(cfg.Payment),
		Tokens:     auth.NewTokenManager(cfg.Auth),
		BcryptCost: cfg.Auth.BcryptCost,
	}
	if cfg.Elasticsearch.Enabled {
		index, err := search.NewFlightIndex(cfg.Elasticsearch)
		if err != nil {
			log.Warn("Elasticsearch unavailable, flights will not be indexed; run reindex-flights later", "error", err)
		} else {
			deps.Search = index
		}
	}
	services := service.NewServices(deps)

	ctx := context.Background()
	s := &seeder{fleet: services.Fleet, flights: services.Flights}

	if err := seedAdmin(ctx, repos.Users, cfg.Auth.BcryptCost); err != nil {
		logger.Fatal("Failed to seed admin", "error", err)
	}
	if err := s.seedCatalog(ctx); err != nil {
		logger.Fatal("Failed to seed catalog", "error", err)
	}
	created, err := s.seedFlights(ctx, schedule(routes, time.Now(), *days))
	if err != nil {
		logger.Fatal("Failed to seed flights", "error", err)
	}

	log.Info("Seeding completed", "flights_created", created)
}

type userCreator interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// seedAdmin создает администратора, если его еще нет. Регистрация через API
// всегда выдает роль user, поэтому админ пишется напрямую в репозиторий.
func seedAdmin(ctx context.Context, users userCreator, cost int) error {
	password := *adminPassword
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if password == "" {
		logger.Get().Warn("No admin password given, skipping admin account")
		return nil
	}

	email := strings.ToLower(*adminEmail)
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if !existing.IsAdmin() {
			logger.Get().Warn("Admin email belongs to a regular user, skipping", "email", email)
			return nil
		}
		logger.Get().Info("Admin already exists", "email", email)
		return nil
	}

	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return err
	}
	admin := &models.User{
		FirstName:    "Skybook",
		LastName:     "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	logger.Get().Info("Admin created", "email", email, "user_id", admin.ID)
	return nil
}

type catalog interface {
	CreateAirline(ctx context.Context, req *models.CreateAirlineRequest) (*models.Airline, error)
	ListAirlines(ctx context.Context) ([]models.Airline, error)
	CreateAirport(ctx context.Context, req *models.CreateAirportRequest) (*models.Airport, error)
	ListAirports(ctx context.Context) ([]models.Airport, error)
	CreateAircraft(ctx context.Context, req *models.CreateAircraftRequest) (*models.Aircraft, error)
	ListAircraft(ctx context.Context) ([]models.Aircraft, error)
}

type flightCreator interface {
	Create(ctx context.Context, req *models.CreateFlightRequest) (*models.Flight, error)
	Search(ctx context.Context, params models.FlightSearchParams) ([]models.Flight, error)
}

type seeder struct {
	fleet   catalog
	flights flightCreator

	airlineIDs  map[string]int64
	airportIDs  map[string]int64
	aircraftIDs map[string]int64
}

// seedCatalog идемпотентен: существующие записи находятся по коду или регистрации
func (s *seeder) seedCatalog(ctx context.Context) error {
	s.airlineIDs = map[string]int64{}
	existingAirlines, err := s.fleet.ListAirlines(ctx)
	if err != nil {
		return err
	}
	for _, a := range existingAirlines {
		s.airlineIDs[a.Code] = a.ID
	}
	for i := range airlines {
		if _, ok := s.airlineIDs[airlines[i].Code]; ok {
			continue
		}
		a, err := s.fleet.CreateAirline(ctx, &airlines[i])
		if err != nil {
			return fmt.Errorf("airline %s: %w", airlines[i].Code, err)
		}
		s.airlineIDs[a.Code] = a.ID
	}

	s.airportIDs = map[string]int64{}
	existingAirports, err := s.fleet.ListAirports(ctx)
	if err != nil {
		return err
	}
	for _, a := range existingAirports {
		s.airportIDs[a.Code] = a.ID
	}
	for i := range airports {
		if _, ok := s.airportIDs[airports[i].Code]; ok {
			continue
		}
		a, err := s.fleet.CreateAirport(ctx, &airports[i])
		if err != nil {
			return fmt.Errorf("airport %s: %w", airports[i].Code, err)
		}
		s.airportIDs[a.Code] = a.ID
	}

	s.aircraftIDs = map[string]int64{}
	existingAircraft, err := s.fleet.ListAircraft(ctx)
	if err != nil {
		return err
	}
	for _, a := range existingAircraft {
		if a.IsActive {
			s.aircraftIDs[a.Registration] = a.ID
		}
	}
	for _, seed := range fleet {
		if _, ok := s.aircraftIDs[seed.registration]; ok {
			continue
		}
		a, err := s.fleet.CreateAircraft(ctx, &models.CreateAircraftRequest{
			AirlineID:    s.airlineIDs[seed.airline],
			Model:        seed.model,
			Registration: seed.registration,
			TotalSeats:   150,
			SeatConfig:   a320Layout,
		})
		if err != nil {
			return fmt.Errorf("aircraft %s: %w", seed.registration, err)
		}
		s.aircraftIDs[a.Registration] = a.ID
	}

	logger.Get().Info("Catalog seeded",
		"airlines", len(s.airlineIDs),
		"airports", len(s.airportIDs),
		"aircraft", len(s.aircraftIDs))
	return nil
}

// seedFlights пропускает рейсы, номер которых уже есть в этот день
func (s *seeder) seedFlights(ctx context.Context, planned []scheduledFlight) (int, error) {
	created := 0
	for _, f := range planned {
		existing, err := s.flights.Search(ctx, models.FlightSearchParams{
			Origin:      f.origin,
			Destination: f.destination,
			Date:        f.departureAt.Format(models.DateLayout),
			Page:        1,
			PageSize:    100,
		})
		if err != nil {
			return created, err
		}
		if hasNumber(existing, f.number) {
			continue
		}

		_, err = s.flights.Create(ctx, &models.CreateFlightRequest{
			Number:         f.number,
			AircraftID:     s.aircraftIDs[f.aircraft],
			OriginID:       s.airportIDs[f.origin],
			DestinationID:  s.airportIDs[f.destination],
			DepartureAt:    f.departureAt,
			ArrivalAt:      f.arrivalAt,
			BasePriceCents: f.basePrice,
			Fares:          fares(f.basePrice),
		})
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Get().Warn("Skipping flight", "flight", f.String(), "error", err)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("flight %s: %w", f, err)
		}
		created++
	}
	return created, nil
}

func hasNumber(flights []models.Flight, number string) bool {
	for _, f := range flights {
		if f.Number == number {
			return true
		}
	}
	return false
}
