package repository

import (
	"context"
	"database/sql"
	"fmt"

	"skybook/internal/database"
	apperrors "skybook/internal/errors"
	"skybook/internal/models"
)

type AirlineRepository struct {
	db *database.DB
}

func NewAirlineRepository(db *database.DB) *AirlineRepository {
	return &AirlineRepository{db: db}
}

func (r *AirlineRepository) Create(ctx context.Context, airline *models.Airline) error {
	query := `
		INSERT INTO airlines (code, name, country, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		airline.Code, airline.Name, airline.Country, airline.IsActive,
	).Scan(&airline.ID, &airline.CreatedAt)

	if isUniqueViolation(err) {
		return fmt.Errorf("%w: airline %s already exists", apperrors.ErrConflict, airline.Code)
	}
	return err
}

func (r *AirlineRepository) GetByID(ctx context.Context, id int64) (*models.Airline, error) {
	a := &models.Airline{}
	query := `SELECT id, code, name, country, is_active, created_at FROM airlines WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Code, &a.Name, &a.Country, &a.IsActive, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *AirlineRepository) List(ctx context.Context) ([]models.Airline, error) {
	query := `SELECT id, code, name, country, is_active, created_at FROM airlines ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airlines := []models.Airline{}
	for rows.Next() {
		var a models.Airline
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Country, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		airlines = append(airlines, a)
	}
	return airlines, rows.Err()
}

type AirportRepository struct {
	db *database.DB
}

func NewAirportRepository(db *database.DB) *AirportRepository {
	return &AirportRepository{db: db}
}

const airportColumns = `id, code, name, city, country, is_active, created_at`

func scanAirport(row rowScanner) (*models.Airport, error) {
	a := &models.Airport{}
	if err := row.Scan(&a.ID, &a.Code, &a.Name, &a.City, &a.Country, &a.IsActive, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AirportRepository) Create(ctx context.Context, airport *models.Airport) error {
	query := `
		INSERT INTO airports (code, name, city, country, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		airport.Code, airport.Name, airport.City, airport.Country, airport.IsActive,
	).Scan(&airport.ID, &airport.CreatedAt)

	if isUniqueViolation(err) {
		return fmt.Errorf("%w: airport %s already exists", apperrors.ErrConflict, airport.Code)
	}
	return err
}

func (r *AirportRepository) GetByID(ctx context.Context, id int64) (*models.Airport, error) {
	a, err := scanAirport(r.db.QueryRowContext(ctx, `SELECT `+airportColumns+` FROM airports WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *AirportRepository) GetByCode(ctx context.Context, code string) (*models.Airport, error) {
	a, err := scanAirport(r.db.QueryRowContext(ctx, `SELECT `+airportColumns+` FROM airports WHERE code = upper($1)`, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *AirportRepository) List(ctx context.Context) ([]models.Airport, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+airportColumns+` FROM airports ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airports := []models.Airport{}
	for rows.Next() {
		a, err := scanAirport(rows)
		if err != nil {
			return nil, err
		}
		airports = append(airports, *a)
	}
	return airports, rows.Err()
}

type AircraftRepository struct {
	db *database.DB
}

func NewAircraftRepository(db *database.DB) *AircraftRepository {
	return &AircraftRepository{db: db}
}

const aircraftColumns = `id, airline_id, model, registration, total_seats, seat_config, is_active, created_at`

func scanAircraft(row rowScanner) (*models.Aircraft, error) {
	a := &models.Aircraft{}
	err := row.Scan(&a.ID, &a.AirlineID, &a.Model, &a.Registration, &a.TotalSeats, &a.SeatConfig, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AircraftRepository) Create(ctx context.Context, aircraft *models.Aircraft) error {
	query := `
		INSERT INTO aircraft (airline_id, model, registration, total_seats, seat_config, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		aircraft.AirlineID,
		aircraft.Model,
		aircraft.Registration,
		aircraft.TotalSeats,
		aircraft.SeatConfig,
		aircraft.IsActive,
	).Scan(&aircraft.ID, &aircraft.CreatedAt)

	if isUniqueViolation(err) {
		return fmt.Errorf("%w: aircraft %s already exists", apperrors.ErrConflict, aircraft.Registration)
	}
	return err
}

func (r *AircraftRepository) GetByID(ctx context.Context, id int64) (*models.Aircraft, error) {
	a, err := scanAircraft(r.db.QueryRowContext(ctx, `SELECT `+aircraftColumns+` FROM aircraft WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *AircraftRepository) List(ctx context.Context) ([]models.Aircraft, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+aircraftColumns+` FROM aircraft ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fleet := []models.Aircraft{}
	for rows.Next() {
		a, err := scanAircraft(rows)
		if err != nil {
			return nil, err
		}
		fleet = append(fleet, *a)
	}
	return fleet, rows.Err()
}

// Deactivate marks an aircraft inactive unless an active, not yet landed
// or cancelled flight still uses it
func (r *AircraftRepository) Deactivate(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var active bool
		err := tx.QueryRowContext(ctx, `SELECT is_active FROM aircraft WHERE id = $1 FOR UPDATE`, id).Scan(&active)
		if err == sql.ErrNoRows {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}

		var inUse bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM flights
				WHERE aircraft_id = $1 AND is_active
				  AND status NOT IN ('cancelado', 'aterrizado')
			)`, id).Scan(&inUse)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("%w: aircraft is assigned to active flights", apperrors.ErrReferentialConflict)
		}

		_, err = tx.ExecContext(ctx, `UPDATE aircraft SET is_active = FALSE WHERE id = $1`, id)
		return err
	})
}
