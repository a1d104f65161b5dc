package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"skybook/internal/database"
	apperrors "skybook/internal/errors"
	"skybook/internal/models"

	"github.com/lib/pq"
)

type FlightRepository struct {
	db *database.DB
}

func NewFlightRepository(db *database.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

const flightColumns = `f.id, f.number, f.aircraft_id, f.origin_id, f.destination_id, f.departure_at,
		       f.arrival_at, f.duration_minutes, f.status, f.base_price_cents, f.fares,
		       f.direct, f.is_active, f.created_at, f.updated_at`

func scanFlight(row rowScanner) (*models.Flight, error) {
	f := &models.Flight{}
	err := row.Scan(
		&f.ID,
		&f.Number,
		&f.AircraftID,
		&f.OriginID,
		&f.DestinationID,
		&f.DepartureAt,
		&f.ArrivalAt,
		&f.DurationMinutes,
		&f.Status,
		&f.BasePriceCents,
		&f.Fares,
		&f.Direct,
		&f.IsActive,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func scanFlights(rows *sql.Rows) ([]models.Flight, error) {
	defer rows.Close()

	flights := []models.Flight{}
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

// Create stores a flight together with its inventory ledger and seat map
func (r *FlightRepository) Create(ctx context.Context, flight *models.Flight, ledger []models.FlightInventory, seats func(flightID int64) []models.FlightSeat) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO flights (number, aircraft_id, origin_id, destination_id, departure_at, arrival_at,
			                     duration_minutes, status, base_price_cents, fares, direct, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at, updated_at`

		err := tx.QueryRowContext(ctx, query,
			flight.Number,
			flight.AircraftID,
			flight.OriginID,
			flight.DestinationID,
			flight.DepartureAt,
			flight.ArrivalAt,
			flight.DurationMinutes,
			flight.Status,
			flight.BasePriceCents,
			flight.Fares,
			flight.Direct,
			flight.IsActive,
		).Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert flight: %w", err)
		}

		for i := range ledger {
			ledger[i].FlightID = flight.ID
			_, err := tx.ExecContext(ctx,
				`INSERT INTO flight_inventory (flight_id, class, total, available) VALUES ($1, $2, $3, $4)`,
				flight.ID, ledger[i].Class, ledger[i].Total, ledger[i].Available)
			if err != nil {
				return fmt.Errorf("failed to insert inventory: %w", err)
			}
		}
		flight.Inventory = ledger

		return insertSeats(ctx, tx, seats(flight.ID))
	})
}

func (r *FlightRepository) GetByID(ctx context.Context, id int64) (*models.Flight, error) {
	f, err := scanFlight(r.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights f WHERE f.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

// GetByIDs returns the flights in the order of ids; missing ids are skipped
func (r *FlightRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Flight, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+flightColumns+` FROM flights f WHERE f.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	found, err := scanFlights(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Flight, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}
	ordered := make([]models.Flight, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			ordered = append(ordered, f)
		}
	}
	return ordered, nil
}

// Search filters active flights by airport codes and departure date
func (r *FlightRepository) Search(ctx context.Context, params models.FlightSearchParams) ([]models.Flight, error) {
	var args []any
	argIndex := 1

	query := `
		SELECT ` + flightColumns + `
		FROM flights f
		JOIN airports o ON o.id = f.origin_id
		JOIN airports d ON d.id = f.destination_id
		WHERE f.is_active`

	if params.Origin != "" {
		query += fmt.Sprintf(" AND o.code = upper($%d)", argIndex)
		args = append(args, params.Origin)
		argIndex++
	}
	if params.Destination != "" {
		query += fmt.Sprintf(" AND d.code = upper($%d)", argIndex)
		args = append(args, params.Destination)
		argIndex++
	}
	if params.Date != "" {
		day, err := time.Parse(models.DateLayout, params.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", apperrors.ErrValidation)
		}
		query += fmt.Sprintf(" AND f.departure_at >= $%d AND f.departure_at < $%d", argIndex, argIndex+1)
		args = append(args, day, day.Add(24*time.Hour))
		argIndex += 2
	}

	limit, offset := pageOffset(params.Page, params.PageSize)
	query += fmt.Sprintf(" ORDER BY f.departure_at LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanFlights(rows)
}

// ListActive returns every active flight, used to rebuild the search index
func (r *FlightRepository) ListActive(ctx context.Context) ([]models.Flight, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+flightColumns+` FROM flights f WHERE f.is_active ORDER BY f.id`)
	if err != nil {
		return nil, err
	}
	return scanFlights(rows)
}

// UpdateStatus changes the operational status. With refundIssued every
// emitido ticket of the flight is refunded in full, its seat freed and its
// inventory returned, in the same transaction.
func (r *FlightRepository) UpdateStatus(ctx context.Context, id int64, status string, refundIssued bool, at time.Time) ([]models.Ticket, error) {
	var refunded []models.Ticket

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE flights SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.ErrNotFound
		}

		if !refundIssued {
			return nil
		}

		tickets, err := lockTickets(ctx, tx, `flight_id = $1 AND status = 'emitido'`, id)
		if err != nil {
			return err
		}
		for i := range tickets {
			t := &tickets[i]
			if err := closeTicket(ctx, tx, t, models.TicketRefunded, t.PriceCents, at); err != nil {
				return err
			}
		}
		refunded = tickets
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refunded, nil
}

// HasActiveReservations reports whether a pending, confirmed or paid
// reservation includes the flight
func (r *FlightRepository) HasActiveReservations(ctx context.Context, flightID int64) (bool, error) {
	return hasActiveReservations(ctx, r.db, flightID)
}

func hasActiveReservations(ctx context.Context, q database.Querier, flightID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE $1 = ANY(flight_ids) AND status IN ('pendiente', 'confirmada', 'pagada')
		)`

	err := q.QueryRowContext(ctx, query, flightID).Scan(&exists)
	return exists, err
}

// Deactivate hides a flight from search and booking. It is rejected while
// active reservations include the flight.
func (r *FlightRepository) Deactivate(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var active bool
		err := tx.QueryRowContext(ctx, `SELECT is_active FROM flights WHERE id = $1 FOR UPDATE`, id).Scan(&active)
		if err == sql.ErrNoRows {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}

		busy, err := hasActiveReservations(ctx, tx, id)
		if err != nil {
			return err
		}
		if busy {
			return fmt.Errorf("%w: flight has active reservations", apperrors.ErrReferentialConflict)
		}

		_, err = tx.ExecContext(ctx, `UPDATE flights SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
		return err
	})
}
