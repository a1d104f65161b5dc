package repository

import (
	"context"
	"database/sql"
	"fmt"

	"skybook/internal/database"
	apperrors "skybook/internal/errors"
	"skybook/internal/models"

	"github.com/lib/pq"
)

// SeatRepository stores the explicit seat slots of every flight
type SeatRepository struct {
	db *database.DB
}

func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// GetByFlight returns every slot of a flight ordered by row and letter
func (r *SeatRepository) GetByFlight(ctx context.Context, flightID int64) ([]models.FlightSeat, error) {
	return seatsByFlight(ctx, r.db, flightID, false)
}

func seatsByFlight(ctx context.Context, q database.Querier, flightID int64, forUpdate bool) ([]models.FlightSeat, error) {
	query := `
		SELECT flight_id, class, row_number, letter, label, ticket_code
		FROM flight_seats
		WHERE flight_id = $1
		ORDER BY row_number, letter`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rows, err := q.QueryContext(ctx, query, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []models.FlightSeat
	for rows.Next() {
		var s models.FlightSeat
		if err := rows.Scan(&s.FlightID, &s.Class, &s.Row, &s.Letter, &s.Label, &s.TicketCode); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// insertSeats bulk loads a generated seat map with COPY
func insertSeats(ctx context.Context, tx *sql.Tx, seats []models.FlightSeat) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("flight_seats", "flight_id", "label", "class", "row_number", "letter"))
	if err != nil {
		return fmt.Errorf("failed to prepare seat copy: %w", err)
	}

	for _, s := range seats {
		if _, err := stmt.ExecContext(ctx, s.FlightID, s.Label, s.Class, s.Row, s.Letter); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy seat %s: %w", s.Label, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush seat copy: %w", err)
	}
	return stmt.Close()
}

// claimSeat assigns a free slot of the class to a ticket. A slot taken by a
// concurrent purchase yields ErrSeatUnavailable.
func claimSeat(ctx context.Context, q database.Querier, flightID int64, label, class, ticketCode string) error {
	query := `
		UPDATE flight_seats
		SET ticket_code = $4
		WHERE flight_id = $1 AND label = $2 AND class = $3 AND ticket_code IS NULL`

	res, err := q.ExecContext(ctx, query, flightID, label, class, ticketCode)
	if err != nil {
		return fmt.Errorf("failed to claim seat: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: seat %s on flight %d", apperrors.ErrSeatUnavailable, label, flightID)
	}
	return nil
}

func freeSeat(ctx context.Context, q database.Querier, flightID int64, ticketCode string) error {
	query := `UPDATE flight_seats SET ticket_code = NULL WHERE flight_id = $1 AND ticket_code = $2`

	if _, err := q.ExecContext(ctx, query, flightID, ticketCode); err != nil {
		return fmt.Errorf("failed to free seat: %w", err)
	}
	return nil
}
