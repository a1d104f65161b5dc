package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"skybook/internal/booking"
	"skybook/internal/database"
	apperrors "skybook/internal/errors"
	"skybook/internal/models"

	"github.com/lib/pq"
)

type ReservationRepository struct {
	db *database.DB
}

func NewReservationRepository(db *database.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, code, user_id, trip_type, flight_ids, status, held_class, seats_held,
		       tickets_issued, passenger_count, total_price_cents, preferences, observations,
		       expires_at, created_at, updated_at`

func scanReservation(row rowScanner) (*models.Reservation, error) {
	res := &models.Reservation{}
	err := row.Scan(
		&res.ID,
		&res.Code,
		&res.UserID,
		&res.TripType,
		pq.Array(&res.FlightIDs),
		&res.Status,
		&res.HeldClass,
		&res.SeatsHeld,
		&res.TicketsIssued,
		&res.PassengerCount,
		&res.TotalPriceCents,
		&res.Preferences,
		&res.Observations,
		&res.ExpiresAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func queryReservations(ctx context.Context, q database.Querier, query string, args ...any) ([]models.Reservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := []models.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

func sortedFlightIDs(ids []int64) []int64 {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// Create holds res.PassengerCount seats of res.HeldClass on every flight and
// stores the reservation with its passengers. Nothing is written when any
// flight lacks inventory.
func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation, passengers []models.Passenger) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, flightID := range sortedFlightIDs(res.FlightIDs) {
			if err := reserveInventory(ctx, tx, flightID, res.HeldClass, res.PassengerCount); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO reservations (code, user_id, trip_type, flight_ids, status, held_class, seats_held,
			                          passenger_count, total_price_cents, preferences, observations,
			                          expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, updated_at`

		err := tx.QueryRowContext(ctx, query,
			res.Code,
			res.UserID,
			res.TripType,
			pq.Array(res.FlightIDs),
			res.Status,
			res.HeldClass,
			res.SeatsHeld,
			res.PassengerCount,
			res.TotalPriceCents,
			res.Preferences,
			res.Observations,
			res.ExpiresAt,
			res.CreatedAt,
		).Scan(&res.ID, &res.UpdatedAt)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reservation code collision", apperrors.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert reservation: %w", err)
		}

		insert := `
			INSERT INTO passengers (reservation_id, first_name, last_name, document_type, document_number,
			                        birth_date, nationality, email, phone, category, special_needs)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at`

		res.Passengers = make([]models.Passenger, len(passengers))
		for i, p := range passengers {
			p.ReservationID = res.ID
			if p.SpecialNeeds == nil {
				p.SpecialNeeds = []string{}
			}
			err := tx.QueryRowContext(ctx, insert,
				p.ReservationID,
				p.FirstName,
				p.LastName,
				p.DocumentType,
				p.DocumentNumber,
				p.BirthDate,
				p.Nationality,
				p.Email,
				p.Phone,
				p.Category,
				pq.Array(p.SpecialNeeds),
			).Scan(&p.ID, &p.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert passenger: %w", err)
			}
			res.Passengers[i] = p
		}
		return nil
	})
}

// GetByID returns the reservation with its passengers
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	res.Passengers, err = r.GetPassengers(ctx, id)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ReservationRepository) GetPassengers(ctx context.Context, reservationID int64) ([]models.Passenger, error) {
	query := `
		SELECT id, reservation_id, first_name, last_name, document_type, document_number, birth_date,
		       nationality, email, phone, category, special_needs, created_at
		FROM passengers
		WHERE reservation_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := []models.Passenger{}
	for rows.Next() {
		var p models.Passenger
		err := rows.Scan(
			&p.ID,
			&p.ReservationID,
			&p.FirstName,
			&p.LastName,
			&p.DocumentType,
			&p.DocumentNumber,
			&p.BirthDate,
			&p.Nationality,
			&p.Email,
			&p.Phone,
			&p.Category,
			pq.Array(&p.SpecialNeeds),
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

// List returns the user's reservations, newest first
func (r *ReservationRepository) List(ctx context.Context, userID int64, params models.ListReservationsParams) ([]models.Reservation, error) {
	args := []any{userID}
	argIndex := 2

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1`
	if params.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, params.Status)
		argIndex++
	}

	limit, offset := pageOffset(params.Page, params.PageSize)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	return queryReservations(ctx, r.db, query, args...)
}

// Search lists reservations of every user, newest first
func (r *ReservationRepository) Search(ctx context.Context, filter models.AdminReservationFilter) ([]models.Reservation, error) {
	var args []any
	argIndex := 1

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE TRUE`
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Code != "" {
		query += fmt.Sprintf(" AND code ILIKE $%d", argIndex)
		args = append(args, "%"+escapeLike(filter.Code)+"%")
		argIndex++
	}
	if filter.UserEmail != "" {
		query += fmt.Sprintf(" AND user_id IN (SELECT id FROM users WHERE email ILIKE $%d)", argIndex)
		args = append(args, "%"+escapeLike(filter.UserEmail)+"%")
		argIndex++
	}

	limit, offset := pageOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	return queryReservations(ctx, r.db, query, args...)
}

// Transition moves a reservation between states when it is still in from.
// A nil expiresAt keeps the current deadline.
func (r *ReservationRepository) Transition(ctx context.Context, id int64, from, to string, expiresAt *time.Time) error {
	query := `
		UPDATE reservations
		SET status = $3, expires_at = COALESCE($4, expires_at), updated_at = NOW()
		WHERE id = $1 AND status = $2`

	res, err := r.db.ExecContext(ctx, query, id, from, to, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: reservation is no longer %s", apperrors.ErrInvalidState, from)
	}
	return nil
}

// UpdateDetails replaces preferences and observations of a pending reservation
func (r *ReservationRepository) UpdateDetails(ctx context.Context, id int64, prefs models.Preferences, observations *string) error {
	query := `
		UPDATE reservations
		SET preferences = $2, observations = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pendiente'`

	res, err := r.db.ExecContext(ctx, query, id, prefs, observations)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: only pending reservations can be modified", apperrors.ErrInvalidState)
	}
	return nil
}

// lockReservation selects a reservation for update inside tx
func lockReservation(ctx context.Context, tx *sql.Tx, id int64) (*models.Reservation, error) {
	res, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	return res, err
}

func releaseHold(ctx context.Context, tx *sql.Tx, res *models.Reservation) error {
	if !res.SeatsHeld {
		return nil
	}
	for _, flightID := range sortedFlightIDs(res.FlightIDs) {
		if err := releaseInventory(ctx, tx, flightID, res.HeldClass, res.PassengerCount); err != nil {
			return err
		}
	}
	return nil
}

// Expire moves an unissued pending reservation to vencida and
// releases its hold. It reports false when the reservation no longer
// qualifies, for example because it was paid meanwhile.
func (r *ReservationRepository) Expire(ctx context.Context, id int64, now time.Time) (bool, error) {
	expired := false

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := lockReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if res.TicketsIssued || !booking.IsExpired(res, now) || !booking.CanTransition(res.Status, models.ReservationExpired) {
			return nil
		}

		if err := releaseHold(ctx, tx, res); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE reservations
			SET status = $2, seats_held = FALSE, updated_at = NOW()
			WHERE id = $1`, id, models.ReservationExpired)
		if err != nil {
			return err
		}
		expired = true
		return nil
	})
	return expired, err
}

// ListOverdue returns pending reservations past their deadline that still
// hold seats without tickets, oldest deadline first
func (r *ReservationRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = 'pendiente'
		  AND NOT tickets_issued
		  AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2`

	return queryReservations(ctx, r.db, query, now, limit)
}

// Cancel moves a reservation still in expectedStatus to cancelada. The seat
// hold is released and every emitido ticket of a flight that has not yet
// departed is cancelled with the standard refund, its seat freed.
func (r *ReservationRepository) Cancel(ctx context.Context, id int64, expectedStatus string, now time.Time) ([]models.Ticket, error) {
	var cancelled []models.Ticket

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := lockReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if res.Status != expectedStatus {
			return fmt.Errorf("%w: reservation is no longer %s", apperrors.ErrInvalidState, expectedStatus)
		}

		if err := releaseHold(ctx, tx, res); err != nil {
			return err
		}

		tickets, err := lockTickets(ctx, tx, `
			reservation_id = $1 AND status = 'emitido'
			AND flight_id IN (SELECT id FROM flights WHERE departure_at > $2)`, id, now)
		if err != nil {
			return err
		}
		for i := range tickets {
			t := &tickets[i]
			if err := closeTicket(ctx, tx, t, models.TicketCancelled, booking.RefundAmount(t.PriceCents), now); err != nil {
				return err
			}
		}
		cancelled = tickets

		_, err = tx.ExecContext(ctx, `
			UPDATE reservations
			SET status = $2, seats_held = FALSE, updated_at = NOW()
			WHERE id = $1`, id, models.ReservationCancelled)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}
