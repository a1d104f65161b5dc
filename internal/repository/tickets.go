package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"skybook/internal/database"
	apperrors "skybook/internal/errors"
	"skybook/internal/models"

	"github.com/lib/pq"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// IssueParams is everything the purchase transaction writes
type IssueParams struct {
	ReservationID  int64
	ExpectedStatus string
	Class          string
	FlightIDs      []int64
	PassengerCount int
	ExpiresAt      time.Time
	Tickets        []models.Ticket
}

const ticketColumns = `id, code, reservation_id, passenger_id, flight_id, user_id, seat, class,
		       price_cents, status, delivery_method, delivery_address, checked_in, checked_in_at,
		       baggage, refund_cents, issued_at, expires_at, cancelled_at, updated_at`

func scanTicket(row rowScanner) (*models.Ticket, error) {
	t := &models.Ticket{}
	err := row.Scan(
		&t.ID,
		&t.Code,
		&t.ReservationID,
		&t.PassengerID,
		&t.FlightID,
		&t.UserID,
		&t.Seat,
		&t.Class,
		&t.PriceCents,
		&t.Status,
		&t.DeliveryMethod,
		&t.DeliveryAddress,
		&t.CheckedIn,
		&t.CheckedInAt,
		&t.Baggage,
		&t.RefundCents,
		&t.IssuedAt,
		&t.ExpiresAt,
		&t.CancelledAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func queryTickets(ctx context.Context, q database.Querier, query string, args ...any) ([]models.Ticket, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// lockTickets selects tickets matching where and locks them for the transaction
func lockTickets(ctx context.Context, q database.Querier, where string, args ...any) ([]models.Ticket, error) {
	return queryTickets(ctx, q, `SELECT `+ticketColumns+` FROM tickets WHERE `+where+` ORDER BY id FOR UPDATE`, args...)
}

// closeTicket moves an emitido ticket to a terminal state, frees its seat and
// returns its unit of inventory
func closeTicket(ctx context.Context, q database.Querier, t *models.Ticket, status string, refundCents int64, at time.Time) error {
	query := `
		UPDATE tickets
		SET status = $2, refund_cents = $3, cancelled_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'emitido'`

	res, err := q.ExecContext(ctx, query, t.ID, status, refundCents, at)
	if err != nil {
		return fmt.Errorf("failed to close ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: ticket %s is no longer issued", apperrors.ErrInvalidState, t.Code)
	}

	if err := freeSeat(ctx, q, t.FlightID, t.Code); err != nil {
		return err
	}
	if err := releaseInventory(ctx, q, t.FlightID, t.Class, 1); err != nil {
		return err
	}

	t.Status = status
	t.RefundCents = &refundCents
	t.CancelledAt = &at
	return nil
}

// IssueBatch converts a reservation into tickets in one transaction: the
// reservation hold is swapped for inventory of the purchased class on every
// flight, each planned seat is claimed and every ticket inserted. Any failure
// leaves the database untouched.
func (r *TicketRepository) IssueBatch(ctx context.Context, p IssueParams) ([]models.Ticket, error) {
	issued := make([]models.Ticket, len(p.Tickets))
	copy(issued, p.Tickets)

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var (
			status        string
			ticketsIssued bool
			seatsHeld     bool
			heldClass     string
			heldCount     int
		)
		err := tx.QueryRowContext(ctx, `
			SELECT status, tickets_issued, seats_held, held_class, passenger_count
			FROM reservations WHERE id = $1 FOR UPDATE`, p.ReservationID,
		).Scan(&status, &ticketsIssued, &seatsHeld, &heldClass, &heldCount)
		if err == sql.ErrNoRows {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}
		if status != p.ExpectedStatus || ticketsIssued {
			return fmt.Errorf("%w: reservation changed while purchasing", apperrors.ErrInvalidState)
		}

		flights := append([]int64(nil), p.FlightIDs...)
		sort.Slice(flights, func(i, j int) bool { return flights[i] < flights[j] })
		for _, flightID := range flights {
			if seatsHeld {
				if err := releaseInventory(ctx, tx, flightID, heldClass, heldCount); err != nil {
					return err
				}
			}
			if err := reserveInventory(ctx, tx, flightID, p.Class, p.PassengerCount); err != nil {
				return err
			}
		}

		insert := `
			INSERT INTO tickets (code, reservation_id, passenger_id, flight_id, user_id, seat, class,
			                     price_cents, status, delivery_method, delivery_address, baggage,
			                     issued_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id, updated_at`

		for i := range issued {
			t := &issued[i]
			if err := claimSeat(ctx, tx, t.FlightID, t.Seat, t.Class, t.Code); err != nil {
				return err
			}
			err := tx.QueryRowContext(ctx, insert,
				t.Code,
				t.ReservationID,
				t.PassengerID,
				t.FlightID,
				t.UserID,
				t.Seat,
				t.Class,
				t.PriceCents,
				t.Status,
				t.DeliveryMethod,
				t.DeliveryAddress,
				t.Baggage,
				t.IssuedAt,
				t.ExpiresAt,
			).Scan(&t.ID, &t.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert ticket: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE reservations
			SET status = $2, tickets_issued = TRUE, held_class = $3, seats_held = FALSE,
			    expires_at = $4, updated_at = NOW()
			WHERE id = $1`,
			p.ReservationID, models.ReservationConfirmed, p.Class, p.ExpiresAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *TicketRepository) ListByReservation(ctx context.Context, reservationID int64) ([]models.Ticket, error) {
	return queryTickets(ctx, r.db,
		`SELECT `+ticketColumns+` FROM tickets WHERE reservation_id = $1 ORDER BY flight_id, passenger_id`, reservationID)
}

// List returns the user's tickets, newest first
func (r *TicketRepository) List(ctx context.Context, userID int64, params models.ListTicketsParams) ([]models.Ticket, error) {
	args := []any{userID}
	argIndex := 2

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE user_id = $1`
	if params.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, params.Status)
		argIndex++
	}
	if params.ReservationID > 0 {
		query += fmt.Sprintf(" AND reservation_id = $%d", argIndex)
		args = append(args, params.ReservationID)
		argIndex++
	}

	limit, offset := pageOffset(params.Page, params.PageSize)
	query += fmt.Sprintf(" ORDER BY issued_at DESC, id LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	return queryTickets(ctx, r.db, query, args...)
}

// Search lists tickets of every user, newest first
func (r *TicketRepository) Search(ctx context.Context, filter models.AdminTicketFilter) ([]models.Ticket, error) {
	var args []any
	argIndex := 1

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE TRUE`
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
	if filter.FlightID > 0 {
		query += fmt.Sprintf(" AND flight_id = $%d", argIndex)
		args = append(args, filter.FlightID)
		argIndex++
	}

	limit, offset := pageOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY issued_at DESC, id LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	return queryTickets(ctx, r.db, query, args...)
}

// CheckIn records the check-in with its baggage. When specialNeeds is not nil
// the passenger's special needs are replaced in the same transaction.
func (r *TicketRepository) CheckIn(ctx context.Context, id int64, baggage models.BaggageList, specialNeeds []string, at time.Time) (*models.Ticket, error) {
	var ticket *models.Ticket

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE tickets
			SET checked_in = TRUE, checked_in_at = $2, baggage = $3, updated_at = NOW()
			WHERE id = $1 AND status = 'emitido' AND NOT checked_in
			RETURNING ` + ticketColumns

		t, err := scanTicket(tx.QueryRowContext(ctx, query, id, at, baggage))
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: ticket cannot be checked in", apperrors.ErrInvalidState)
		}
		if err != nil {
			return err
		}

		if specialNeeds != nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE passengers SET special_needs = $1 WHERE id = $2`, pq.Array(specialNeeds), t.PassengerID)
			if err != nil {
				return fmt.Errorf("failed to update special needs: %w", err)
			}
		}

		ticket = t
		return nil
	})
	return ticket, err
}

// Cancel moves an emitido ticket to cancelado with the given refund
func (r *TicketRepository) Cancel(ctx context.Context, id int64, refundCents int64, at time.Time) (*models.Ticket, error) {
	var ticket *models.Ticket

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		tickets, err := lockTickets(ctx, tx, `id = $1`, id)
		if err != nil {
			return err
		}
		if len(tickets) == 0 {
			return apperrors.ErrNotFound
		}

		t := &tickets[0]
		if err := closeTicket(ctx, tx, t, models.TicketCancelled, refundCents, at); err != nil {
			return err
		}
		ticket = t
		return nil
	})
	return ticket, err
}

// MarkUsed records boarding of a checked-in ticket
func (r *TicketRepository) MarkUsed(ctx context.Context, id int64) (*models.Ticket, error) {
	query := `
		UPDATE tickets
		SET status = 'usado', updated_at = NOW()
		WHERE id = $1 AND status = 'emitido' AND checked_in
		RETURNING ` + ticketColumns

	t, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: ticket cannot board", apperrors.ErrInvalidState)
	}
	return t, err
}
