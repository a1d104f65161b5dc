package repository

import (
	"context"
	"database/sql"
	"fmt"

	"skybook/internal/database"
	apperrors "skybook/internal/errors"
	"skybook/internal/models"
)

// InventoryRepository is the per-flight, per-class seat ledger
type InventoryRepository struct {
	db *database.DB
}

func NewInventoryRepository(db *database.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Reserve atomically takes count seats of a class. It never clamps: when
// fewer seats remain it fails with ErrInsufficientInventory and changes nothing.
func (r *InventoryRepository) Reserve(ctx context.Context, flightID int64, class string, count int) error {
	return reserveInventory(ctx, r.db, flightID, class, count)
}

// Release returns count seats of a class, never exceeding the configured total
func (r *InventoryRepository) Release(ctx context.Context, flightID int64, class string, count int) error {
	return releaseInventory(ctx, r.db, flightID, class, count)
}

// GetByFlight returns the ledger rows of a flight in cabin order
func (r *InventoryRepository) GetByFlight(ctx context.Context, flightID int64) ([]models.FlightInventory, error) {
	return inventoryByFlight(ctx, r.db, flightID)
}

func (r *InventoryRepository) Get(ctx context.Context, flightID int64, class string) (*models.FlightInventory, error) {
	inv := &models.FlightInventory{}
	query := `SELECT flight_id, class, total, available FROM flight_inventory WHERE flight_id = $1 AND class = $2`

	err := r.db.QueryRowContext(ctx, query, flightID, class).Scan(&inv.FlightID, &inv.Class, &inv.Total, &inv.Available)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func reserveInventory(ctx context.Context, q database.Querier, flightID int64, class string, count int) error {
	if count <= 0 {
		return nil
	}

	query := `
		UPDATE flight_inventory
		SET available = available - $3
		WHERE flight_id = $1 AND class = $2 AND available >= $3`

	res, err := q.ExecContext(ctx, query, flightID, class, count)
	if err != nil {
		return fmt.Errorf("failed to reserve inventory: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: flight %d has fewer than %d %s seats", apperrors.ErrInsufficientInventory, flightID, count, class)
	}
	return nil
}

func releaseInventory(ctx context.Context, q database.Querier, flightID int64, class string, count int) error {
	if count <= 0 {
		return nil
	}

	query := `
		UPDATE flight_inventory
		SET available = LEAST(total, available + $3)
		WHERE flight_id = $1 AND class = $2`

	if _, err := q.ExecContext(ctx, query, flightID, class, count); err != nil {
		return fmt.Errorf("failed to release inventory: %w", err)
	}
	return nil
}

func inventoryByFlight(ctx context.Context, q database.Querier, flightID int64) ([]models.FlightInventory, error) {
	query := `
		SELECT flight_id, class, total, available
		FROM flight_inventory
		WHERE flight_id = $1
		ORDER BY CASE class WHEN 'primera' THEN 1 WHEN 'ejecutiva' THEN 2 WHEN 'premium' THEN 3 ELSE 4 END`

	rows, err := q.QueryContext(ctx, query, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledger []models.FlightInventory
	for rows.Next() {
		var inv models.FlightInventory
		if err := rows.Scan(&inv.FlightID, &inv.Class, &inv.Total, &inv.Available); err != nil {
			return nil, err
		}
		ledger = append(ledger, inv)
	}
	return ledger, rows.Err()
}
