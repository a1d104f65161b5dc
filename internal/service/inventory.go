package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "skybook/internal/errors"
	"skybook/internal/metrics"
	"skybook/internal/models"
)

// InventoryService exposes the per-class seat ledger of flights
type InventoryService struct {
	inventory InventoryStore
}

func NewInventoryService(inventory InventoryStore) *InventoryService {
	return &InventoryService{inventory: inventory}
}

func validateInventoryRequest(class string, count int) error {
	if !models.IsServiceClass(class) {
		return fmt.Errorf("%w: unknown service class %q", apperrors.ErrValidation, class)
	}
	if count <= 0 {
		return fmt.Errorf("%w: seat count must be positive", apperrors.ErrValidation)
	}
	return nil
}

// Reserve atomically takes count seats of a class. Either all seats are
// taken or none.
func (s *InventoryService) Reserve(ctx context.Context, flightID int64, class string, count int) error {
	if err := validateInventoryRequest(class, count); err != nil {
		return err
	}
	if err := s.inventory.Reserve(ctx, flightID, class, count); err != nil {
		if errors.Is(err, apperrors.ErrInsufficientInventory) {
			metrics.InventoryRejectionsTotal.Inc()
			return err
		}
		return fmt.Errorf("failed to reserve seats: %w", err)
	}
	return nil
}

// Release returns count seats of a class, never beyond the class total
func (s *InventoryService) Release(ctx context.Context, flightID int64, class string, count int) error {
	if err := validateInventoryRequest(class, count); err != nil {
		return err
	}
	if err := s.inventory.Release(ctx, flightID, class, count); err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	return nil
}

func (s *InventoryService) Availability(ctx context.Context, flightID int64) ([]models.FlightInventory, error) {
	ledger, err := s.inventory.GetByFlight(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	if len(ledger) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return ledger, nil
}
