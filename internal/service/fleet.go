package service

import (
	"context"
	"fmt"
	"strings"

	"skybook/internal/booking"
	apperrors "skybook/internal/errors"
	"skybook/internal/models"
)

// FleetService manages airlines, airports and aircraft
type FleetService struct {
	airlines AirlineStore
	airports AirportStore
	aircraft AircraftStore
}

func NewFleetService(airlines AirlineStore, airports AirportStore, aircraft AircraftStore) *FleetService {
	return &FleetService{
		airlines: airlines,
		airports: airports,
		aircraft: aircraft,
	}
}

func (s *FleetService) CreateAirline(ctx context.Context, req *models.CreateAirlineRequest) (*models.Airline, error) {
	airline := &models.Airline{
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:     strings.TrimSpace(req.Name),
		Country:  strings.TrimSpace(req.Country),
		IsActive: true,
	}
	if err := s.airlines.Create(ctx, airline); err != nil {
		return nil, fmt.Errorf("failed to create airline: %w", err)
	}
	return airline, nil
}

func (s *FleetService) GetAirline(ctx context.Context, id int64) (*models.Airline, error) {
	airline, err := s.airlines.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get airline: %w", err)
	}
	if airline == nil {
		return nil, apperrors.ErrNotFound
	}
	return airline, nil
}

func (s *FleetService) ListAirlines(ctx context.Context) ([]models.Airline, error) {
	airlines, err := s.airlines.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list airlines: %w", err)
	}
	return airlines, nil
}

func (s *FleetService) CreateAirport(ctx context.Context, req *models.CreateAirportRequest) (*models.Airport, error) {
	airport := &models.Airport{
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:     strings.TrimSpace(req.Name),
		City:     strings.TrimSpace(req.City),
		Country:  strings.TrimSpace(req.Country),
		IsActive: true,
	}
	if err := s.airports.Create(ctx, airport); err != nil {
		return nil, fmt.Errorf("failed to create airport: %w", err)
	}
	return airport, nil
}

func (s *FleetService) GetAirport(ctx context.Context, id int64) (*models.Airport, error) {
	airport, err := s.airports.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get airport: %w", err)
	}
	if airport == nil {
		return nil, apperrors.ErrNotFound
	}
	return airport, nil
}

func (s *FleetService) ListAirports(ctx context.Context) ([]models.Airport, error) {
	airports, err := s.airports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list airports: %w", err)
	}
	return airports, nil
}

// CreateAircraft registers a plane for an active airline. Class row ranges
// must not overlap and the class totals must add up to the seat count.
func (s *FleetService) CreateAircraft(ctx context.Context, req *models.CreateAircraftRequest) (*models.Aircraft, error) {
	airline, err := s.airlines.GetByID(ctx, req.AirlineID)
	if err != nil {
		return nil, fmt.Errorf("failed to get airline: %w", err)
	}
	if airline == nil || !airline.IsActive {
		return nil, fmt.Errorf("%w: airline %d does not exist or is inactive", apperrors.ErrValidation, req.AirlineID)
	}

	layout := make(models.SeatLayout, 0, len(req.SeatConfig))
	for _, c := range req.SeatConfig {
		layout = append(layout, models.SeatClassConfig{
			Class:       c.Class,
			Rows:        strings.TrimSpace(c.Rows),
			SeatsPerRow: c.SeatsPerRow,
			Total:       c.Total,
		})
	}
	if err := booking.ValidateLayout(req.TotalSeats, layout); err != nil {
		return nil, err
	}

	aircraft := &models.Aircraft{
		AirlineID:    airline.ID,
		Model:        strings.TrimSpace(req.Model),
		Registration: strings.ToUpper(strings.TrimSpace(req.Registration)),
		TotalSeats:   req.TotalSeats,
		SeatConfig:   layout,
		IsActive:     true,
	}
	if err := s.aircraft.Create(ctx, aircraft); err != nil {
		return nil, fmt.Errorf("failed to create aircraft: %w", err)
	}
	return aircraft, nil
}

func (s *FleetService) GetAircraft(ctx context.Context, id int64) (*models.Aircraft, error) {
	aircraft, err := s.aircraft.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get aircraft: %w", err)
	}
	if aircraft == nil {
		return nil, apperrors.ErrNotFound
	}
	return aircraft, nil
}

func (s *FleetService) ListAircraft(ctx context.Context) ([]models.Aircraft, error) {
	fleet, err := s.aircraft.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list aircraft: %w", err)
	}
	return fleet, nil
}

// DeactivateAircraft is rejected while an active flight uses the aircraft
func (s *FleetService) DeactivateAircraft(ctx context.Context, id int64) error {
	if err := s.aircraft.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate aircraft: %w", err)
	}
	return nil
}
