package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skybook/internal/booking"
	apperrors "skybook/internal/errors"
	"skybook/internal/logger"
	"skybook/internal/metrics"
	"skybook/internal/models"
	"skybook/internal/search"
)

type FlightService struct {
	flights   FlightStore
	aircraft  AircraftStore
	airports  AirportStore
	inventory InventoryStore
	seats     SeatStore
	searcher  FlightSearcher
	payments  PaymentProcessor
	publisher EventPublisher
	now       func() time.Time
}

func NewFlightService(flights FlightStore, aircraft AircraftStore, airports AirportStore, inventory InventoryStore, seats SeatStore, searcher FlightSearcher, payments PaymentProcessor, publisher EventPublisher) *FlightService {
	return &FlightService{
		flights:   flights,
		aircraft:  aircraft,
		airports:  airports,
		inventory: inventory,
		seats:     seats,
		searcher:  searcher,
		payments:  payments,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create schedules a flight on an active aircraft. The inventory ledger and
// the seat map are generated from the aircraft's cabin layout.
func (s *FlightService) Create(ctx context.Context, req *models.CreateFlightRequest) (*models.Flight, error) {
	aircraft, err := s.aircraft.GetByID(ctx, req.AircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get aircraft: %w", err)
	}
	if aircraft == nil || !aircraft.IsActive {
		return nil, fmt.Errorf("%w: aircraft %d does not exist or is inactive", apperrors.ErrValidation, req.AircraftID)
	}
	if err := booking.ValidateLayout(aircraft.TotalSeats, aircraft.SeatConfig); err != nil {
		return nil, err
	}

	if req.OriginID == req.DestinationID {
		return nil, fmt.Errorf("%w: origin and destination must differ", apperrors.ErrValidation)
	}
	origin, err := s.activeAirport(ctx, req.OriginID)
	if err != nil {
		return nil, err
	}
	destination, err := s.activeAirport(ctx, req.DestinationID)
	if err != nil {
		return nil, err
	}

	if !req.ArrivalAt.After(req.DepartureAt) {
		return nil, fmt.Errorf("%w: arrival must be after departure", apperrors.ErrValidation)
	}
	if !req.DepartureAt.After(s.now()) {
		return nil, fmt.Errorf("%w: departure must be in the future", apperrors.ErrValidation)
	}

	fares := models.FareTable{}
	for class, cents := range req.Fares {
		if _, ok := aircraft.ClassConfig(class); !ok {
			return nil, fmt.Errorf("%w: aircraft has no %s cabin", apperrors.ErrValidation, class)
		}
		fares[class] = cents
	}

	direct := true
	if req.Direct != nil {
		direct = *req.Direct
	}

	flight := &models.Flight{
		Number:          strings.ToUpper(strings.TrimSpace(req.Number)),
		AircraftID:      aircraft.ID,
		OriginID:        origin.ID,
		DestinationID:   destination.ID,
		DepartureAt:     req.DepartureAt.UTC(),
		ArrivalAt:       req.ArrivalAt.UTC(),
		DurationMinutes: int(req.ArrivalAt.Sub(req.DepartureAt) / time.Minute),
		Status:          models.FlightScheduled,
		BasePriceCents:  req.BasePriceCents,
		Fares:           fares,
		Direct:          direct,
		IsActive:        true,
	}

	ledger := make([]models.FlightInventory, 0, len(aircraft.SeatConfig))
	for _, cfg := range aircraft.SeatConfig {
		ledger = append(ledger, models.FlightInventory{Class: cfg.Class, Total: cfg.Total, Available: cfg.Total})
	}
	layout := aircraft.SeatConfig
	seats := func(flightID int64) []models.FlightSeat {
		return booking.ExpandLayout(flightID, layout)
	}

	if err := s.flights.Create(ctx, flight, ledger, seats); err != nil {
		return nil, fmt.Errorf("failed to create flight: %w", err)
	}
	for i := range ledger {
		ledger[i].FlightID = flight.ID
	}
	flight.Inventory = ledger

	s.index(ctx, flight, origin, destination)

	logger.WithContext(ctx).Info("Flight created",
		"flight_id", flight.ID,
		"number", flight.Number,
		"departure_at", flight.DepartureAt,
	)
	return flight, nil
}

func (s *FlightService) activeAirport(ctx context.Context, id int64) (*models.Airport, error) {
	airport, err := s.airports.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get airport: %w", err)
	}
	if airport == nil || !airport.IsActive {
		return nil, fmt.Errorf("%w: airport %d does not exist or is inactive", apperrors.ErrValidation, id)
	}
	return airport, nil
}

// index пишет документ рейса в поисковый индекс. Ошибка не прерывает операцию:
// индекс можно перестроить командой reindex-flights.
func (s *FlightService) index(ctx context.Context, flight *models.Flight, origin, destination *models.Airport) {
	if s.searcher == nil {
		return
	}
	if err := s.searcher.Index(ctx, search.NewFlightDocument(flight, origin, destination)); err != nil {
		logger.WithContext(ctx).Warn("Failed to index flight",
			"flight_id", flight.ID,
			"error", err,
		)
	}
}

func (s *FlightService) reindex(ctx context.Context, flight *models.Flight) {
	if s.searcher == nil {
		return
	}
	origin, err := s.airports.GetByID(ctx, flight.OriginID)
	if err != nil || origin == nil {
		logger.WithContext(ctx).Warn("Failed to reindex flight", "flight_id", flight.ID, "error", err)
		return
	}
	destination, err := s.airports.GetByID(ctx, flight.DestinationID)
	if err != nil || destination == nil {
		logger.WithContext(ctx).Warn("Failed to reindex flight", "flight_id", flight.ID, "error", err)
		return
	}
	s.index(ctx, flight, origin, destination)
}

func (s *FlightService) Get(ctx context.Context, id int64) (*models.Flight, error) {
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	if flight == nil {
		return nil, apperrors.ErrNotFound
	}

	ledger, err := s.inventory.GetByFlight(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	flight.Inventory = ledger
	return flight, nil
}

// Search finds active flights by route and departure day. Elasticsearch is
// used when configured; PostgreSQL answers when it is absent or failing.
func (s *FlightService) Search(ctx context.Context, params models.FlightSearchParams) ([]models.Flight, error) {
	params.Origin = strings.ToUpper(strings.TrimSpace(params.Origin))
	params.Destination = strings.ToUpper(strings.TrimSpace(params.Destination))
	if params.Date != "" {
		if _, err := time.Parse(models.DateLayout, params.Date); err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", apperrors.ErrValidation)
		}
	}

	if s.searcher != nil {
		ids, err := s.searcher.Search(ctx, params)
		if err == nil {
			if len(ids) == 0 {
				return []models.Flight{}, nil
			}
			flights, err := s.flights.GetByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("failed to load flights: %w", err)
			}
			return activeOnly(flights), nil
		}
		logger.WithContext(ctx).Warn("Search index unavailable, falling back to database", "error", err)
	}

	flights, err := s.flights.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search flights: %w", err)
	}
	return flights, nil
}

// activeOnly drops flights deactivated after they were indexed
func activeOnly(flights []models.Flight) []models.Flight {
	out := flights[:0]
	for _, f := range flights {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out
}

func (s *FlightService) SeatMap(ctx context.Context, id int64) (*models.SeatMapResponse, error) {
	seats, err := s.seats.GetByFlight(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get seat map: %w", err)
	}
	if len(seats) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &models.SeatMapResponse{FlightID: id, Seats: booking.NewSeatMap(seats).Seats()}, nil
}

// UpdateStatus changes the operational status of a flight. Cancelling it
// refunds every issued ticket in full and returns the seats.
func (s *FlightService) UpdateStatus(ctx context.Context, id int64, status string) (*models.Flight, error) {
	if !models.IsFlightStatus(status) {
		return nil, fmt.Errorf("%w: unknown flight status %q", apperrors.ErrValidation, status)
	}

	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	if flight == nil {
		return nil, apperrors.ErrNotFound
	}
	if flight.Status == status {
		return flight, nil
	}
	if flight.Status == models.FlightCancelled || flight.Status == models.FlightLanded {
		return nil, fmt.Errorf("%w: flight is already %s", apperrors.ErrInvalidState, flight.Status)
	}

	now := s.now()
	refunded, err := s.flights.UpdateStatus(ctx, id, status, status == models.FlightCancelled, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update flight status: %w", err)
	}
	previous := flight.Status
	flight.Status = status

	for i := range refunded {
		t := &refunded[i]
		if t.RefundCents != nil {
			metrics.RefundedCentsTotal.Add(float64(*t.RefundCents))
			if s.payments != nil {
				s.payments.Refund(ctx, t.Code, *t.RefundCents)
			}
		}
		metrics.TicketTransitionsTotal.WithLabelValues(t.Status).Inc()
		publish(ctx, s.publisher, models.EventTicketCancelled, ticketEvent(t, now))
	}

	publish(ctx, s.publisher, models.EventFlightStatusChanged, models.FlightStatusChangedEvent{
		FlightID:        flight.ID,
		Number:          flight.Number,
		PreviousStatus:  previous,
		Status:          status,
		RefundedTickets: len(refunded),
		Timestamp:       now,
	})
	s.reindex(ctx, flight)

	logger.WithContext(ctx).Info("Flight status changed",
		"flight_id", flight.ID,
		"from", previous,
		"to", status,
		"refunded_tickets", len(refunded),
	)
	return flight, nil
}

// Deactivate hides a flight from search and booking
func (s *FlightService) Deactivate(ctx context.Context, id int64) error {
	if err := s.flights.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate flight: %w", err)
	}

	flight, err := s.flights.GetByID(ctx, id)
	if err == nil && flight != nil {
		s.reindex(ctx, flight)
	}
	return nil
}
