package service

import (
	"context"
	"fmt"
	"time"

	"skybook/internal/booking"
	apperrors "skybook/internal/errors"
	"skybook/internal/logger"
	"skybook/internal/metrics"
	"skybook/internal/models"
)

type TicketService struct {
	tickets   TicketStore
	flights   FlightStore
	payments  PaymentProcessor
	publisher EventPublisher
	now       func() time.Time
}

func NewTicketService(tickets TicketStore, flights FlightStore, payments PaymentProcessor, publisher EventPublisher) *TicketService {
	return &TicketService{
		tickets:   tickets,
		flights:   flights,
		payments:  payments,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *TicketService) load(ctx context.Context, id int64) (*models.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if t == nil {
		return nil, apperrors.ErrNotFound
	}
	return t, nil
}

func (s *TicketService) loadOwned(ctx context.Context, userID, id int64) (*models.Ticket, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return t, nil
}

func (s *TicketService) departure(ctx context.Context, flightID int64) (time.Time, error) {
	f, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get flight: %w", err)
	}
	if f == nil {
		return time.Time{}, apperrors.ErrNotFound
	}
	return f.DepartureAt, nil
}

func (s *TicketService) Get(ctx context.Context, userID, id int64) (*models.Ticket, error) {
	return s.loadOwned(ctx, userID, id)
}

func (s *TicketService) List(ctx context.Context, userID int64, params models.ListTicketsParams) ([]models.Ticket, error) {
	tickets, err := s.tickets.List(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketService) ListAll(ctx context.Context, filter models.AdminTicketFilter) ([]models.Ticket, error) {
	tickets, err := s.tickets.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search tickets: %w", err)
	}
	return tickets, nil
}

// CheckIn records check-in inside the window that opens 24 hours and closes
// one hour before departure, with optional baggage and special needs.
func (s *TicketService) CheckIn(ctx context.Context, userID, id int64, req *models.CheckInRequest) (*models.Ticket, error) {
	t, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	departure, err := s.departure(ctx, t.FlightID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := booking.CheckCheckIn(t, departure, now); err != nil {
		return nil, err
	}

	baggage := make(models.BaggageList, 0, len(req.Baggage))
	for _, b := range req.Baggage {
		baggage = append(baggage, models.Baggage{WeightKg: b.WeightKg, Description: b.Description})
	}
	if err := booking.CheckBaggage(baggage); err != nil {
		return nil, err
	}

	updated, err := s.tickets.CheckIn(ctx, id, baggage, req.SpecialNeeds, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check in: %w", err)
	}

	publish(ctx, s.publisher, models.EventTicketCheckedIn, ticketEvent(updated, now))
	logger.WithContext(ctx).Info("Ticket checked in",
		"ticket_id", updated.ID,
		"flight_id", updated.FlightID,
		"bags", len(baggage),
	)
	return updated, nil
}

// Cancel cancels an issued ticket before departure and refunds 80% of the
// price. The seat and its inventory unit return to the flight.
func (s *TicketService) Cancel(ctx context.Context, userID, id int64) (*models.CancelTicketResponse, error) {
	t, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	departure, err := s.departure(ctx, t.FlightID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := booking.CheckCancellation(t, departure, now); err != nil {
		return nil, err
	}

	refund := booking.RefundAmount(t.PriceCents)
	updated, err := s.tickets.Cancel(ctx, id, refund, now)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel ticket: %w", err)
	}

	if s.payments != nil {
		s.payments.Refund(ctx, updated.Code, refund)
	}
	metrics.TicketTransitionsTotal.WithLabelValues(updated.Status).Inc()
	metrics.RefundedCentsTotal.Add(float64(refund))
	publish(ctx, s.publisher, models.EventTicketCancelled, ticketEvent(updated, now))

	return &models.CancelTicketResponse{Ticket: updated, RefundCents: refund}, nil
}

// MarkUsed records boarding of a checked-in ticket
func (s *TicketService) MarkUsed(ctx context.Context, id int64) (*models.Ticket, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := booking.CheckBoarding(t); err != nil {
		return nil, err
	}

	updated, err := s.tickets.MarkUsed(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark ticket used: %w", err)
	}
	metrics.TicketTransitionsTotal.WithLabelValues(updated.Status).Inc()
	return updated, nil
}
