package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skybook/internal/booking"
	apperrors "skybook/internal/errors"
	"skybook/internal/logger"
	"skybook/internal/metrics"
	"skybook/internal/models"
)

const reservationCodeAttempts = 3

type ReservationService struct {
	reservations ReservationStore
	flights      FlightStore
	payments     PaymentProcessor
	publisher    EventPublisher
	now          func() time.Time
}

func NewReservationService(reservations ReservationStore, flights FlightStore, payments PaymentProcessor, publisher EventPublisher) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		flights:      flights,
		payments:     payments,
		publisher:    publisher,
		now:          time.Now,
	}
}

// Create validates the itinerary and passengers, prices the reservation and
// holds economica seats for every passenger on every flight.
func (s *ReservationService) Create(ctx context.Context, userID int64, req *models.CreateReservationRequest) (*models.Reservation, error) {
	now := s.now()

	if want := booking.ExpectedFlightCount(req.TripType); len(req.FlightIDs) != want {
		return nil, fmt.Errorf("%w: trip type %s requires %d flight(s)", apperrors.ErrValidation, req.TripType, want)
	}
	if len(req.FlightIDs) == 2 && req.FlightIDs[0] == req.FlightIDs[1] {
		return nil, fmt.Errorf("%w: outbound and return flights must differ", apperrors.ErrValidation)
	}
	if len(req.Passengers) == 0 || len(req.Passengers) > booking.MaxPassengers {
		return nil, fmt.Errorf("%w: between 1 and %d passengers are allowed", apperrors.ErrValidation, booking.MaxPassengers)
	}

	flights, err := s.flights.GetByIDs(ctx, req.FlightIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get flights: %w", err)
	}
	if len(flights) != len(req.FlightIDs) {
		return nil, fmt.Errorf("%w: one or more flights do not exist", apperrors.ErrValidation)
	}
	for i := range flights {
		f := &flights[i]
		if !f.IsActive || f.Status == models.FlightCancelled {
			return nil, fmt.Errorf("%w: flight %s is not available for booking", apperrors.ErrValidation, f.Number)
		}
		if !f.DepartureAt.After(now) {
			return nil, fmt.Errorf("%w: flight %s has already departed", apperrors.ErrValidation, f.Number)
		}
	}
	if len(flights) == 2 && !flights[1].DepartureAt.After(flights[0].ArrivalAt) {
		return nil, fmt.Errorf("%w: return flight must depart after the outbound flight arrives", apperrors.ErrValidation)
	}

	passengers, err := buildPassengers(req.Passengers, now)
	if err != nil {
		return nil, err
	}

	res := &models.Reservation{
		UserID:          userID,
		TripType:        req.TripType,
		FlightIDs:       req.FlightIDs,
		Status:          models.ReservationPending,
		HeldClass:       models.ClassEconomy,
		SeatsHeld:       true,
		PassengerCount:  len(passengers),
		TotalPriceCents: booking.ReservationTotal(flights, len(passengers)),
		Preferences:     models.Preferences(req.Preferences),
		Observations:    req.Observations,
		ExpiresAt:       booking.HoldDeadline(now),
		CreatedAt:       now,
	}

	for attempt := 1; ; attempt++ {
		res.Code, err = booking.NewReservationCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate reservation code: %w", err)
		}
		err = s.reservations.Create(ctx, res, passengers)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < reservationCodeAttempts {
			continue
		}
		if errors.Is(err, apperrors.ErrInsufficientInventory) {
			metrics.InventoryRejectionsTotal.Inc()
			return nil, err
		}
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	metrics.ReservationsTotal.WithLabelValues(res.Status).Inc()
	publish(ctx, s.publisher, models.EventReservationCreated, reservationEvent(res, "", now))

	logger.WithContext(ctx).Info("Reservation created",
		"reservation_id", res.ID,
		"code", res.Code,
		"flights", res.FlightIDs,
		"passengers", res.PassengerCount,
	)
	return res, nil
}

func buildPassengers(reqs []models.PassengerRequest, now time.Time) ([]models.Passenger, error) {
	passengers := make([]models.Passenger, 0, len(reqs))
	for i, p := range reqs {
		birth, err := time.Parse(models.DateLayout, p.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("%w: passenger %d birth date must be YYYY-MM-DD", apperrors.ErrValidation, i+1)
		}
		if !birth.Before(now) {
			return nil, fmt.Errorf("%w: passenger %d birth date must be in the past", apperrors.ErrValidation, i+1)
		}
		needs := p.SpecialNeeds
		if needs == nil {
			needs = []string{}
		}
		passengers = append(passengers, models.Passenger{
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			DocumentType:   p.DocumentType,
			DocumentNumber: p.DocumentNumber,
			BirthDate:      birth,
			Nationality:    p.Nationality,
			Email:          p.Email,
			Phone:          p.Phone,
			Category:       booking.PassengerCategory(birth, now),
			SpecialNeeds:   needs,
		})
	}
	return passengers, nil
}

// load returns a reservation owned by userID. Someone else's reservation is
// reported as missing.
func (s *ReservationService) load(ctx context.Context, userID, id int64) (*models.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil || res.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return res, nil
}

// expire marks an overdue reservation vencida and releases its hold
func (s *ReservationService) expire(ctx context.Context, res *models.Reservation, now time.Time) error {
	expired, err := s.reservations.Expire(ctx, res.ID, now)
	if err != nil {
		return fmt.Errorf("failed to expire reservation: %w", err)
	}
	if !expired {
		return nil
	}
	res.Status = models.ReservationExpired
	res.SeatsHeld = false
	metrics.ReservationsTotal.WithLabelValues(res.Status).Inc()
	publish(ctx, s.publisher, models.EventReservationExpired, reservationEvent(res, "deadline passed", now))
	return nil
}

// applyLazyExpiry flips a pending reservation past its deadline to vencida
func (s *ReservationService) applyLazyExpiry(ctx context.Context, res *models.Reservation) error {
	now := s.now()
	if !booking.NeedsLazyExpiry(res, now) {
		return nil
	}
	return s.expire(ctx, res, now)
}

func (s *ReservationService) Get(ctx context.Context, userID, id int64) (*models.Reservation, error) {
	res, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyLazyExpiry(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ReservationService) List(ctx context.Context, userID int64, params models.ListReservationsParams) ([]models.Reservation, error) {
	list, err := s.reservations.List(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	for i := range list {
		if err := s.applyLazyExpiry(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ListAll returns reservations of every user for administrators.
// Overdue pending ones are expired on the way out, as for owners.
func (s *ReservationService) ListAll(ctx context.Context, filter models.AdminReservationFilter) ([]models.Reservation, error) {
	list, err := s.reservations.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search reservations: %w", err)
	}
	for i := range list {
		if err := s.applyLazyExpiry(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Confirm moves a pending reservation to confirmada and extends its deadline
// to the payment window. A reservation past its hold is expired instead.
func (s *ReservationService) Confirm(ctx context.Context, userID, id int64) (*models.Reservation, error) {
	now := s.now()

	res, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := booking.CheckConfirm(res, now); err != nil {
		if errors.Is(err, apperrors.ErrExpired) {
			if expErr := s.expire(ctx, res, now); expErr != nil {
				return nil, expErr
			}
		}
		return nil, err
	}

	deadline := booking.PaymentDeadline(now)
	if err := s.reservations.Transition(ctx, id, models.ReservationPending, models.ReservationConfirmed, &deadline); err != nil {
		return nil, fmt.Errorf("failed to confirm reservation: %w", err)
	}
	res.Status = models.ReservationConfirmed
	res.ExpiresAt = deadline

	metrics.ReservationsTotal.WithLabelValues(res.Status).Inc()
	publish(ctx, s.publisher, models.EventReservationConfirmed, reservationEvent(res, "", now))
	return res, nil
}

// MarkPaid records that a confirmed reservation has been settled
func (s *ReservationService) MarkPaid(ctx context.Context, userID, id int64) (*models.Reservation, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := booking.Transition(res.Status, models.ReservationPaid); err != nil {
		return nil, err
	}
	if err := s.reservations.Transition(ctx, id, res.Status, models.ReservationPaid, nil); err != nil {
		return nil, fmt.Errorf("failed to mark reservation paid: %w", err)
	}
	res.Status = models.ReservationPaid

	metrics.ReservationsTotal.WithLabelValues(res.Status).Inc()
	publish(ctx, s.publisher, models.EventReservationPaid, reservationEvent(res, "", s.now()))
	return res, nil
}

// Cancel cancels the reservation, releases its hold and cancels its issued
// tickets for flights that have not departed, refunding each one.
func (s *ReservationService) Cancel(ctx context.Context, userID, id int64) (*models.Reservation, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := booking.Transition(res.Status, models.ReservationCancelled); err != nil {
		return nil, err
	}

	now := s.now()
	cancelled, err := s.reservations.Cancel(ctx, id, res.Status, now)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}
	res.Status = models.ReservationCancelled
	res.SeatsHeld = false

	for i := range cancelled {
		t := &cancelled[i]
		s.refundTicket(ctx, t)
		publish(ctx, s.publisher, models.EventTicketCancelled, ticketEvent(t, now))
	}

	metrics.ReservationsTotal.WithLabelValues(res.Status).Inc()
	publish(ctx, s.publisher, models.EventReservationCancelled, reservationEvent(res, "cancelled by user", now))

	logger.WithContext(ctx).Info("Reservation cancelled",
		"reservation_id", res.ID,
		"tickets_cancelled", len(cancelled),
	)
	return res, nil
}

func (s *ReservationService) refundTicket(ctx context.Context, t *models.Ticket) {
	if t.RefundCents == nil {
		return
	}
	metrics.TicketTransitionsTotal.WithLabelValues(t.Status).Inc()
	metrics.RefundedCentsTotal.Add(float64(*t.RefundCents))
	if s.payments != nil {
		s.payments.Refund(ctx, t.Code, *t.RefundCents)
	}
}

// Update replaces preferences and observations of a pending reservation.
// Fields left out of the request keep their values.
func (s *ReservationService) Update(ctx context.Context, userID, id int64, req *models.UpdateReservationRequest) (*models.Reservation, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := booking.CheckUpdate(res); err != nil {
		return nil, err
	}

	if req.Preferences != nil {
		res.Preferences = models.Preferences(req.Preferences)
	}
	if req.Observations != nil {
		res.Observations = req.Observations
	}
	if err := s.reservations.UpdateDetails(ctx, id, res.Preferences, res.Observations); err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	return res, nil
}

// ExpireOverdue expires up to limit reservations whose deadline has passed
// without tickets being issued. It returns how many were expired.
func (s *ReservationService) ExpireOverdue(ctx context.Context, limit int) (int, error) {
	now := s.now()

	overdue, err := s.reservations.ListOverdue(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue reservations: %w", err)
	}

	expired := 0
	for i := range overdue {
		res := &overdue[i]
		ok, err := s.reservations.Expire(ctx, res.ID, now)
		if err != nil {
			logger.WithContext(ctx).Error("Failed to expire reservation",
				"reservation_id", res.ID,
				"error", err,
			)
			continue
		}
		if !ok {
			continue
		}
		expired++
		res.Status = models.ReservationExpired
		metrics.ExpiredReservationsTotal.Inc()
		metrics.ReservationsTotal.WithLabelValues(res.Status).Inc()
		publish(ctx, s.publisher, models.EventReservationExpired, reservationEvent(res, "expiration sweep", now))
	}
	return expired, nil
}
