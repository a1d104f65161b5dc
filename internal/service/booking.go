package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skybook/internal/booking"
	apperrors "skybook/internal/errors"
	"skybook/internal/logger"
	"skybook/internal/metrics"
	"skybook/internal/models"
	"skybook/internal/repository"
)

// BookingDeps are the collaborators of the purchase workflow
type BookingDeps struct {
	Reservations   ReservationStore
	Flights        FlightStore
	Aircraft       AircraftStore
	Seats          SeatStore
	Tickets        TicketStore
	Users          UserStore
	Payments       PaymentProcessor
	Guard          IdempotencyGuard
	Publisher      EventPublisher
	IdempotencyTTL time.Duration
}

// BookingService turns reservations into tickets
type BookingService struct {
	reservations   ReservationStore
	flights        FlightStore
	aircraft       AircraftStore
	seats          SeatStore
	tickets        TicketStore
	users          UserStore
	payments       PaymentProcessor
	guard          IdempotencyGuard
	publisher      EventPublisher
	idempotencyTTL time.Duration
	now            func() time.Time
}

func NewBookingService(deps BookingDeps) *BookingService {
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &BookingService{
		reservations:   deps.Reservations,
		flights:        deps.Flights,
		aircraft:       deps.Aircraft,
		seats:          deps.Seats,
		tickets:        deps.Tickets,
		users:          deps.Users,
		payments:       deps.Payments,
		guard:          deps.Guard,
		publisher:      deps.Publisher,
		idempotencyTTL: ttl,
		now:            time.Now,
	}
}

// Purchase charges the user and issues one ticket per passenger per flight
// of the reservation in the requested class. Seats come from the request or
// are assigned first-free in cabin order. Tickets, seats, inventory and the
// reservation status are written in one transaction: a failure leaves nothing
// behind and a captured payment is refunded.
func (s *BookingService) Purchase(ctx context.Context, userID, reservationID int64, req *models.PurchaseRequest) (resp *models.PurchaseResponse, err error) {
	if req.IdempotencyKey != "" && s.guard != nil {
		key := fmt.Sprintf("purchase:%d:%d:%s", userID, reservationID, req.IdempotencyKey)
		acquired, gErr := s.guard.AcquireIdempotencyKey(ctx, key, s.idempotencyTTL)
		if gErr != nil {
			logger.WithContext(ctx).Warn("Idempotency check unavailable", "error", gErr)
		} else if !acquired {
			return nil, apperrors.ErrDuplicateRequest
		} else {
			defer func() {
				// Неуспешную попытку можно повторить с тем же ключом
				if err != nil {
					if relErr := s.guard.ReleaseIdempotencyKey(ctx, key); relErr != nil {
						logger.WithContext(ctx).Warn("Failed to release idempotency key", "error", relErr)
					}
				}
			}()
		}
	}

	now := s.now()

	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil || res.UserID != userID {
		return nil, apperrors.ErrNotFound
	}

	if err := booking.CheckPurchase(res, now); err != nil {
		if errors.Is(err, apperrors.ErrExpired) {
			s.expire(ctx, res, now)
		}
		return nil, err
	}

	if !models.IsServiceClass(req.ServiceClass) {
		return nil, fmt.Errorf("%w: unknown service class %q", apperrors.ErrValidation, req.ServiceClass)
	}

	var address *string
	if req.DeliveryMethod == models.DeliveryHome {
		if req.DeliveryAddress == nil || strings.TrimSpace(*req.DeliveryAddress) == "" {
			return nil, fmt.Errorf("%w: home delivery requires an address", apperrors.ErrValidation)
		}
		address = req.DeliveryAddress
	}

	if req.PaymentMethod == models.PaymentCard {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil || !user.HasCard() {
			return nil, fmt.Errorf("%w: no credit card on file", apperrors.ErrPaymentMethodUnavailable)
		}
	}

	if len(res.Passengers) != res.PassengerCount {
		return nil, fmt.Errorf("%w: reservation passengers are incomplete", apperrors.ErrInvalidState)
	}
	if err := checkSeatAssignments(req.SeatAssignments, len(res.FlightIDs), res.PassengerCount); err != nil {
		return nil, err
	}

	flights, err := s.flights.GetByIDs(ctx, res.FlightIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get flights: %w", err)
	}
	if len(flights) != len(res.FlightIDs) {
		return nil, fmt.Errorf("%w: a flight of the reservation no longer exists", apperrors.ErrNotFound)
	}

	seatMaps := make([]*booking.SeatMap, len(flights))
	for i := range flights {
		f := &flights[i]
		if f.Status == models.FlightCancelled || !f.IsActive {
			return nil, fmt.Errorf("%w: flight %s is not operating", apperrors.ErrInvalidState, f.Number)
		}
		if !f.DepartureAt.After(now) {
			return nil, fmt.Errorf("%w: flight %s has already departed", apperrors.ErrInvalidState, f.Number)
		}

		aircraft, err := s.aircraft.GetByID(ctx, f.AircraftID)
		if err != nil {
			return nil, fmt.Errorf("failed to get aircraft: %w", err)
		}
		if aircraft == nil {
			return nil, fmt.Errorf("%w: aircraft of flight %s", apperrors.ErrNotFound, f.Number)
		}
		if _, ok := aircraft.ClassConfig(req.ServiceClass); !ok {
			return nil, fmt.Errorf("%w: flight %s does not offer class %s", apperrors.ErrValidation, f.Number, req.ServiceClass)
		}

		seats, err := s.seats.GetByFlight(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get seat map: %w", err)
		}
		seatMaps[i] = booking.NewSeatMap(seats)
	}

	planned, err := planTickets(res, flights, seatMaps, req, address, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientInventory) {
			metrics.InventoryRejectionsTotal.Inc()
		}
		return nil, err
	}

	var total int64
	for _, t := range planned {
		total += t.PriceCents
	}

	receipt, err := s.payments.Charge(ctx, req.PaymentMethod, req.PaymentDetails, total)
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues(req.PaymentMethod, "declined").Inc()
		return nil, err
	}
	metrics.PaymentsTotal.WithLabelValues(req.PaymentMethod, "approved").Inc()

	expiresAt := res.ExpiresAt
	if res.Status == models.ReservationPending {
		expiresAt = booking.PaymentDeadline(now)
	}

	issued, err := s.tickets.IssueBatch(ctx, repository.IssueParams{
		ReservationID:  res.ID,
		ExpectedStatus: res.Status,
		Class:          req.ServiceClass,
		FlightIDs:      res.FlightIDs,
		PassengerCount: res.PassengerCount,
		ExpiresAt:      expiresAt,
		Tickets:        planned,
	})
	if err != nil {
		s.payments.Refund(ctx, receipt.TransactionID, receipt.AmountCents)
		if errors.Is(err, apperrors.ErrInsufficientInventory) {
			metrics.InventoryRejectionsTotal.Inc()
		}
		logger.WithContext(ctx).Warn("Ticket issuance failed, payment reverted",
			"reservation_id", res.ID,
			"transaction_id", receipt.TransactionID,
			"error", err,
		)
		if isWorkflowError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to issue tickets: %w", err)
	}

	previous := res.Status
	res.Status = models.ReservationConfirmed
	res.TicketsIssued = true
	res.HeldClass = req.ServiceClass
	res.SeatsHeld = false
	res.ExpiresAt = expiresAt

	metrics.TicketsIssuedTotal.WithLabelValues(req.ServiceClass).Add(float64(len(issued)))
	if previous != res.Status {
		metrics.ReservationsTotal.WithLabelValues(res.Status).Inc()
	}

	event := models.TicketsIssuedEvent{
		ReservationID:   res.ID,
		UserID:          res.UserID,
		TransactionID:   receipt.TransactionID,
		PaymentMethod:   req.PaymentMethod,
		DeliveryMethod:  req.DeliveryMethod,
		DeliveryAddress: address,
		Timestamp:       now,
	}
	for _, t := range issued {
		event.Tickets = append(event.Tickets, models.IssuedTicket{
			TicketID:   t.ID,
			Code:       t.Code,
			FlightID:   t.FlightID,
			Seat:       t.Seat,
			Class:      t.Class,
			PriceCents: t.PriceCents,
		})
	}
	publish(ctx, s.publisher, models.EventTicketsIssued, event)

	logger.WithContext(ctx).Info("Tickets issued",
		"reservation_id", res.ID,
		"tickets", len(issued),
		"class", req.ServiceClass,
		"amount_cents", total,
	)

	return &models.PurchaseResponse{
		Reservation: res,
		Tickets:     issued,
		Payment:     receipt,
	}, nil
}

func (s *BookingService) expire(ctx context.Context, res *models.Reservation, now time.Time) {
	expired, err := s.reservations.Expire(ctx, res.ID, now)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to expire reservation",
			"reservation_id", res.ID,
			"error", err,
		)
		return
	}
	if expired {
		res.Status = models.ReservationExpired
		metrics.ReservationsTotal.WithLabelValues(res.Status).Inc()
		publish(ctx, s.publisher, models.EventReservationExpired, reservationEvent(res, "deadline passed", now))
	}
}

// checkSeatAssignments validates the shape of requested seats: one row per
// flight and one label per passenger. Empty labels are assigned automatically.
func checkSeatAssignments(assignments [][]string, flights, passengers int) error {
	if len(assignments) == 0 {
		return nil
	}
	if len(assignments) != flights {
		return fmt.Errorf("%w: seat assignments must list %d flight(s)", apperrors.ErrValidation, flights)
	}
	for i, row := range assignments {
		if len(row) != passengers {
			return fmt.Errorf("%w: seat assignments for flight %d must list %d passenger(s)", apperrors.ErrValidation, i+1, passengers)
		}
	}
	return nil
}

// planTickets builds the tickets of a purchase, one per passenger per flight,
// occupying seats in the in-memory seat maps.
func planTickets(res *models.Reservation, flights []models.Flight, seatMaps []*booking.SeatMap, req *models.PurchaseRequest, address *string, now time.Time) ([]models.Ticket, error) {
	planned := make([]models.Ticket, 0, len(flights)*len(res.Passengers))

	for fi := range flights {
		f := &flights[fi]
		seatMap := seatMaps[fi]

		if free := seatMap.FreeCount(req.ServiceClass); free < len(res.Passengers) {
			return nil, fmt.Errorf("%w: flight %s has %d free %s seats", apperrors.ErrInsufficientInventory, f.Number, free, req.ServiceClass)
		}

		for pi, p := range res.Passengers {
			code, err := booking.NewTicketCode()
			if err != nil {
				return nil, fmt.Errorf("failed to generate ticket code: %w", err)
			}

			var seat models.FlightSeat
			if label := requestedSeat(req.SeatAssignments, fi, pi); label != "" {
				seat, err = seatMap.Occupy(label, req.ServiceClass, code)
			} else {
				seat, err = seatMap.OccupyFirstFree(req.ServiceClass, code)
			}
			if err != nil {
				return nil, err
			}

			planned = append(planned, models.Ticket{
				Code:            code,
				ReservationID:   res.ID,
				PassengerID:     p.ID,
				FlightID:        f.ID,
				UserID:          res.UserID,
				Seat:            seat.Label,
				Class:           req.ServiceClass,
				PriceCents:      booking.FareFor(f, req.ServiceClass),
				Status:          models.TicketIssued,
				DeliveryMethod:  req.DeliveryMethod,
				DeliveryAddress: address,
				Baggage:         models.BaggageList{},
				IssuedAt:        now,
				ExpiresAt:       booking.TicketExpiry(f.DepartureAt),
			})
		}
	}
	return planned, nil
}

func requestedSeat(assignments [][]string, flight, passenger int) string {
	if flight >= len(assignments) || passenger >= len(assignments[flight]) {
		return ""
	}
	return strings.TrimSpace(assignments[flight][passenger])
}

// isWorkflowError reports whether err is one of the typed booking failures
// that callers map to a response code
func isWorkflowError(err error) bool {
	for _, target := range []error{
		apperrors.ErrNotFound,
		apperrors.ErrInvalidState,
		apperrors.ErrInsufficientInventory,
		apperrors.ErrSeatUnavailable,
		apperrors.ErrValidation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
