package booking

import (
	"fmt"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"
)

const (
	CheckInOpensBefore  = 24 * time.Hour
	CheckInClosesBefore = time.Hour
	TicketValidityAfter = 24 * time.Hour
	MaxBaggageWeightKg  = 50.0

	refundPercent = 80
)

var ticketTransitions = map[string][]string{
	models.TicketIssued: {models.TicketUsed, models.TicketCancelled, models.TicketRefunded},
}

// CanTransitionTicket reports whether a ticket may move from one state to another.
// Only emitido has outgoing edges.
func CanTransitionTicket(from, to string) bool {
	for _, next := range ticketTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TicketExpiry is the validity end of a ticket for a flight departing at departure
func TicketExpiry(departure time.Time) time.Time {
	return departure.Add(TicketValidityAfter)
}

// CheckInWindow returns the inclusive bounds during which check-in is accepted
func CheckInWindow(departure time.Time) (opens, closes time.Time) {
	return departure.Add(-CheckInOpensBefore), departure.Add(-CheckInClosesBefore)
}

// CheckCheckIn validates a check-in attempt at now
func CheckCheckIn(t *models.Ticket, departure, now time.Time) error {
	if t.Status != models.TicketIssued {
		return fmt.Errorf("%w: only issued tickets can be checked in", apperrors.ErrInvalidState)
	}
	if t.CheckedIn {
		return fmt.Errorf("%w: check-in was already performed", apperrors.ErrInvalidState)
	}
	opens, closes := CheckInWindow(departure)
	if now.Before(opens) {
		return fmt.Errorf("%w: opens at %s", apperrors.ErrCheckInTooEarly, opens.UTC().Format(time.RFC3339))
	}
	if now.After(closes) {
		return apperrors.ErrCheckInClosed
	}
	return nil
}

// CheckBaggage validates checked baggage items. The number of items is not limited.
func CheckBaggage(items []models.Baggage) error {
	for i, item := range items {
		if item.WeightKg < 0 || item.WeightKg > MaxBaggageWeightKg {
			return fmt.Errorf("%w: baggage %d weight must be between 0 and %.0f kg", apperrors.ErrValidation, i+1, MaxBaggageWeightKg)
		}
		if len(item.Description) > 255 {
			return fmt.Errorf("%w: baggage %d description is too long", apperrors.ErrValidation, i+1)
		}
	}
	return nil
}

// CheckCancellation validates a passenger cancelling a ticket at now
func CheckCancellation(t *models.Ticket, departure, now time.Time) error {
	if t.Status != models.TicketIssued {
		return fmt.Errorf("%w: only issued tickets can be cancelled", apperrors.ErrInvalidState)
	}
	if !now.Before(departure) {
		return fmt.Errorf("%w: the flight has already departed", apperrors.ErrInvalidState)
	}
	return nil
}

// CheckBoarding validates marking a ticket as used
func CheckBoarding(t *models.Ticket) error {
	if t.Status != models.TicketIssued {
		return fmt.Errorf("%w: only issued tickets can board", apperrors.ErrInvalidState)
	}
	if !t.CheckedIn {
		return fmt.Errorf("%w: passenger has not checked in", apperrors.ErrInvalidState)
	}
	return nil
}

// RefundAmount applies the cancellation penalty to the price paid
func RefundAmount(priceCents int64) int64 {
	return priceCents * refundPercent / 100
}
