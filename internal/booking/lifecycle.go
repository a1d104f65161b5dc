// Package booking holds the rules of the reservation and ticket workflow:
// state machines, deadlines, pricing, check-in windows, refunds and seat maps.
// Nothing here touches storage; services feed it data and a clock.
package booking

import (
	"fmt"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"
)

const (
	// HoldWindow is how long a new reservation stays payable before it expires
	HoldWindow = 24 * time.Hour
	// PaymentWindow replaces the hold once the reservation is confirmed
	PaymentWindow = 7 * 24 * time.Hour
	// MaxPassengers per reservation
	MaxPassengers = 9
)

var reservationTransitions = map[string][]string{
	models.ReservationPending:   {models.ReservationConfirmed, models.ReservationCancelled, models.ReservationExpired},
	models.ReservationConfirmed: {models.ReservationPaid, models.ReservationCancelled},
	models.ReservationPaid:      {models.ReservationCancelled},
}

// CanTransition reports whether a reservation may move from one state to another
func CanTransition(from, to string) bool {
	for _, next := range reservationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a reservation state change
func Transition(from, to string) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: reservation cannot go from %s to %s", apperrors.ErrInvalidState, from, to)
	}
	return nil
}

// HoldDeadline is the expiration of a reservation created at now
func HoldDeadline(now time.Time) time.Time {
	return now.Add(HoldWindow)
}

// PaymentDeadline is the expiration of a reservation confirmed at now
func PaymentDeadline(now time.Time) time.Time {
	return now.Add(PaymentWindow)
}

// IsExpired reports whether the reservation's deadline has passed
func IsExpired(res *models.Reservation, now time.Time) bool {
	return now.After(res.ExpiresAt)
}

// NeedsLazyExpiry reports whether a read should flip the reservation to vencida
func NeedsLazyExpiry(res *models.Reservation, now time.Time) bool {
	return res.Status == models.ReservationPending && IsExpired(res, now)
}

// HoldsInventory reports whether a reservation in this state still counts
// against flight capacity
func HoldsInventory(status string) bool {
	switch status {
	case models.ReservationPending, models.ReservationConfirmed, models.ReservationPaid:
		return true
	}
	return false
}

// CheckConfirm validates confirming a reservation at now.
// An expired pending reservation yields ErrExpired and must be marked vencida.
func CheckConfirm(res *models.Reservation, now time.Time) error {
	if res.Status != models.ReservationPending {
		return fmt.Errorf("%w: only pending reservations can be confirmed", apperrors.ErrInvalidState)
	}
	if IsExpired(res, now) {
		return apperrors.ErrExpired
	}
	return nil
}

// CheckPurchase validates issuing tickets for a reservation at now.
// An expired pending reservation yields ErrExpired and must be marked vencida;
// a confirmed one never auto-expires.
func CheckPurchase(res *models.Reservation, now time.Time) error {
	if res.Status != models.ReservationPending && res.Status != models.ReservationConfirmed {
		return fmt.Errorf("%w: tickets can only be issued for pending or confirmed reservations", apperrors.ErrInvalidState)
	}
	if res.TicketsIssued {
		return fmt.Errorf("%w: tickets were already issued for this reservation", apperrors.ErrInvalidState)
	}
	if NeedsLazyExpiry(res, now) {
		return apperrors.ErrExpired
	}
	return nil
}

// CheckUpdate validates editing preferences or observations
func CheckUpdate(res *models.Reservation) error {
	if res.Status != models.ReservationPending {
		return fmt.Errorf("%w: only pending reservations can be modified", apperrors.ErrInvalidState)
	}
	return nil
}

// ExpectedFlightCount returns how many flights a trip type requires
func ExpectedFlightCount(tripType string) int {
	if tripType == models.TripRoundTrip {
		return 2
	}
	return 1
}
