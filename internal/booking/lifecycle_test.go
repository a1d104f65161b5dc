package booking

import (
	"testing"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestReservationTransitions(t *testing.T) {
	allowed := map[[2]string]bool{
		{models.ReservationPending, models.ReservationConfirmed}:   true,
		{models.ReservationPending, models.ReservationCancelled}:   true,
		{models.ReservationPending, models.ReservationExpired}:     true,
		{models.ReservationConfirmed, models.ReservationPaid}:      true,
		{models.ReservationConfirmed, models.ReservationCancelled}: true,
		{models.ReservationPaid, models.ReservationCancelled}:      true,
	}
	states := []string{
		models.ReservationPending, models.ReservationConfirmed, models.ReservationPaid,
		models.ReservationCancelled, models.ReservationExpired,
	}

	for _, from := range states {
		for _, to := range states {
			want := allowed[[2]string{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
			if want {
				assert.NoError(t, Transition(from, to))
			} else {
				assert.ErrorIs(t, Transition(from, to), apperrors.ErrInvalidState)
			}
		}
	}
}

func TestHoldDeadlineIsAfterCreation(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.True(t, HoldDeadline(now).After(now))
	assert.Equal(t, now.Add(24*time.Hour), HoldDeadline(now))
	assert.Equal(t, now.Add(7*24*time.Hour), PaymentDeadline(now))
}

func TestNeedsLazyExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  string
		expires time.Time
		want    bool
	}{
		{"pending past deadline", models.ReservationPending, now.Add(-time.Minute), true},
		{"pending before deadline", models.ReservationPending, now.Add(time.Minute), false},
		{"pending exactly at deadline", models.ReservationPending, now, false},
		{"confirmed past deadline", models.ReservationConfirmed, now.Add(-time.Minute), false},
		{"cancelled past deadline", models.ReservationCancelled, now.Add(-time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &models.Reservation{Status: tt.status, ExpiresAt: tt.expires}
			assert.Equal(t, tt.want, NeedsLazyExpiry(res, now))
		})
	}
}

func TestCheckConfirm(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	res := &models.Reservation{Status: models.ReservationPending, ExpiresAt: now.Add(time.Hour)}
	assert.NoError(t, CheckConfirm(res, now))

	res.ExpiresAt = now.Add(-time.Hour)
	assert.ErrorIs(t, CheckConfirm(res, now), apperrors.ErrExpired)

	res.Status = models.ReservationConfirmed
	assert.ErrorIs(t, CheckConfirm(res, now), apperrors.ErrInvalidState)
}

func TestCheckPurchase(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		res    models.Reservation
		target error
	}{
		{"pending", models.Reservation{Status: models.ReservationPending, ExpiresAt: now.Add(time.Hour)}, nil},
		{"confirmed", models.Reservation{Status: models.ReservationConfirmed, ExpiresAt: now.Add(time.Hour)}, nil},
		{"paid", models.Reservation{Status: models.ReservationPaid, ExpiresAt: now.Add(time.Hour)}, apperrors.ErrInvalidState},
		{"cancelled", models.Reservation{Status: models.ReservationCancelled, ExpiresAt: now.Add(time.Hour)}, apperrors.ErrInvalidState},
		{"already issued", models.Reservation{Status: models.ReservationConfirmed, TicketsIssued: true, ExpiresAt: now.Add(time.Hour)}, apperrors.ErrInvalidState},
		{"expired pending", models.Reservation{Status: models.ReservationPending, ExpiresAt: now.Add(-time.Hour)}, apperrors.ErrExpired},
		{"confirmed past deadline", models.Reservation{Status: models.ReservationConfirmed, ExpiresAt: now.Add(-time.Hour)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPurchase(&tt.res, now)
			if tt.target == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestHoldsInventory(t *testing.T) {
	assert.True(t, HoldsInventory(models.ReservationPending))
	assert.True(t, HoldsInventory(models.ReservationConfirmed))
	assert.True(t, HoldsInventory(models.ReservationPaid))
	assert.False(t, HoldsInventory(models.ReservationCancelled))
	assert.False(t, HoldsInventory(models.ReservationExpired))
}

func TestExpectedFlightCount(t *testing.T) {
	assert.Equal(t, 1, ExpectedFlightCount(models.TripOneWay))
	assert.Equal(t, 2, ExpectedFlightCount(models.TripRoundTrip))
}
