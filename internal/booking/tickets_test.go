package booking

import (
	"testing"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTicketTransitions(t *testing.T) {
	states := []string{models.TicketIssued, models.TicketUsed, models.TicketCancelled, models.TicketRefunded}

	for _, from := range states {
		for _, to := range states {
			want := from == models.TicketIssued && to != models.TicketIssued
			assert.Equal(t, want, CanTransitionTicket(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCheckCheckInWindow(t *testing.T) {
	departure := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		before time.Duration
		target error
	}{
		{"30 hours before is too early", 30 * time.Hour, apperrors.ErrCheckInTooEarly},
		{"window opens at 24 hours", 24 * time.Hour, nil},
		{"5 hours before is accepted", 5 * time.Hour, nil},
		{"window closes at 1 hour", time.Hour, nil},
		{"30 minutes before is closed", 30 * time.Minute, apperrors.ErrCheckInClosed},
		{"after departure is closed", -time.Hour, apperrors.ErrCheckInClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := &models.Ticket{Status: models.TicketIssued}
			err := CheckCheckIn(ticket, departure, departure.Add(-tt.before))
			if tt.target == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestCheckCheckInRejectsState(t *testing.T) {
	departure := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	now := departure.Add(-5 * time.Hour)

	assert.ErrorIs(t, CheckCheckIn(&models.Ticket{Status: models.TicketCancelled}, departure, now), apperrors.ErrInvalidState)
	assert.ErrorIs(t, CheckCheckIn(&models.Ticket{Status: models.TicketIssued, CheckedIn: true}, departure, now), apperrors.ErrInvalidState)
}

func TestCheckBaggage(t *testing.T) {
	assert.NoError(t, CheckBaggage(nil))
	assert.NoError(t, CheckBaggage([]models.Baggage{{WeightKg: 0}, {WeightKg: 50, Description: "suitcase"}}))
	assert.ErrorIs(t, CheckBaggage([]models.Baggage{{WeightKg: 50.5}}), apperrors.ErrValidation)
	assert.ErrorIs(t, CheckBaggage([]models.Baggage{{WeightKg: -1}}), apperrors.ErrValidation)

	many := make([]models.Baggage, 8)
	for i := range many {
		many[i] = models.Baggage{WeightKg: 23, Description: "bag"}
	}
	assert.NoError(t, CheckBaggage(many))
	many[7].WeightKg = 51
	assert.ErrorIs(t, CheckBaggage(many), apperrors.ErrValidation)
}

func TestCheckCancellation(t *testing.T) {
	departure := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	issued := &models.Ticket{Status: models.TicketIssued}

	assert.NoError(t, CheckCancellation(issued, departure, departure.Add(-time.Minute)))
	assert.ErrorIs(t, CheckCancellation(issued, departure, departure), apperrors.ErrInvalidState)
	assert.ErrorIs(t, CheckCancellation(issued, departure, departure.Add(time.Hour)), apperrors.ErrInvalidState)
	assert.ErrorIs(t, CheckCancellation(&models.Ticket{Status: models.TicketUsed}, departure, departure.Add(-time.Hour)), apperrors.ErrInvalidState)
}

func TestCheckBoarding(t *testing.T) {
	assert.NoError(t, CheckBoarding(&models.Ticket{Status: models.TicketIssued, CheckedIn: true}))
	assert.ErrorIs(t, CheckBoarding(&models.Ticket{Status: models.TicketIssued}), apperrors.ErrInvalidState)
	assert.ErrorIs(t, CheckBoarding(&models.Ticket{Status: models.TicketCancelled, CheckedIn: true}), apperrors.ErrInvalidState)
}

func TestRefundAmount(t *testing.T) {
	assert.Equal(t, int64(12000), RefundAmount(15000))
	assert.Equal(t, int64(0), RefundAmount(0))
	assert.Equal(t, int64(7999), RefundAmount(9999))
}

func TestTicketExpiry(t *testing.T) {
	departure := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, departure.Add(24*time.Hour), TicketExpiry(departure))
}
