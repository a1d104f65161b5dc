package consumers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"skybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandlers() (*Handlers, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewHandlers(slog.New(slog.NewJSONHandler(&buf, nil))), &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &record))
	return record
}

func TestHandleReservationEvent(t *testing.T) {
	h, buf := newTestHandlers()
	data, err := json.Marshal(models.ReservationEvent{
		ReservationID:   12,
		Code:            "RSV-7QK2PA",
		UserID:          3,
		Status:          models.ReservationExpired,
		PassengerCount:  2,
		TotalPriceCents: 560000,
		Reason:          "expiration sweep",
		Timestamp:       time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, h.HandleReservationEvent(context.Background(), data))

	record := lastRecord(t, buf)
	assert.Equal(t, "Reservation event", record["msg"])
	assert.Equal(t, "audit", record["component"])
	assert.Equal(t, "RSV-7QK2PA", record["code"])
	assert.Equal(t, models.ReservationExpired, record["status"])
	assert.EqualValues(t, 560000, record["total_cents"])
}

func TestHandleFlightCancelledLogsWarning(t *testing.T) {
	h, buf := newTestHandlers()
	data, err := json.Marshal(models.FlightStatusChangedEvent{
		FlightID:        5,
		Number:          "AV204",
		PreviousStatus:  models.FlightScheduled,
		Status:          models.FlightCancelled,
		RefundedTickets: 4,
	})
	require.NoError(t, err)

	require.NoError(t, h.HandleFlightStatusChanged(context.Background(), data))

	record := lastRecord(t, buf)
	assert.Equal(t, "WARN", record["level"])
	assert.EqualValues(t, 4, record["refunded_tickets"])
}

func TestHandlersRejectMalformedPayload(t *testing.T) {
	h, _ := newTestHandlers()
	for name, process := range map[string]ProcessFunc{
		"reservation": h.HandleReservationEvent,
		"ticket":      h.HandleTicketEvent,
		"flight":      h.HandleFlightStatusChanged,
	} {
		t.Run(name, func(t *testing.T) {
			err := process(context.Background(), []byte(`{"reservation_id":`))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
