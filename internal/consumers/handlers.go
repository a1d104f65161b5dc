package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"skybook/internal/models"

	"github.com/nats-io/stan.go"
)

// ErrMalformed помечает сообщение, которое нельзя разобрать: его подтверждаем,
// чтобы не получать повторно
var ErrMalformed = errors.New("malformed event")

// ProcessFunc обрабатывает тело сообщения. Ошибка, кроме ErrMalformed,
// оставляет сообщение неподтвержденным для повторной доставки.
type ProcessFunc func(ctx context.Context, data []byte) error

// Handler оборачивает ProcessFunc в обработчик stan с ручным ack
func Handler(subject string, process ProcessFunc) stan.MsgHandler {
	return func(m *stan.Msg) {
		err := process(context.Background(), m.Data)
		switch {
		case err == nil:
		case errors.Is(err, ErrMalformed):
			slog.Error("Dropping malformed message", "subject", subject, "sequence", m.Sequence, "error", err)
		default:
			slog.Error("Failed to process message, will be redelivered",
				"subject", subject, "sequence", m.Sequence, "redelivered", m.Redelivered, "error", err)
			return
		}
		if err := m.Ack(); err != nil {
			slog.Error("Failed to ack message", "subject", subject, "sequence", m.Sequence, "error", err)
		}
	}
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// Handlers пишут события жизненного цикла в журнал аудита
type Handlers struct {
	log *slog.Logger
}

func NewHandlers(log *slog.Logger) *Handlers {
	return &Handlers{log: log.With("component", "audit")}
}

func (h *Handlers) HandleReservationEvent(_ context.Context, data []byte) error {
	var event models.ReservationEvent
	if err := decode(data, &event); err != nil {
		return err
	}

	h.log.Info("Reservation event",
		"reservation_id", event.ReservationID,
		"code", event.Code,
		"user_id", event.UserID,
		"status", event.Status,
		"passengers", event.PassengerCount,
		"total_cents", event.TotalPriceCents,
		"reason", event.Reason,
		"at", event.Timestamp)
	return nil
}

func (h *Handlers) HandleTicketEvent(_ context.Context, data []byte) error {
	var event models.TicketEvent
	if err := decode(data, &event); err != nil {
		return err
	}

	h.log.Info("Ticket event",
		"ticket_id", event.TicketID,
		"code", event.Code,
		"reservation_id", event.ReservationID,
		"flight_id", event.FlightID,
		"status", event.Status,
		"refund_cents", event.RefundCents,
		"at", event.Timestamp)
	return nil
}

func (h *Handlers) HandleFlightStatusChanged(_ context.Context, data []byte) error {
	var event models.FlightStatusChangedEvent
	if err := decode(data, &event); err != nil {
		return err
	}

	log := h.log.Info
	if event.Status == models.FlightCancelled {
		log = h.log.Warn
	}
	log("Flight status changed",
		"flight_id", event.FlightID,
		"number", event.Number,
		"from", event.PreviousStatus,
		"to", event.Status,
		"refunded_tickets", event.RefundedTickets,
		"at", event.Timestamp)
	return nil
}
