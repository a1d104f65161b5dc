package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"skybook/internal/consumers"
	"skybook/internal/models"
)

// DeliveryQueue принимает задания на доставку билетов
type DeliveryQueue interface {
	Publish(ctx context.Context, job models.DeliveryJob) error
}

// DeliveryHandler раскладывает tickets.issued на задания доставки, по одному на билет
type DeliveryHandler struct {
	queue DeliveryQueue
	now   func() time.Time
}

func NewDeliveryHandler(queue DeliveryQueue) *DeliveryHandler {
	return &DeliveryHandler{queue: queue, now: time.Now}
}

// HandleTicketsIssued публикует задания в RabbitMQ. При ошибке публикации
// сообщение не подтверждается и NATS доставит его повторно; получатель
// очереди дедуплицирует задания по коду билета.
func (h *DeliveryHandler) HandleTicketsIssued(ctx context.Context, data []byte) error {
	var event models.TicketsIssuedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("%w: %v", consumers.ErrMalformed, err)
	}
	if len(event.Tickets) == 0 {
		slog.Warn("Tickets issued event without tickets", "reservation_id", event.ReservationID)
		return nil
	}

	requestedAt := h.now().UTC()
	for _, ticket := range event.Tickets {
		job := models.DeliveryJob{
			TicketCode:    ticket.Code,
			ReservationID: event.ReservationID,
			UserID:        event.UserID,
			Method:        event.DeliveryMethod,
			Address:       event.DeliveryAddress,
			RequestedAt:   requestedAt,
		}
		if err := h.queue.Publish(ctx, job); err != nil {
			return fmt.Errorf("failed to queue delivery for ticket %s: %w", ticket.Code, err)
		}
	}

	slog.Info("Queued ticket delivery",
		"reservation_id", event.ReservationID,
		"method", event.DeliveryMethod,
		"tickets", len(event.Tickets))
	return nil
}
