package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"skybook/internal/config"
	"skybook/internal/database"
	"skybook/internal/external"
	"skybook/internal/messaging"
	"skybook/internal/models"
	"skybook/internal/repository"
	"skybook/internal/service"

	"github.com/nats-io/stan.go"
)

const queueGroup = "consumers"

// ConsumerService владеет соединениями воркера: PostgreSQL, NATS и RabbitMQ
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	delivery *messaging.DeliveryPublisher
	handlers *Handlers
	subs     []stan.Subscription

	Reservations *service.ReservationService
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	delivery, err := messaging.NewDeliveryPublisher(cfg.Rabbit)
	if err != nil {
		natsClient.Close()
		db.Close()
		return nil, err
	}

	repos := repository.NewRepositories(db)
	reservations := service.NewReservationService(repos.Reservations, repos.Flights,
		external.NewPaymentSimulator(cfg.Payment), natsClient)

	return &ConsumerService{
		db:           db,
		nats:         natsClient,
		delivery:     delivery,
		handlers:     NewHandlers(slog.Default()),
		Reservations: reservations,
	}, nil
}

// DB нужен фоновым задачам для мониторинга пула
func (cs *ConsumerService) DB() *database.DB {
	return cs.db
}

// Delivery - очередь доставки билетов
func (cs *ConsumerService) Delivery() *messaging.DeliveryPublisher {
	return cs.delivery
}

// Subscribe подписывает обработчик на subject в общей группе consumers
func (cs *ConsumerService) Subscribe(subject string, process ProcessFunc) error {
	sub, err := cs.nats.SubscribeQueue(subject, queueGroup, Handler(subject, process))
	if err != nil {
		return err
	}
	cs.subs = append(cs.subs, sub)
	return nil
}

// Start подписывает журнал аудита на события бронирований, билетов и рейсов
func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	subjects := map[string]ProcessFunc{
		models.EventReservationCreated:   cs.handlers.HandleReservationEvent,
		models.EventReservationConfirmed: cs.handlers.HandleReservationEvent,
		models.EventReservationPaid:      cs.handlers.HandleReservationEvent,
		models.EventReservationCancelled: cs.handlers.HandleReservationEvent,
		models.EventReservationExpired:   cs.handlers.HandleReservationEvent,
		models.EventTicketCheckedIn:      cs.handlers.HandleTicketEvent,
		models.EventTicketCancelled:      cs.handlers.HandleTicketEvent,
		models.EventFlightStatusChanged:  cs.handlers.HandleFlightStatusChanged,
	}
	for subject, process := range subjects {
		if err := cs.Subscribe(subject, process); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
	}

	slog.Info("All consumers started successfully", "subscriptions", len(cs.subs))
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	// Close, а не Unsubscribe: durable-подписки должны пережить рестарт
	for _, sub := range cs.subs {
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if err := cs.delivery.Close(); err != nil {
		slog.Error("Error closing RabbitMQ connection", "error", err)
	}

	if err := cs.nats.Close(); err != nil {
		slog.Error("Error closing NATS connection", "error", err)
	}

	if err := cs.db.Close(); err != nil {
		slog.Error("Error closing database connection", "error", err)
		return err
	}

	return nil
}
