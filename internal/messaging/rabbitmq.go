package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"skybook/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeliveryQueue receives one job per issued ticket
const DeliveryQueue = "ticket.delivery"

type RabbitConfig struct {
	URL   string
	Queue string
}

// DeliveryPublisher sends ticket delivery jobs to a durable RabbitMQ queue
type DeliveryPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewDeliveryPublisher(cfg RabbitConfig) (*DeliveryPublisher, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = DeliveryQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	// Durable so jobs survive broker restarts
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	slog.Info("Connected to RabbitMQ", "queue", queue)
	return &DeliveryPublisher{conn: conn, ch: ch, queue: queue}, nil
}

// Publish sends a persistent JSON delivery job
func (p *DeliveryPublisher) Publish(ctx context.Context, job models.DeliveryJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery job: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    job.TicketCode,
		Type:         job.Method,
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish delivery job: %w", err)
	}
	return nil
}

func (p *DeliveryPublisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
