package external

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"

	"github.com/google/uuid"
)

type PaymentConfig struct {
	// SuccessRate is the probability in [0, 1] that a well-formed payment is approved
	SuccessRate float64
	// Latency simulates the round trip to a processor
	Latency time.Duration
}

// PaymentSimulator stands in for a payment gateway. Card payments need a
// card number and CVV; any payment is then approved with SuccessRate.
type PaymentSimulator struct {
	cfg PaymentConfig

	mu   sync.Mutex
	rand func() float64
}

func NewPaymentSimulator(cfg PaymentConfig) *PaymentSimulator {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &PaymentSimulator{cfg: cfg, rand: src.Float64}
}

// WithRand replaces the random source, returning the simulator for chaining
func (p *PaymentSimulator) WithRand(fn func() float64) *PaymentSimulator {
	p.mu.Lock()
	p.rand = fn
	p.mu.Unlock()
	return p
}

// Charge simulates charging amountCents with the given method
func (p *PaymentSimulator) Charge(ctx context.Context, method string, details map[string]string, amountCents int64) (*models.PaymentReceipt, error) {
	if method == models.PaymentCard {
		if strings.TrimSpace(details["numero"]) == "" || strings.TrimSpace(details["cvv"]) == "" {
			return nil, fmt.Errorf("%w: card number and cvv are required", apperrors.ErrPaymentDeclined)
		}
	}

	if p.cfg.Latency > 0 {
		select {
		case <-time.After(p.cfg.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	roll := p.rand()
	p.mu.Unlock()

	if roll >= p.cfg.SuccessRate {
		slog.Info("Simulated payment declined", "method", method, "amount_cents", amountCents)
		return nil, apperrors.ErrPaymentDeclined
	}

	return &models.PaymentReceipt{
		TransactionID: uuid.New().String(),
		Method:        method,
		AmountCents:   amountCents,
		ProcessedAt:   time.Now().UTC(),
	}, nil
}

// Refund records a simulated refund; the processor never rejects it
func (p *PaymentSimulator) Refund(ctx context.Context, ticketCode string, amountCents int64) {
	slog.Info("Simulated refund issued", "ticket_code", ticketCode, "amount_cents", amountCents)
}
