package external

import (
	"context"
	"testing"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(v float64) func() float64 {
	return func() float64 { return v }
}

func TestChargeApproved(t *testing.T) {
	p := NewPaymentSimulator(PaymentConfig{SuccessRate: 0.95}).WithRand(fixed(0.5))

	receipt, err := p.Charge(context.Background(), models.PaymentCard,
		map[string]string{"numero": "4111111111111111", "cvv": "123"}, 30000)

	require.NoError(t, err)
	assert.NotEmpty(t, receipt.TransactionID)
	assert.Equal(t, int64(30000), receipt.AmountCents)
	assert.Equal(t, models.PaymentCard, receipt.Method)
}

func TestChargeDeclinedByRoll(t *testing.T) {
	p := NewPaymentSimulator(PaymentConfig{SuccessRate: 0.95}).WithRand(fixed(0.97))

	_, err := p.Charge(context.Background(), models.PaymentTransfer, map[string]string{}, 1000)
	assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)
}

func TestChargeCardRequiresDetails(t *testing.T) {
	p := NewPaymentSimulator(PaymentConfig{SuccessRate: 1}).WithRand(fixed(0))

	tests := []map[string]string{
		{},
		{"numero": "4111111111111111"},
		{"cvv": "123"},
		{"numero": " ", "cvv": "123"},
	}
	for _, details := range tests {
		_, err := p.Charge(context.Background(), models.PaymentCard, details, 1000)
		assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)
	}
}

func TestCashDoesNotNeedDetails(t *testing.T) {
	p := NewPaymentSimulator(PaymentConfig{SuccessRate: 1}).WithRand(fixed(0.99))

	_, err := p.Charge(context.Background(), models.PaymentCash, nil, 1000)
	assert.NoError(t, err)
}
