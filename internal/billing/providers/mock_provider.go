package providers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
)

// MockProvider всегда успешен, используется в тестовых окружениях
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (MockProvider) Initiate(_ context.Context, payment *domain.Payment) error {
	payment.Status = domain.PaymentStatusHeld
	return nil
}

func (MockProvider) Confirm(_ context.Context, payment *domain.Payment) error {
	payment.Status = domain.PaymentStatusCompleted
	return nil
}

func (MockProvider) Refund(_ context.Context, _ *domain.Payment, _ decimal.Decimal) error {
	return nil
}
