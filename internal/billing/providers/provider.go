package providers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
)

// PaymentProvider — абстракция платежного способа. Initiate открывает
// удержание средств, Confirm завершает отложенный платеж, Refund возвращает
// средства плательщику.
type PaymentProvider interface {
	Initiate(ctx context.Context, payment *domain.Payment) error
	Confirm(ctx context.Context, payment *domain.Payment) error
	Refund(ctx context.Context, payment *domain.Payment, amount decimal.Decimal) error
}

// Registry — таблица провайдеров по тегу
type Registry struct {
	providers map[string]PaymentProvider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]PaymentProvider)}
}

// Register добавляет провайдера под тегом
func (r *Registry) Register(tag string, p PaymentProvider) {
	r.providers[tag] = p
}

// Get возвращает провайдера по тегу платежа
func (r *Registry) Get(tag string) (PaymentProvider, error) {
	p, ok := r.providers[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotSupported, tag)
	}
	return p, nil
}
