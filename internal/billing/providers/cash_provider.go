package providers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// CashProvider — оплата наличными при получении. Средства не двигаются до
// подтверждения курьером, удержание чисто учетное.
type CashProvider struct {
	log *logger.Logger
}

func NewCashProvider(log *logger.Logger) *CashProvider {
	return &CashProvider{log: log}
}

func (p *CashProvider) Initiate(ctx context.Context, payment *domain.Payment) error {
	payment.Status = domain.PaymentStatusPending
	return nil
}

// Confirm фиксирует получение наличных курьером
func (p *CashProvider) Confirm(ctx context.Context, payment *domain.Payment) error {
	payment.Status = domain.PaymentStatusCompleted
	p.log.Info(logger.Entry{
		Action:     "cash_collected",
		Message:    "cash payment confirmed",
		DeliveryID: payment.DeliveryID,
	})
	return nil
}

// Refund для наличных — учетная операция, возврат происходит вне системы
func (p *CashProvider) Refund(ctx context.Context, payment *domain.Payment, amount decimal.Decimal) error {
	p.log.Info(logger.Entry{
		Action:     "cash_refund_recorded",
		Message:    "cash refund recorded, settled offline",
		DeliveryID: payment.DeliveryID,
		Additional: map[string]any{
			"amount": amount.String(),
		},
	})
	return nil
}
