package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/application/usecase"
)

// BillingGateway адаптирует биллинговые сервисы к портам контекста delivery
type BillingGateway struct {
	settlement *usecase.SettlementService
}

// NewBillingGateway создает шлюз биллинга
func NewBillingGateway(settlement *usecase.SettlementService) *BillingGateway {
	return &BillingGateway{settlement: settlement}
}

func (g *BillingGateway) OpenHold(ctx context.Context, deliveryID, payerID, provider string, amount, tip decimal.Decimal, currency string) error {
	_, err := g.settlement.OpenHold(ctx, usecase.OpenHoldInput{
		DeliveryID: deliveryID,
		PayerID:    payerID,
		Provider:   provider,
		Amount:     amount,
		Tip:        tip,
		Currency:   currency,
	})
	return err
}

func (g *BillingGateway) Settle(ctx context.Context, deliveryID, agentID string, commissionPercent decimal.Decimal) error {
	return g.settlement.Settle(ctx, deliveryID, agentID, commissionPercent)
}

func (g *BillingGateway) Refund(ctx context.Context, deliveryID string) error {
	return g.settlement.Refund(ctx, deliveryID)
}
