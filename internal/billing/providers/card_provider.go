package providers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// CardGateway — внешний карточный шлюз
type CardGateway interface {
	CreateSession(ctx context.Context, amount decimal.Decimal, currency, reference string) (sessionID string, err error)
	Capture(ctx context.Context, sessionID string) (chargeID string, err error)
	Refund(ctx context.Context, chargeID string, amount decimal.Decimal) error
}

// CardProvider проводит платеж через карточный шлюз: сессия при инициации,
// списание при подтверждении.
type CardProvider struct {
	gateway CardGateway
	log     *logger.Logger
}

func NewCardProvider(gateway CardGateway, log *logger.Logger) *CardProvider {
	return &CardProvider{gateway: gateway, log: log}
}

func (p *CardProvider) Initiate(ctx context.Context, payment *domain.Payment) error {
	sessionID, err := p.gateway.CreateSession(ctx, payment.Amount.Add(payment.Tip), "", payment.DeliveryID)
	if err != nil {
		return fmt.Errorf("%w: create card session: %v", domain.ErrProviderFailure, err)
	}
	payment.SessionID = sessionID
	payment.Status = domain.PaymentStatusPending
	return nil
}

func (p *CardProvider) Confirm(ctx context.Context, payment *domain.Payment) error {
	chargeID, err := p.gateway.Capture(ctx, payment.SessionID)
	if err != nil {
		return fmt.Errorf("%w: capture card payment: %v", domain.ErrProviderFailure, err)
	}
	payment.ChargeID = chargeID
	payment.Status = domain.PaymentStatusCompleted
	return nil
}

func (p *CardProvider) Refund(ctx context.Context, payment *domain.Payment, amount decimal.Decimal) error {
	if err := p.gateway.Refund(ctx, payment.ChargeID, amount); err != nil {
		return fmt.Errorf("%w: refund card payment: %v", domain.ErrProviderFailure, err)
	}
	return nil
}

// NoopCardGateway — заглушка шлюза для окружений без карточной интеграции
type NoopCardGateway struct{}

func (NoopCardGateway) CreateSession(_ context.Context, _ decimal.Decimal, _, _ string) (string, error) {
	return "sess_" + uuid.New().String(), nil
}

func (NoopCardGateway) Capture(_ context.Context, sessionID string) (string, error) {
	return "ch_" + uuid.New().String(), nil
}

func (NoopCardGateway) Refund(_ context.Context, _ string, _ decimal.Decimal) error {
	return nil
}
