package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	out "github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/providers"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// OpenHoldInput — параметры открытия удержания средств за доставку
type OpenHoldInput struct {
	DeliveryID string
	PayerID    string
	Provider   string
	Amount     decimal.Decimal
	Tip        decimal.Decimal
	Currency   string
}

// SettlementService проводит платежи доставок: удержание при создании,
// подтверждение, одноразовый расчет комиссии и возвраты.
type SettlementService struct {
	payments out.PaymentRepository
	registry *providers.Registry
	log      *logger.Logger
}

func NewSettlementService(payments out.PaymentRepository, registry *providers.Registry, log *logger.Logger) *SettlementService {
	return &SettlementService{
		payments: payments,
		registry: registry,
		log:      log,
	}
}

// OpenHold создает платеж и открывает удержание средств через провайдера.
// Для кошелька удержание означает немедленное списание.
func (s *SettlementService) OpenHold(ctx context.Context, input OpenHoldInput) (*domain.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	provider, err := s.registry.Get(input.Provider)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:             uuid.New().String(),
		DeliveryID:     input.DeliveryID,
		PayerID:        input.PayerID,
		Provider:       input.Provider,
		Status:         domain.PaymentStatusPending,
		Amount:         input.Amount,
		Tip:            input.Tip,
		RefundedAmount: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := provider.Initiate(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		// Средства уже удержаны провайдером, возвращаем их
		if refundErr := provider.Refund(ctx, payment, payment.Amount.Add(payment.Tip)); refundErr != nil {
			s.log.Error(logger.Entry{
				Action:     "hold_rollback_failed",
				Message:    refundErr.Error(),
				DeliveryID: input.DeliveryID,
				Error:      &logger.ErrObj{Msg: refundErr.Error()},
			})
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:     "payment_hold_opened",
		Message:    "payment hold opened",
		DeliveryID: input.DeliveryID,
		Additional: map[string]any{
			"provider": input.Provider,
			"amount":   input.Amount.String(),
		},
	})

	return payment, nil
}

// Confirm завершает отложенный платеж (наличные получены, карта списана).
// Повторное подтверждение завершенного платежа — тихий успех.
func (s *SettlementService) Confirm(ctx context.Context, deliveryID string) error {
	payment, err := s.payments.FindByDelivery(ctx, deliveryID)
	if err != nil {
		return err
	}
	if payment.Status == domain.PaymentStatusCompleted {
		return nil
	}

	provider, err := s.registry.Get(payment.Provider)
	if err != nil {
		return err
	}
	if err := provider.Confirm(ctx, payment); err != nil {
		return err
	}

	payment.UpdatedAt = time.Now().UTC()
	return s.payments.Update(ctx, payment)
}

// Settle проводит одноразовый расчет завершенной доставки: делит сумму между
// курьером и платформой, зачисляет долю курьеру. Повторный вызов — тихий
// no-op благодаря CAS на флаге escrow_released.
func (s *SettlementService) Settle(ctx context.Context, deliveryID, agentID string, commissionPercent decimal.Decimal) error {
	payment, err := s.payments.FindByDelivery(ctx, deliveryID)
	if err != nil {
		return err
	}

	if payment.EscrowReleased {
		return nil
	}
	if payment.Status != domain.PaymentStatusHeld && payment.Status != domain.PaymentStatusCompleted {
		return fmt.Errorf("%w: status %s", domain.ErrPaymentNotSettleable, payment.Status)
	}

	driverCut, platformCut := domain.SplitCommission(payment.Amount, commissionPercent)

	settled, err := s.payments.Settle(ctx, deliveryID, agentID, driverCut, platformCut, payment.Tip)
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}
	if !settled {
		// Конкурентный вызов успел первым
		s.log.Debug(logger.Entry{
			Action:     "settlement_skipped",
			Message:    "escrow already released",
			DeliveryID: deliveryID,
		})
		return nil
	}

	s.log.Info(logger.Entry{
		Action:     "payment_settled",
		Message:    "commission split recorded",
		DeliveryID: deliveryID,
		Additional: map[string]any{
			"agent_id":     agentID,
			"driver_cut":   driverCut.String(),
			"platform_cut": platformCut.String(),
		},
	})

	return nil
}

// Refund возвращает удержанные средства плательщику. Полностью возвращенный
// платеж при повторном вызове — тихий успех.
func (s *SettlementService) Refund(ctx context.Context, deliveryID string) error {
	payment, err := s.payments.FindByDelivery(ctx, deliveryID)
	if err != nil {
		return err
	}

	total := payment.Amount.Add(payment.Tip)
	remaining := total.Sub(payment.RefundedAmount)
	if !remaining.IsPositive() {
		return nil
	}

	provider, err := s.registry.Get(payment.Provider)
	if err != nil {
		return err
	}
	if err := provider.Refund(ctx, payment, remaining); err != nil {
		return err
	}

	if err := s.payments.RecordRefund(ctx, payment.ID, remaining, domain.PaymentStatusRefunded); err != nil {
		return fmt.Errorf("record refund: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:     "payment_refunded",
		Message:    "held funds returned to payer",
		DeliveryID: deliveryID,
		Additional: map[string]any{
			"amount": remaining.String(),
		},
	})

	return nil
}
