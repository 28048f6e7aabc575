package providers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// WalletFunds — операции над кошельком, нужные провайдеру
type WalletFunds interface {
	Debit(ctx context.Context, userID string, amount decimal.Decimal, txType, reference string) error
	Credit(ctx context.Context, userID string, amount decimal.Decimal, txType, reference string) error
}

// WalletProvider списывает средства с кошелька клиента сразу при инициации:
// удержание моделируется как немедленный дебет с возвратом при отмене.
type WalletProvider struct {
	funds WalletFunds
	log   *logger.Logger
}

func NewWalletProvider(funds WalletFunds, log *logger.Logger) *WalletProvider {
	return &WalletProvider{funds: funds, log: log}
}

func (p *WalletProvider) Initiate(ctx context.Context, payment *domain.Payment) error {
	total := payment.Amount.Add(payment.Tip)
	if err := p.funds.Debit(ctx, payment.PayerID, total, domain.TxTypeEscrowHold, payment.DeliveryID); err != nil {
		return err
	}
	payment.Status = domain.PaymentStatusHeld
	p.log.Info(logger.Entry{
		Action:     "wallet_hold_opened",
		Message:    "funds debited for delivery",
		DeliveryID: payment.DeliveryID,
		Additional: map[string]any{
			"payer_id": payment.PayerID,
			"amount":   total.String(),
		},
	})
	return nil
}

// Confirm для кошелька тривиален: средства уже удержаны при инициации
func (p *WalletProvider) Confirm(ctx context.Context, payment *domain.Payment) error {
	if payment.Status == domain.PaymentStatusHeld {
		payment.Status = domain.PaymentStatusCompleted
	}
	return nil
}

func (p *WalletProvider) Refund(ctx context.Context, payment *domain.Payment, amount decimal.Decimal) error {
	if err := p.funds.Credit(ctx, payment.PayerID, amount, domain.TxTypeRefund, payment.DeliveryID); err != nil {
		return fmt.Errorf("%w: refund to wallet: %v", domain.ErrProviderFailure, err)
	}
	return nil
}
