package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	out "github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// WalletService — операции над кошельками пользователей
type WalletService struct {
	wallets out.WalletRepository
	log     *logger.Logger
}

func NewWalletService(wallets out.WalletRepository, log *logger.Logger) *WalletService {
	return &WalletService{wallets: wallets, log: log}
}

// Balance возвращает кошелек пользователя
func (s *WalletService) Balance(ctx context.Context, userID string) (*domain.Wallet, error) {
	return s.wallets.FindByUser(ctx, userID)
}

// Deposit зачисляет средства на кошелек
func (s *WalletService) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Wallet, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := s.wallets.Ensure(ctx, userID, ""); err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}
	if err := s.wallets.Credit(ctx, userID, amount, domain.TxTypeDeposit, ""); err != nil {
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:  "wallet_deposit",
		Message: "funds deposited",
		Additional: map[string]any{
			"user_id": userID,
			"amount":  amount.String(),
		},
	})

	return s.wallets.FindByUser(ctx, userID)
}

// Withdraw списывает средства с кошелька. Баланс и лимиты проверяются
// атомарно в хранилище, окна лимитов сбрасываются перед списанием.
func (s *WalletService) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Wallet, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if err := s.wallets.ResetWindows(ctx, userID); err != nil {
		return nil, fmt.Errorf("reset limit windows: %w", err)
	}
	if err := s.wallets.Debit(ctx, userID, amount, domain.TxTypeWithdrawal, ""); err != nil {
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:  "wallet_withdrawal",
		Message: "funds withdrawn",
		Additional: map[string]any{
			"user_id": userID,
			"amount":  amount.String(),
		},
	})

	return s.wallets.FindByUser(ctx, userID)
}

// Debit списывает средства для удержания платежа. Используется платежным
// провайдером кошелька, лимиты применяются как к обычным расходам.
func (s *WalletService) Debit(ctx context.Context, userID string, amount decimal.Decimal, txType, reference string) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if err := s.wallets.ResetWindows(ctx, userID); err != nil {
		return fmt.Errorf("reset limit windows: %w", err)
	}
	return s.wallets.Debit(ctx, userID, amount, txType, reference)
}

// Credit зачисляет средства, используется для возвратов
func (s *WalletService) Credit(ctx context.Context, userID string, amount decimal.Decimal, txType, reference string) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if _, err := s.wallets.Ensure(ctx, userID, ""); err != nil {
		return fmt.Errorf("ensure wallet: %w", err)
	}
	return s.wallets.Credit(ctx, userID, amount, txType, reference)
}

// History возвращает последние операции кошелька пользователя
func (s *WalletService) History(ctx context.Context, userID string, limit int) ([]*domain.WalletTransaction, error) {
	wallet, err := s.wallets.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.wallets.Transactions(ctx, wallet.ID, limit)
}

// Reconcile сверяет баланс кошелька с суммой журнала операций
func (s *WalletService) Reconcile(ctx context.Context, userID string) (bool, error) {
	wallet, err := s.wallets.FindByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	sum, err := s.wallets.LedgerSum(ctx, wallet.ID)
	if err != nil {
		return false, err
	}
	if !sum.Equal(wallet.Balance) {
		s.log.Error(logger.Entry{
			Action:  "wallet_reconciliation_mismatch",
			Message: "ledger sum does not match balance",
			Additional: map[string]any{
				"user_id":    userID,
				"balance":    wallet.Balance.String(),
				"ledger_sum": sum.String(),
			},
		})
		return false, nil
	}
	return true, nil
}
