package out

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
)

// WalletRepository — хранилище кошельков и журнала операций
type WalletRepository interface {
	// FindByUser возвращает кошелек пользователя
	FindByUser(ctx context.Context, userID string) (*domain.Wallet, error)

	// Ensure создает кошелек пользователя, если его еще нет
	Ensure(ctx context.Context, userID, currency string) (*domain.Wallet, error)

	// Debit атомарно списывает средства с проверкой баланса и лимитов,
	// добавляя строку журнала в той же транзакции
	Debit(ctx context.Context, userID string, amount decimal.Decimal, txType, reference string) error

	// Credit атомарно зачисляет средства со строкой журнала
	Credit(ctx context.Context, userID string, amount decimal.Decimal, txType, reference string) error

	// ResetWindows обнуляет счетчики лимитов при смене дня или месяца
	ResetWindows(ctx context.Context, userID string) error

	// Transactions возвращает последние операции кошелька
	Transactions(ctx context.Context, walletID string, limit int) ([]*domain.WalletTransaction, error)

	// LedgerSum возвращает сумму всех операций журнала кошелька
	LedgerSum(ctx context.Context, walletID string) (decimal.Decimal, error)
}
