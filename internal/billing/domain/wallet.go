package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet — кошелек пользователя. Баланс не может уходить в минус,
// лимиты с нулевым значением трактуются как безлимит.
type Wallet struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"user_id" db:"user_id"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	Currency      string          `json:"currency" db:"currency"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	DailyLimit    decimal.Decimal `json:"daily_limit" db:"daily_limit"`
	MonthlyLimit  decimal.Decimal `json:"monthly_limit" db:"monthly_limit"`
	DailySpent    decimal.Decimal `json:"daily_spent" db:"daily_spent"`
	MonthlySpent  decimal.Decimal `json:"monthly_spent" db:"monthly_spent"`
	LimitsResetAt time.Time       `json:"limits_reset_at" db:"limits_reset_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// WalletTransaction — строка журнала операций кошелька. Журнал только
// пополняется, сумма подписана: дебет отрицательный, кредит положительный.
type WalletTransaction struct {
	ID        string          `json:"id" db:"id"`
	WalletID  string          `json:"wallet_id" db:"wallet_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	TxType    string          `json:"tx_type" db:"tx_type"`
	Reference string          `json:"reference" db:"reference"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Типы операций кошелька
const (
	TxTypeDeposit    = "DEPOSIT"
	TxTypeWithdrawal = "WITHDRAWAL"
	TxTypeEscrowHold = "ESCROW_HOLD"
	TxTypeRefund     = "REFUND"
	TxTypeEarning    = "EARNING"
)
