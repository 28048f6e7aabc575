package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment — платеж за доставку. Одна строка на доставку, средства удерживаются
// до завершения доставки, после чего ровно один раз делятся между курьером
// и платформой.
type Payment struct {
	ID               string          `json:"id" db:"id"`
	DeliveryID       string          `json:"delivery_id" db:"delivery_id"`
	PayerID          string          `json:"payer_id" db:"payer_id"`
	Provider         string          `json:"provider" db:"provider"`
	Method           string          `json:"method" db:"method"`
	Status           string          `json:"status" db:"status"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	Tip              decimal.Decimal `json:"tip" db:"tip"`
	PlatformFee      decimal.Decimal `json:"platform_fee" db:"platform_fee"`
	DriverAmount     decimal.Decimal `json:"driver_amount" db:"driver_amount"`
	RefundedAmount   decimal.Decimal `json:"refunded_amount" db:"refunded_amount"`
	ProviderRef      string          `json:"provider_ref" db:"provider_ref"`
	SessionID        string          `json:"session_id" db:"session_id"`
	ChargeID         string          `json:"charge_id" db:"charge_id"`
	EscrowReleased   bool            `json:"escrow_released" db:"escrow_released"`
	EscrowReleasedAt *time.Time      `json:"escrow_released_at,omitempty" db:"escrow_released_at"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// Статусы платежа
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusHeld      = "HELD"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusRefunded  = "REFUNDED"
	PaymentStatusFailed    = "FAILED"
)

// Теги платежных провайдеров
const (
	ProviderWallet = "wallet"
	ProviderCash   = "cash"
	ProviderCard   = "card"
	ProviderMock   = "mock"
)

// DriverEarning — начисление курьеру за завершенную доставку
type DriverEarning struct {
	ID         string          `json:"id" db:"id"`
	AgentID    string          `json:"agent_id" db:"agent_id"`
	DeliveryID string          `json:"delivery_id" db:"delivery_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Tip        decimal.Decimal `json:"tip" db:"tip"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// SplitCommission делит сумму платежа между курьером и платформой.
// Доля курьера округляется до 2 знаков, доля платформы — точный остаток,
// поэтому сумма долей всегда равна исходной.
func SplitCommission(total, commissionPercent decimal.Decimal) (driverCut, platformCut decimal.Decimal) {
	hundred := decimal.NewFromInt(100)
	driverCut = total.Mul(hundred.Sub(commissionPercent)).Div(hundred).Round(2)
	platformCut = total.Sub(driverCut)
	return driverCut, platformCut
}
