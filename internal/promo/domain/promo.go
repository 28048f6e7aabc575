package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Типы скидок промокода
const (
	DiscountPercentage  = "PERCENTAGE"
	DiscountFixedAmount = "FIXED_AMOUNT"
)

// PromoCode представляет промокод с правилами применения
type PromoCode struct {
	ID             string           `json:"id" db:"id"`
	Code           string           `json:"code" db:"code"`
	DiscountType   string           `json:"discount_type" db:"discount_type"`
	DiscountValue  decimal.Decimal  `json:"discount_value" db:"discount_value"`
	MaxDiscount    *decimal.Decimal `json:"max_discount,omitempty" db:"max_discount"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount,omitempty" db:"min_order_amount"`
	UsageLimit     int              `json:"usage_limit" db:"usage_limit"`
	PerUserLimit   int              `json:"per_user_limit" db:"per_user_limit"`
	UsageCount     int              `json:"usage_count" db:"usage_count"`
	ValidFrom      time.Time        `json:"valid_from" db:"valid_from"`
	ValidUntil     time.Time        `json:"valid_until" db:"valid_until"`
	NewUsersOnly   bool             `json:"new_users_only" db:"new_users_only"`
	FirstOrderOnly bool             `json:"first_order_only" db:"first_order_only"`
	IsActive       bool             `json:"is_active" db:"is_active"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// PromoCodeUsage — запись об использовании промокода
type PromoCodeUsage struct {
	ID             string          `json:"id" db:"id"`
	PromoID        string          `json:"promo_id" db:"promo_id"`
	UserID         string          `json:"user_id" db:"user_id"`
	DeliveryID     string          `json:"delivery_id" db:"delivery_id"`
	OriginalAmount decimal.Decimal `json:"original_amount" db:"original_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount" db:"final_amount"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Discount вычисляет скидку промокода для суммы заказа.
// Результат всегда в пределах [0, amount].
func (p *PromoCode) Discount(amount decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch p.DiscountType {
	case DiscountPercentage:
		d = amount.Mul(p.DiscountValue).Div(decimal.NewFromInt(100))
		if p.MaxDiscount != nil && d.GreaterThan(*p.MaxDiscount) {
			d = *p.MaxDiscount
		}
	case DiscountFixedAmount:
		d = p.DiscountValue
	default:
		return decimal.Zero
	}

	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(amount) {
		return amount
	}
	return d.Round(2)
}
