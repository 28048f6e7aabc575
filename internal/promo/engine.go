package promo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/promo/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// PromoRepository — порт хранилища промокодов
type PromoRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	CountUserUsages(ctx context.Context, promoCodeID, userID string) (int, error)
	// Redeem атомарно инкрементирует usage_count и записывает использование.
	// Возвращает ErrUsageLimitReached если лимит исчерпан конкурентным погашением.
	Redeem(ctx context.Context, usage *domain.PromoCodeUsage) error
}

// OrderHistory — порт подсчета завершенных заказов пользователя
type OrderHistory interface {
	CompletedOrders(ctx context.Context, userID string) (int, error)
}

// Estimation — результат применения промокода при оценке стоимости
type Estimation struct {
	PromoCodeID string          `json:"promo_code_id,omitempty"`
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	Valid       bool            `json:"valid"`
	Reason      string          `json:"reason,omitempty"`
}

// Engine применяет промокоды при оценке и погашении
type Engine struct {
	promos PromoRepository
	orders OrderHistory
	log    *logger.Logger
}

func NewEngine(promos PromoRepository, orders OrderHistory, log *logger.Logger) *Engine {
	return &Engine{promos: promos, orders: orders, log: log}
}

// Estimate применяет промокод при оценке стоимости. Невалидный код не является
// ошибкой: возвращается нулевая скидка с причиной. Ошибки только инфраструктурные.
func (e *Engine) Estimate(ctx context.Context, code, userID string, amount decimal.Decimal) (*Estimation, error) {
	promo, reason, err := e.evaluate(ctx, code, userID, amount, time.Now())
	if err != nil {
		return nil, err
	}
	if reason != "" {
		est := &Estimation{Code: code, Discount: decimal.Zero, Valid: false, Reason: reason}
		if promo != nil {
			est.PromoCodeID = promo.ID
		}
		return est, nil
	}
	return &Estimation{
		PromoCodeID: promo.ID,
		Code:        code,
		Discount:    promo.Discount(amount),
		Valid:       true,
	}, nil
}

// Redeem погашает промокод для созданной доставки: валидация цепочкой правил,
// затем атомарный инкремент счетчика и запись использования.
func (e *Engine) Redeem(ctx context.Context, code, userID, deliveryID string, amount decimal.Decimal) (decimal.Decimal, error) {
	promo, reason, err := e.evaluate(ctx, code, userID, amount, time.Now())
	if err != nil {
		return decimal.Zero, err
	}
	if reason != "" {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrPromoNotApplicable, reason)
	}

	discount := promo.Discount(amount)
	usage := &domain.PromoCodeUsage{
		ID:             uuid.New().String(),
		PromoID:        promo.ID,
		UserID:         userID,
		DeliveryID:     deliveryID,
		OriginalAmount: amount,
		DiscountAmount: discount,
		FinalAmount:    amount.Sub(discount),
		CreatedAt:      time.Now(),
	}

	if err := e.promos.Redeem(ctx, usage); err != nil {
		return decimal.Zero, err
	}

	e.log.Info(logger.Entry{
		Action:     "promo_redeemed",
		Message:    "promo code redeemed",
		DeliveryID: deliveryID,
		Additional: map[string]any{
			"code":     code,
			"user_id":  userID,
			"discount": discount.String(),
		},
	})

	return discount, nil
}

// evaluate прогоняет цепочку правил валидации. Первое нарушенное правило
// возвращает причину; порядок правил фиксирован.
func (e *Engine) evaluate(ctx context.Context, code, userID string, amount decimal.Decimal, now time.Time) (*domain.PromoCode, string, error) {
	promo, err := e.promos.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrPromoNotFound) {
			return nil, "promo code not found", nil
		}
		return nil, "", err
	}

	if !promo.IsActive {
		return promo, "promo code is not active", nil
	}
	if now.Before(promo.ValidFrom) || now.After(promo.ValidUntil) {
		return promo, "promo code is outside its validity window", nil
	}
	if promo.UsageLimit > 0 && promo.UsageCount >= promo.UsageLimit {
		return promo, "promo code usage limit reached", nil
	}
	if promo.MinOrderAmount != nil && amount.LessThan(*promo.MinOrderAmount) {
		return promo, "order amount below promo minimum", nil
	}

	if promo.NewUsersOnly || promo.FirstOrderOnly {
		completed, err := e.orders.CompletedOrders(ctx, userID)
		if err != nil {
			return nil, "", fmt.Errorf("count completed orders: %w", err)
		}
		if promo.NewUsersOnly && completed > 0 {
			return promo, "promo code is for new users only", nil
		}
		if promo.FirstOrderOnly && completed > 0 {
			return promo, "promo code is for the first order only", nil
		}
	}

	if promo.PerUserLimit > 0 {
		used, err := e.promos.CountUserUsages(ctx, promo.ID, userID)
		if err != nil {
			return nil, "", fmt.Errorf("count promo usages: %w", err)
		}
		if used >= promo.PerUserLimit {
			return promo, "promo code per-user limit reached", nil
		}
	}

	return promo, "", nil
}
