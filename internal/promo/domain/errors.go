package domain

import "errors"

var (
	// ErrPromoNotFound возвращается когда промокод не существует
	ErrPromoNotFound = errors.New("promo code not found")

	// ErrPromoNotApplicable возвращается при попытке погасить неприменимый промокод
	ErrPromoNotApplicable = errors.New("promo code not applicable")

	// ErrUsageLimitReached возвращается когда глобальный лимит использований исчерпан
	ErrUsageLimitReached = errors.New("promo usage limit reached")
)
