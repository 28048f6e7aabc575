package in

import "context"

// EstimateFareInput — входные данные для предварительного расчета стоимости
type EstimateFareInput struct {
	UserID     string  `json:"user_id"`
	CityID     string  `json:"city_id"`
	PickupLat  float64 `json:"pickup_lat"`
	PickupLng  float64 `json:"pickup_lng"`
	DropoffLat float64 `json:"dropoff_lat"`
	DropoffLng float64 `json:"dropoff_lng"`
	PromoCode  string  `json:"promo_code,omitempty"`
}

// EstimateFareOutput — детализация предварительного расчета
type EstimateFareOutput struct {
	Total            string  `json:"total"`
	Discount         string  `json:"discount"`
	TotalAfterPromo  string  `json:"total_after_promo"`
	PromoValid       bool    `json:"promo_valid"`
	PromoReason      string  `json:"promo_reason,omitempty"`
	Currency         string  `json:"currency"`
	DistanceKm       float64 `json:"distance_km"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	SurgeMultiplier  string  `json:"surge_multiplier"`
}

// EstimateFareUseCase — интерфейс use-case для оценки стоимости доставки
type EstimateFareUseCase interface {
	Execute(ctx context.Context, input EstimateFareInput) (*EstimateFareOutput, error)
}
