package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
)

// PricingConfig — тарифная конфигурация города. Активной может быть только одна
// строка на город; чтение при расчете тарифа, изменение только через админку.
type PricingConfig struct {
	ID                    string          `json:"id" db:"id"`
	CityID                string          `json:"city_id" db:"city_id"`
	BaseFare              decimal.Decimal `json:"base_fare" db:"base_fare"`
	PerKmRate             decimal.Decimal `json:"per_km_rate" db:"per_km_rate"`
	PerMinuteRate         decimal.Decimal `json:"per_minute_rate" db:"per_minute_rate"`
	MinimumFare           decimal.Decimal `json:"minimum_fare" db:"minimum_fare"`
	SurgeMultiplier       decimal.Decimal `json:"surge_multiplier" db:"surge_multiplier"`
	NightMultiplier       decimal.Decimal `json:"night_multiplier" db:"night_multiplier"`
	MorningPeakMultiplier decimal.Decimal `json:"morning_peak_multiplier" db:"morning_peak_multiplier"`
	EveningPeakMultiplier decimal.Decimal `json:"evening_peak_multiplier" db:"evening_peak_multiplier"`
	WeekendMultiplier     decimal.Decimal `json:"weekend_multiplier" db:"weekend_multiplier"`
	CityCenterMultiplier  decimal.Decimal `json:"city_center_multiplier" db:"city_center_multiplier"`
	AirportSurcharge      decimal.Decimal `json:"airport_surcharge" db:"airport_surcharge"`
	CommissionPercent     decimal.Decimal `json:"commission_percent" db:"commission_percent"`
	AvgSpeedKmh           float64         `json:"avg_speed_kmh" db:"avg_speed_kmh"`
	Currency              string          `json:"currency" db:"currency"`
	CenterPoint           *geo.Point      `json:"center_point,omitempty"`
	CenterRadiusKm        float64         `json:"center_radius_km" db:"center_radius_km"`
	CityCenterPolygon     []geo.Point     `json:"city_center_polygon,omitempty"`
	AirportPoint          *geo.Point      `json:"airport_point,omitempty"`
	AirportRadiusKm       float64         `json:"airport_radius_km" db:"airport_radius_km"`
	IsActive              bool            `json:"is_active" db:"is_active"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// FareBreakdown — результат расчета тарифа. Не сохраняется, неизменяем после расчета.
type FareBreakdown struct {
	Total            decimal.Decimal `json:"total"`
	BaseFare         decimal.Decimal `json:"base_fare"`
	DistanceFare     decimal.Decimal `json:"distance_fare"`
	TimeFare         decimal.Decimal `json:"time_fare"`
	SurgeMultiplier  decimal.Decimal `json:"surge_multiplier"`
	CityCenterFactor decimal.Decimal `json:"city_center_factor"`
	AirportSurcharge decimal.Decimal `json:"airport_surcharge"`
	DistanceKm       float64         `json:"distance_km"`
	EstimatedMinutes int             `json:"estimated_minutes"`
	Currency         string          `json:"currency"`
}
