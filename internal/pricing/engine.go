package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/pricing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// ConfigRepository — порт чтения тарифной конфигурации
type ConfigRepository interface {
	ActiveForCity(ctx context.Context, cityID string) (*domain.PricingConfig, error)
}

// Engine рассчитывает стоимость доставки по тарифу города
type Engine struct {
	configs ConfigRepository
	log     *logger.Logger
}

func NewEngine(configs ConfigRepository, log *logger.Logger) *Engine {
	return &Engine{configs: configs, log: log}
}

// Quote рассчитывает разбивку тарифа для маршрута pickup -> dropoff на момент when.
// Отсутствие активной конфигурации города — фатальная ошибка расчета, без дефолтов.
func (e *Engine) Quote(ctx context.Context, cityID string, pickup, dropoff geo.Point, when time.Time) (*domain.FareBreakdown, error) {
	if err := geo.Validate(pickup.Latitude, pickup.Longitude); err != nil {
		return nil, fmt.Errorf("%w: pickup: %v", domain.ErrInvalidRoute, err)
	}
	if err := geo.Validate(dropoff.Latitude, dropoff.Longitude); err != nil {
		return nil, fmt.Errorf("%w: dropoff: %v", domain.ErrInvalidRoute, err)
	}

	cfg, err := e.configs.ActiveForCity(ctx, cityID)
	if err != nil {
		return nil, err
	}

	distanceKm := geo.Haversine(pickup, dropoff)
	etaMinutes := geo.ETAMinutes(distanceKm, cfg.AvgSpeedKmh)

	distanceFare := cfg.PerKmRate.Mul(decimal.NewFromFloat(distanceKm))
	timeFare := cfg.PerMinuteRate.Mul(decimal.NewFromInt(int64(etaMinutes)))
	raw := cfg.BaseFare.Add(distanceFare).Add(timeFare)

	surge := selectSurge(cfg, when)
	total := raw.Mul(surge)

	centerFactor := decimal.NewFromInt(1)
	if inCityCenter(cfg, pickup, dropoff) && cfg.CityCenterMultiplier.IsPositive() {
		centerFactor = cfg.CityCenterMultiplier
		total = total.Mul(centerFactor)
	}

	airportSurcharge := decimal.Zero
	if inAirportZone(cfg, pickup, dropoff) {
		airportSurcharge = cfg.AirportSurcharge
		total = total.Add(airportSurcharge)
	}

	total = total.Round(2)
	if total.LessThan(cfg.MinimumFare) {
		total = cfg.MinimumFare.Round(2)
	}

	e.log.Debug(logger.Entry{
		Action:  "fare_quoted",
		Message: "fare computed",
		Additional: map[string]any{
			"city_id":     cityID,
			"distance_km": distanceKm,
			"eta_minutes": etaMinutes,
			"surge":       surge.String(),
			"total":       total.String(),
		},
	})

	return &domain.FareBreakdown{
		Total:            total,
		BaseFare:         cfg.BaseFare,
		DistanceFare:     distanceFare.Round(2),
		TimeFare:         timeFare.Round(2),
		SurgeMultiplier:  surge,
		CityCenterFactor: centerFactor,
		AirportSurcharge: airportSurcharge,
		DistanceKm:       distanceKm,
		EstimatedMinutes: etaMinutes,
		Currency:         cfg.Currency,
	}, nil
}

// selectSurge выбирает ровно один множитель по приоритету временных окон:
// ночь > утренний пик > вечерний пик > выходные > дефолтный surge.
func selectSurge(cfg *domain.PricingConfig, when time.Time) decimal.Decimal {
	minuteOfDay := when.Hour()*60 + when.Minute()

	// Ночное окно 23:00-06:00 переходит через полночь
	if minuteOfDay >= 23*60 || minuteOfDay < 6*60 {
		return positiveOr(cfg.NightMultiplier, cfg.SurgeMultiplier)
	}
	if minuteOfDay >= 7*60+30 && minuteOfDay < 9*60+30 {
		return positiveOr(cfg.MorningPeakMultiplier, cfg.SurgeMultiplier)
	}
	if minuteOfDay >= 16*60+30 && minuteOfDay < 19*60 {
		return positiveOr(cfg.EveningPeakMultiplier, cfg.SurgeMultiplier)
	}
	if wd := when.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return positiveOr(cfg.WeekendMultiplier, cfg.SurgeMultiplier)
	}
	return positiveOr(cfg.SurgeMultiplier, decimal.NewFromInt(1))
}

func positiveOr(m, fallback decimal.Decimal) decimal.Decimal {
	if m.IsPositive() {
		return m
	}
	if fallback.IsPositive() {
		return fallback
	}
	return decimal.NewFromInt(1)
}

// inCityCenter проверяет попадание любой из конечных точек в центр города:
// полигон (even-odd) либо фиксированный радиус от центральной точки.
func inCityCenter(cfg *domain.PricingConfig, pickup, dropoff geo.Point) bool {
	if len(cfg.CityCenterPolygon) >= 3 {
		if geo.PointInPolygon(pickup, cfg.CityCenterPolygon) || geo.PointInPolygon(dropoff, cfg.CityCenterPolygon) {
			return true
		}
	}
	if cfg.CenterPoint != nil && cfg.CenterRadiusKm > 0 {
		if geo.WithinRadius(pickup, *cfg.CenterPoint, cfg.CenterRadiusKm) ||
			geo.WithinRadius(dropoff, *cfg.CenterPoint, cfg.CenterRadiusKm) {
			return true
		}
	}
	return false
}

func inAirportZone(cfg *domain.PricingConfig, pickup, dropoff geo.Point) bool {
	if cfg.AirportPoint == nil || cfg.AirportRadiusKm <= 0 {
		return false
	}
	return geo.WithinRadius(pickup, *cfg.AirportPoint, cfg.AirportRadiusKm) ||
		geo.WithinRadius(dropoff, *cfg.AirportPoint, cfg.AirportRadiusKm)
}
