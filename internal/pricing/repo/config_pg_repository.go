package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/pricing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// ConfigPgRepository — PostgreSQL репозиторий тарифных конфигураций
type ConfigPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewConfigPgRepository создает новый экземпляр репозитория
func NewConfigPgRepository(pool *pgxpool.Pool, log *logger.Logger) *ConfigPgRepository {
	return &ConfigPgRepository{
		pool: pool,
		log:  log,
	}
}

// ActiveForCity возвращает активную тарифную конфигурацию города
func (r *ConfigPgRepository) ActiveForCity(ctx context.Context, cityID string) (*domain.PricingConfig, error) {
	query := `
		SELECT
			id, city_id,
			base_fare::text, per_km_rate::text, per_minute_rate::text, minimum_fare::text,
			surge_multiplier::text, night_multiplier::text, weekend_multiplier::text,
			morning_peak_multiplier::text, evening_peak_multiplier::text,
			city_center_multiplier::text, airport_surcharge::text, commission_percent::text,
			avg_speed_kmh,
			center_latitude, center_longitude, center_radius_km,
			city_center_polygon,
			airport_latitude, airport_longitude, airport_radius_km,
			currency, is_active, created_at, updated_at
		FROM pricing_configs
		WHERE city_id = $1 AND is_active
	`

	var (
		cfg                                                        domain.PricingConfig
		baseFare, perKm, perMinute, minFare                        string
		surge, night, weekend, morningPeak, eveningPeak            string
		centerMult, airportSurcharge, commission                   string
		centerLat, centerLng, airportLat, airportLng               *float64
		polygonJSON                                                []byte
	)

	err := r.pool.QueryRow(ctx, query, cityID).Scan(
		&cfg.ID, &cfg.CityID,
		&baseFare, &perKm, &perMinute, &minFare,
		&surge, &night, &weekend, &morningPeak, &eveningPeak,
		&centerMult, &airportSurcharge, &commission,
		&cfg.AvgSpeedKmh,
		&centerLat, &centerLng, &cfg.CenterRadiusKm,
		&polygonJSON,
		&airportLat, &airportLng, &cfg.AirportRadiusKm,
		&cfg.Currency, &cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConfigNotFound
		}
		r.log.Error(logger.Entry{
			Action:  "db_find_pricing_config_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"city_id": cityID,
			},
		})
		return nil, fmt.Errorf("find pricing config: %w", err)
	}

	if cfg.BaseFare, err = decimal.NewFromString(baseFare); err != nil {
		return nil, fmt.Errorf("parse base_fare: %w", err)
	}
	if cfg.PerKmRate, err = decimal.NewFromString(perKm); err != nil {
		return nil, fmt.Errorf("parse per_km_rate: %w", err)
	}
	if cfg.PerMinuteRate, err = decimal.NewFromString(perMinute); err != nil {
		return nil, fmt.Errorf("parse per_minute_rate: %w", err)
	}
	if cfg.MinimumFare, err = decimal.NewFromString(minFare); err != nil {
		return nil, fmt.Errorf("parse minimum_fare: %w", err)
	}
	if cfg.SurgeMultiplier, err = decimal.NewFromString(surge); err != nil {
		return nil, fmt.Errorf("parse surge_multiplier: %w", err)
	}
	if cfg.NightMultiplier, err = decimal.NewFromString(night); err != nil {
		return nil, fmt.Errorf("parse night_multiplier: %w", err)
	}
	if cfg.WeekendMultiplier, err = decimal.NewFromString(weekend); err != nil {
		return nil, fmt.Errorf("parse weekend_multiplier: %w", err)
	}
	if cfg.MorningPeakMultiplier, err = decimal.NewFromString(morningPeak); err != nil {
		return nil, fmt.Errorf("parse morning_peak_multiplier: %w", err)
	}
	if cfg.EveningPeakMultiplier, err = decimal.NewFromString(eveningPeak); err != nil {
		return nil, fmt.Errorf("parse evening_peak_multiplier: %w", err)
	}
	if cfg.CityCenterMultiplier, err = decimal.NewFromString(centerMult); err != nil {
		return nil, fmt.Errorf("parse city_center_multiplier: %w", err)
	}
	if cfg.AirportSurcharge, err = decimal.NewFromString(airportSurcharge); err != nil {
		return nil, fmt.Errorf("parse airport_surcharge: %w", err)
	}
	if cfg.CommissionPercent, err = decimal.NewFromString(commission); err != nil {
		return nil, fmt.Errorf("parse commission_percent: %w", err)
	}

	if centerLat != nil && centerLng != nil {
		cfg.CenterPoint = &geo.Point{Latitude: *centerLat, Longitude: *centerLng}
	}
	if airportLat != nil && airportLng != nil {
		cfg.AirportPoint = &geo.Point{Latitude: *airportLat, Longitude: *airportLng}
	}
	if len(polygonJSON) > 0 {
		if err := json.Unmarshal(polygonJSON, &cfg.CityCenterPolygon); err != nil {
			return nil, fmt.Errorf("parse city_center_polygon: %w", err)
		}
	}

	return &cfg, nil
}
