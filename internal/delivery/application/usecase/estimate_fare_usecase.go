package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/in"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// EstimateFareService реализует EstimateFareUseCase
type EstimateFareService struct {
	quoter out.FareQuoter
	promos out.PromoEstimator
	log    *logger.Logger
}

// NewEstimateFareService создает новый сервис оценки стоимости
func NewEstimateFareService(quoter out.FareQuoter, promos out.PromoEstimator, log *logger.Logger) *EstimateFareService {
	return &EstimateFareService{quoter: quoter, promos: promos, log: log}
}

// Execute считает стоимость маршрута и применяемую скидку.
// Невалидный промокод не является ошибкой, он возвращается с причиной отказа.
func (s *EstimateFareService) Execute(ctx context.Context, input in.EstimateFareInput) (*in.EstimateFareOutput, error) {
	pickup := geo.Point{Latitude: input.PickupLat, Longitude: input.PickupLng}
	dropoff := geo.Point{Latitude: input.DropoffLat, Longitude: input.DropoffLng}

	fare, err := s.quoter.Quote(ctx, input.CityID, pickup, dropoff, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("quote fare: %w", err)
	}

	output := &in.EstimateFareOutput{
		Total:            fare.Total.StringFixed(2),
		Discount:         "0.00",
		TotalAfterPromo:  fare.Total.StringFixed(2),
		Currency:         fare.Currency,
		DistanceKm:       fare.DistanceKm,
		EstimatedMinutes: fare.EstimatedMinutes,
		SurgeMultiplier:  fare.SurgeMultiplier.String(),
	}

	if input.PromoCode == "" {
		return output, nil
	}

	estimation, err := s.promos.Estimate(ctx, input.PromoCode, input.UserID, fare.Total)
	if err != nil {
		s.log.Warn(logger.Entry{
			Action:  "promo_estimate_failed",
			Message: err.Error(),
		})
		return output, nil
	}

	output.PromoValid = estimation.Valid
	output.PromoReason = estimation.Reason
	if estimation.Valid {
		output.Discount = estimation.Discount.StringFixed(2)
		output.TotalAfterPromo = fare.Total.Sub(estimation.Discount).StringFixed(2)
	}

	return output, nil
}
