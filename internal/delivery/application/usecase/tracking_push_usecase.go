package usecase

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// TrackingPushService отправляет клиенту снимок трекинга при каждом
// обновлении позиции агента с активной доставкой
type TrackingPushService struct {
	deliveryRepo out.DeliveryRepository
	notifier     out.DeliveryNotifier
	avgSpeedKmh  float64
	log          *logger.Logger
}

// NewTrackingPushService создает новый сервис пуш-трекинга
func NewTrackingPushService(
	deliveryRepo out.DeliveryRepository,
	notifier out.DeliveryNotifier,
	avgSpeedKmh float64,
	log *logger.Logger,
) *TrackingPushService {
	return &TrackingPushService{
		deliveryRepo: deliveryRepo,
		notifier:     notifier,
		avgSpeedKmh:  avgSpeedKmh,
		log:          log,
	}
}

// OnLocationUpdated пересчитывает остаток пути до точки выдачи и
// пушит снимок клиенту. Без активной доставки обновление игнорируется.
func (s *TrackingPushService) OnLocationUpdated(ctx context.Context, agentID string, point geo.Point) error {
	delivery, err := s.deliveryRepo.FindActiveByAgent(ctx, agentID)
	if err != nil {
		return err
	}
	if delivery == nil {
		return nil
	}

	dropoff := geo.Point{Latitude: delivery.DropoffLatitude, Longitude: delivery.DropoffLongitude}
	remaining := geo.Haversine(point, dropoff)
	minutes := geo.ETAMinutes(remaining, s.avgSpeedKmh)

	payload := map[string]any{
		"deliveryId":       delivery.ID,
		"trackingCode":     delivery.TrackingCode,
		"status":           string(delivery.Status),
		"agentLat":         point.Latitude,
		"agentLng":         point.Longitude,
		"remainingKm":      remaining,
		"remainingMinutes": minutes,
	}
	return s.notifier.NotifyTracking(ctx, delivery.ClientID, payload)
}
