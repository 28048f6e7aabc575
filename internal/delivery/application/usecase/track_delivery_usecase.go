package usecase

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/in"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// TrackDeliveryService реализует TrackDeliveryUseCase
type TrackDeliveryService struct {
	deliveryRepo out.DeliveryRepository
	agents       out.AgentGateway
	avgSpeedKmh  float64
	log          *logger.Logger
}

// NewTrackDeliveryService создает новый сервис трекинга
func NewTrackDeliveryService(
	deliveryRepo out.DeliveryRepository,
	agents out.AgentGateway,
	avgSpeedKmh float64,
	log *logger.Logger,
) *TrackDeliveryService {
	return &TrackDeliveryService{
		deliveryRepo: deliveryRepo,
		agents:       agents,
		avgSpeedKmh:  avgSpeedKmh,
		log:          log,
	}
}

// Execute возвращает текущий снимок доставки по трек-коду
func (s *TrackDeliveryService) Execute(ctx context.Context, input in.TrackDeliveryInput) (*in.TrackDeliveryOutput, error) {
	delivery, err := s.deliveryRepo.FindByTrackingCode(ctx, input.TrackingCode)
	if err != nil {
		return nil, err
	}

	output := &in.TrackDeliveryOutput{
		DeliveryID:     delivery.ID,
		TrackingCode:   delivery.TrackingCode,
		Status:         string(delivery.Status),
		DropoffAddress: delivery.DropoffAddress,
	}

	if delivery.AgentID == nil || delivery.IsTerminal() {
		return output, nil
	}

	location, err := s.agents.LastLocation(ctx, *delivery.AgentID)
	if err != nil || location == nil {
		// Позиция агента недоступна, отдаем только статус
		return output, nil
	}

	agentPoint := geo.Point{Latitude: location.Latitude, Longitude: location.Longitude}
	dropoff := geo.Point{Latitude: delivery.DropoffLatitude, Longitude: delivery.DropoffLongitude}

	remaining := geo.Haversine(agentPoint, dropoff)
	minutes := geo.ETAMinutes(remaining, s.avgSpeedKmh)

	output.AgentLat = &location.Latitude
	output.AgentLng = &location.Longitude
	output.RemainingKm = &remaining
	output.RemainingMinutes = &minutes

	return output, nil
}
