package usecase

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/in"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// ListActiveService реализует ListActiveUseCase
type ListActiveService struct {
	deliveryRepo out.DeliveryRepository
	log          *logger.Logger
}

// NewListActiveService создает новый сервис списка активных доставок
func NewListActiveService(deliveryRepo out.DeliveryRepository, log *logger.Logger) *ListActiveService {
	return &ListActiveService{deliveryRepo: deliveryRepo, log: log}
}

// Execute возвращает активные доставки пользователя в зависимости от роли
func (s *ListActiveService) Execute(ctx context.Context, input in.ListActiveInput) (*in.ListActiveOutput, error) {
	if input.Role == "agent" {
		active, err := s.deliveryRepo.FindActiveByAgent(ctx, input.UserID)
		if err != nil {
			return nil, err
		}
		deliveries := []*domain.Delivery{}
		if active != nil {
			deliveries = append(deliveries, active)
		}
		return &in.ListActiveOutput{Deliveries: deliveries}, nil
	}

	deliveries, err := s.deliveryRepo.FindActiveByClient(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &in.ListActiveOutput{Deliveries: deliveries}, nil
}
