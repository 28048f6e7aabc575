package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/in"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"

	agentdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/google/uuid"
)

// AssignDeliveryService реализует AssignDeliveryUseCase
type AssignDeliveryService struct {
	deliveryRepo out.DeliveryRepository
	historyRepo  out.HistoryRepository
	agents       out.AgentGateway
	dispatcher   out.Dispatcher
	publisher    out.EventPublisher
	notifier     out.DeliveryNotifier
	log          *logger.Logger
}

// NewAssignDeliveryService создает новый сервис назначения агента
func NewAssignDeliveryService(
	deliveryRepo out.DeliveryRepository,
	historyRepo out.HistoryRepository,
	agents out.AgentGateway,
	dispatcher out.Dispatcher,
	publisher out.EventPublisher,
	notifier out.DeliveryNotifier,
	log *logger.Logger,
) *AssignDeliveryService {
	return &AssignDeliveryService{
		deliveryRepo: deliveryRepo,
		historyRepo:  historyRepo,
		agents:       agents,
		dispatcher:   dispatcher,
		publisher:    publisher,
		notifier:     notifier,
		log:          log,
	}
}

// Execute выполняет назначение агента на доставку.
// Условия проверяются по порядку, первое нарушенное определяет ошибку.
func (s *AssignDeliveryService) Execute(ctx context.Context, input in.AssignDeliveryInput) (*in.AssignDeliveryOutput, error) {
	delivery, err := s.deliveryRepo.FindByID(ctx, input.DeliveryID)
	if err != nil {
		return nil, err
	}

	if delivery.AgentID != nil {
		return nil, domain.ErrDeliveryAlreadyAssigned
	}
	if delivery.Status != domain.StatusRequested {
		return nil, domain.ErrDeliveryNotAssignable
	}

	// Без явного агента подбирается ближайший свободный
	if input.AgentID == "" {
		pickup := geo.Point{Latitude: delivery.PickupLatitude, Longitude: delivery.PickupLongitude}
		nearest, err := s.dispatcher.FindNearest(ctx, delivery.CityID, pickup)
		if err != nil {
			return nil, err
		}
		input.AgentID = nearest.ID
	}

	agent, err := s.agents.FindByID(ctx, input.AgentID)
	if err != nil {
		return nil, err
	}
	if !agent.Eligible() {
		return nil, agentdomain.ErrAgentNotEligible
	}

	active, err := s.deliveryRepo.FindActiveByAgent(ctx, input.AgentID)
	if err != nil {
		return nil, fmt.Errorf("check active delivery: %w", err)
	}
	if active != nil {
		return nil, domain.ErrAgentBusy
	}

	now := time.Now().UTC()
	assigned, err := s.deliveryRepo.Assign(ctx, input.DeliveryID, input.AgentID, now)
	if err != nil {
		s.log.Error(logger.Entry{
			Action:     "assign_delivery_failed",
			Message:    err.Error(),
			DeliveryID: input.DeliveryID,
			Error:      &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"agent_id": input.AgentID,
			},
		})
		return nil, fmt.Errorf("assign delivery: %w", err)
	}
	if !assigned {
		// Другой агент успел раньше
		return nil, domain.ErrDeliveryAlreadyAssigned
	}

	delivery.AgentID = &input.AgentID
	delivery.Status = domain.StatusAssigned
	delivery.AssignedAt = &now

	s.appendHistory(ctx, delivery.ID, domain.StatusAssigned, domain.ActorAgent, "agent "+input.AgentID+" assigned")

	s.log.Info(logger.Entry{
		Action:     "delivery_assigned",
		Message:    delivery.TrackingCode,
		DeliveryID: delivery.ID,
		Additional: map[string]any{
			"agent_id": input.AgentID,
		},
	})

	if err := s.publisher.PublishDeliveryEvent(ctx, domain.EventDeliveryAssigned, delivery); err != nil {
		s.log.Error(logger.Entry{
			Action:     "publish_delivery_event_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
	}

	if err := s.publisher.PublishNotification(ctx, &domain.Notification{
		UserID:      delivery.ClientID,
		Title:       "Agent assigned",
		Message:     "An agent is on the way to pick up " + delivery.TrackingCode,
		Type:        domain.EventDeliveryAssigned,
		ReferenceID: delivery.ID,
	}); err != nil {
		s.log.Error(logger.Entry{
			Action:     "publish_notification_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
	}

	if err := s.notifier.NotifyStatusChanged(ctx, delivery.ClientID, map[string]any{
		"type":        "delivery_assigned",
		"delivery_id": delivery.ID,
		"agent_id":    input.AgentID,
		"status":      string(domain.StatusAssigned),
	}); err != nil {
		s.log.Debug(logger.Entry{
			Action:     "notify_client_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
		})
	}

	return &in.AssignDeliveryOutput{
		DeliveryID: delivery.ID,
		AgentID:    input.AgentID,
		Status:     string(domain.StatusAssigned),
		AssignedAt: now.Format(time.RFC3339),
	}, nil
}

func (s *AssignDeliveryService) appendHistory(ctx context.Context, deliveryID string, status domain.Status, actor, note string) {
	h := &domain.DeliveryHistory{
		ID:         uuid.New().String(),
		DeliveryID: deliveryID,
		Status:     status,
		Actor:      actor,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.historyRepo.Append(ctx, h); err != nil {
		s.log.Error(logger.Entry{
			Action:     "append_history_failed",
			Message:    err.Error(),
			DeliveryID: deliveryID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
	}
}
