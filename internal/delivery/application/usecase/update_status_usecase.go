package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/in"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// UpdateStatusService реализует UpdateStatusUseCase
type UpdateStatusService struct {
	deliveryRepo out.DeliveryRepository
	historyRepo  out.HistoryRepository
	payments     out.PaymentGateway
	commission   out.CommissionProvider
	publisher    out.EventPublisher
	notifier     out.DeliveryNotifier
	log          *logger.Logger
}

// NewUpdateStatusService создает новый сервис смены статуса доставки
func NewUpdateStatusService(
	deliveryRepo out.DeliveryRepository,
	historyRepo out.HistoryRepository,
	payments out.PaymentGateway,
	commission out.CommissionProvider,
	publisher out.EventPublisher,
	notifier out.DeliveryNotifier,
	log *logger.Logger,
) *UpdateStatusService {
	return &UpdateStatusService{
		deliveryRepo: deliveryRepo,
		historyRepo:  historyRepo,
		payments:     payments,
		commission:   commission,
		publisher:    publisher,
		notifier:     notifier,
		log:          log,
	}
}

var statusEvents = map[domain.Status]string{
	domain.StatusPickedUp:  domain.EventDeliveryPickedUp,
	domain.StatusInTransit: domain.EventDeliveryInTransit,
	domain.StatusDelivered: domain.EventDeliveryDelivered,
	domain.StatusCancelled: domain.EventDeliveryCancelled,
}

var statusTitles = map[domain.Status]string{
	domain.StatusPickedUp:  "Package picked up",
	domain.StatusInTransit: "Package in transit",
	domain.StatusDelivered: "Package delivered",
	domain.StatusCancelled: "Delivery cancelled",
}

// actorClass переводит роль из токена в класс актора журнала истории
func actorClass(role string) string {
	switch role {
	case "client":
		return domain.ActorClient
	case "agent":
		return domain.ActorAgent
	case "admin":
		return domain.ActorAdmin
	default:
		return domain.ActorSystem
	}
}

// Execute выполняет переход доставки в новый статус
func (s *UpdateStatusService) Execute(ctx context.Context, input in.UpdateStatusInput) (*in.UpdateStatusOutput, error) {
	target, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	delivery, err := s.deliveryRepo.FindByID(ctx, input.DeliveryID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(delivery, input.ActorID, input.ActorRole, target); err != nil {
		return nil, err
	}

	if !delivery.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, delivery.Status, target)
	}

	now := time.Now().UTC()
	upd := out.StatusUpdate{
		DeliveryID: delivery.ID,
		FromStatus: delivery.Status,
		ToStatus:   target,
		At:         now,
	}
	if target == domain.StatusCancelled {
		reason := input.CancelReason
		upd.CancelReason = &reason
		actor := input.ActorRole
		upd.CancelledBy = &actor
	}

	updated, err := s.deliveryRepo.UpdateStatus(ctx, upd)
	if err != nil {
		s.log.Error(logger.Entry{
			Action:     "update_status_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !updated {
		// Статус поменялся между чтением и записью
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, delivery.Status, target)
	}

	delivery.Status = target
	switch target {
	case domain.StatusPickedUp:
		delivery.PickedUpAt = &now
	case domain.StatusDelivered:
		delivery.DeliveredAt = &now
	case domain.StatusCancelled:
		delivery.CancelledAt = &now
	}

	s.settleOrRefund(ctx, delivery, target)

	note := input.CancelReason
	if target == domain.StatusCancelled {
		if note != "" {
			note += " "
		}
		note += "(by " + input.ActorID + ")"
	}
	s.appendHistory(ctx, delivery.ID, target, actorClass(input.ActorRole), note)

	if target == domain.StatusCancelled {
		// Агент освобожден, строки истории сохраняют кто был назначен
		delivery.AgentID = nil
	}

	s.log.Info(logger.Entry{
		Action:     "delivery_status_changed",
		Message:    string(target),
		DeliveryID: delivery.ID,
		Additional: map[string]any{
			"actor_id":   input.ActorID,
			"actor_role": input.ActorRole,
		},
	})

	if err := s.publisher.PublishDeliveryEvent(ctx, statusEvents[target], delivery); err != nil {
		s.log.Error(logger.Entry{
			Action:     "publish_delivery_event_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
	}

	if err := s.publisher.PublishNotification(ctx, &domain.Notification{
		UserID:      delivery.ClientID,
		Title:       statusTitles[target],
		Message:     "Delivery " + delivery.TrackingCode + " is now " + string(target),
		Type:        statusEvents[target],
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
		"type":        "delivery_status_changed",
		"delivery_id": delivery.ID,
		"status":      string(target),
	}); err != nil {
		s.log.Debug(logger.Entry{
			Action:     "notify_client_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
		})
	}

	return &in.UpdateStatusOutput{
		DeliveryID: delivery.ID,
		Status:     string(target),
		UpdatedAt:  now.Format(time.RFC3339),
	}, nil
}

// authorize проверяет, что актор вправе выполнить переход
func (s *UpdateStatusService) authorize(d *domain.Delivery, actorID, actorRole string, target domain.Status) error {
	if actorRole == "admin" {
		return nil
	}
	switch target {
	case domain.StatusCancelled:
		if d.ClientID == actorID {
			return nil
		}
		if d.AgentID != nil && *d.AgentID == actorID {
			return nil
		}
	default:
		if d.AgentID != nil && *d.AgentID == actorID {
			return nil
		}
	}
	return domain.ErrNotDeliveryOwner
}

// settleOrRefund запускает расчеты с биллингом для конечных статусов
func (s *UpdateStatusService) settleOrRefund(ctx context.Context, d *domain.Delivery, target domain.Status) {
	switch target {
	case domain.StatusDelivered:
		if d.AgentID == nil {
			return
		}
		percent, err := s.commission.CommissionPercent(ctx, d.CityID)
		if err != nil {
			s.log.Error(logger.Entry{
				Action:     "commission_lookup_failed",
				Message:    err.Error(),
				DeliveryID: d.ID,
				Error:      &logger.ErrObj{Msg: err.Error()},
			})
			return
		}
		if err := s.payments.Settle(ctx, d.ID, *d.AgentID, percent); err != nil {
			s.log.Error(logger.Entry{
				Action:     "settle_failed",
				Message:    err.Error(),
				DeliveryID: d.ID,
				Error:      &logger.ErrObj{Msg: err.Error()},
			})
		}
	case domain.StatusCancelled:
		if err := s.payments.Refund(ctx, d.ID); err != nil {
			s.log.Error(logger.Entry{
				Action:     "refund_failed",
				Message:    err.Error(),
				DeliveryID: d.ID,
				Error:      &logger.ErrObj{Msg: err.Error()},
			})
		}
	}
}

func (s *UpdateStatusService) appendHistory(ctx context.Context, deliveryID string, status domain.Status, actor, note string) {
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
