package out

import (
	"context"
	"time"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
)

// StatusUpdate описывает изменение статуса, применяемое условным UPDATE
type StatusUpdate struct {
	DeliveryID   string
	FromStatus   domain.Status
	ToStatus     domain.Status
	At           time.Time
	CancelReason *string
	CancelledBy  *string
}

// DeliveryRepository — интерфейс репозитория доставок
type DeliveryRepository interface {
	// Create создает новую доставку
	Create(ctx context.Context, d *domain.Delivery) error

	// FindByID возвращает доставку по ID
	FindByID(ctx context.Context, deliveryID string) (*domain.Delivery, error)

	// FindByTrackingCode возвращает доставку по трек-коду
	FindByTrackingCode(ctx context.Context, code string) (*domain.Delivery, error)

	// Assign атомарно назначает агента на доставку в статусе REQUESTED.
	// Возвращает false без ошибки, если условие не выполнено.
	Assign(ctx context.Context, deliveryID, agentID string, at time.Time) (bool, error)

	// UpdateStatus атомарно переводит доставку из FromStatus в ToStatus.
	// Возвращает false без ошибки, если текущий статус не совпал.
	UpdateStatus(ctx context.Context, upd StatusUpdate) (bool, error)

	// FindActiveByClient возвращает незавершенные доставки клиента
	FindActiveByClient(ctx context.Context, clientID string) ([]*domain.Delivery, error)

	// FindActiveByAgent возвращает текущую доставку агента, если есть
	FindActiveByAgent(ctx context.Context, agentID string) (*domain.Delivery, error)

	// CountCompletedByClient считает завершенные доставки клиента
	CountCompletedByClient(ctx context.Context, clientID string) (int, error)
}
