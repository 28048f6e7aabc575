package out

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
)

// HistoryRepository — append-only журнал переходов статусов
type HistoryRepository interface {
	// Append записывает строку истории
	Append(ctx context.Context, h *domain.DeliveryHistory) error

	// ForDelivery возвращает историю доставки в порядке записи
	ForDelivery(ctx context.Context, deliveryID string) ([]*domain.DeliveryHistory, error)
}
