package gateway

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/out"
)

// OrderHistory отдает движку промокодов число завершенных заказов клиента
type OrderHistory struct {
	deliveries out.DeliveryRepository
}

// NewOrderHistory создает адаптер истории заказов
func NewOrderHistory(deliveries out.DeliveryRepository) *OrderHistory {
	return &OrderHistory{deliveries: deliveries}
}

func (h *OrderHistory) CompletedOrders(ctx context.Context, userID string) (int, error) {
	return h.deliveries.CountCompletedByClient(ctx, userID)
}
