package out

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
)

// EventPublisher публикует события доставки в брокер сообщений
type EventPublisher interface {
	// PublishDeliveryEvent публикует событие в topic-обмен доставок
	PublishDeliveryEvent(ctx context.Context, eventType string, d *domain.Delivery) error

	// PublishNotification публикует уведомление в fanout-обмен
	PublishNotification(ctx context.Context, n *domain.Notification) error
}
