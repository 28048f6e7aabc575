package out_amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/mq"
)

// AmqpEventPublisher публикует события доставки в RabbitMQ
type AmqpEventPublisher struct {
	mq  *mq.RabbitMQ
	log *logger.Logger
}

// NewAmqpEventPublisher создает новый издатель событий доставки
func NewAmqpEventPublisher(broker *mq.RabbitMQ, log *logger.Logger) *AmqpEventPublisher {
	return &AmqpEventPublisher{mq: broker, log: log}
}

func (p *AmqpEventPublisher) PublishDeliveryEvent(ctx context.Context, eventType string, d *domain.Delivery) error {
	event := domain.DeliveryEvent{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      d,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal delivery event: %w", err)
	}

	if err := p.mq.Publish(ctx, mq.DeliveryExchange, eventType, body); err != nil {
		return fmt.Errorf("publish delivery event: %w", err)
	}

	p.log.Debug(logger.Entry{
		Action:     "delivery_event_published",
		Message:    eventType,
		DeliveryID: d.ID,
	})
	return nil
}

func (p *AmqpEventPublisher) PublishNotification(ctx context.Context, n *domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := p.mq.Publish(ctx, mq.NotificationExchange, "", body); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
