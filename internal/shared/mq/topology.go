package mq

import (
	"fmt"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// Имена exchanges
const (
	DeliveryExchange     = "delivery_topic"
	AgentExchange        = "agent_topic"
	NotificationExchange = "notification_fanout"
)

// SetupTopology создает все exchanges, queues и bindings
func SetupTopology(mq *RabbitMQ, log *logger.Logger) error {
	ch := mq.Channel()
	if ch == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}

	// 1. Exchange: delivery_topic (topic)
	if err := ch.ExchangeDeclare(
		DeliveryExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // args
	); err != nil {
		return fmt.Errorf("declare delivery_topic: %w", err)
	}

	// 2. Exchange: agent_topic (topic)
	if err := ch.ExchangeDeclare(
		AgentExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare agent_topic: %w", err)
	}

	// 3. Exchange: notification_fanout (fanout) — события для сервиса уведомлений
	if err := ch.ExchangeDeclare(
		NotificationExchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare notification_fanout: %w", err)
	}

	// 4. Очереди для delivery_topic
	deliveryQueues := []string{
		"delivery.requested",
		"delivery.assigned",
		"delivery.picked_up",
		"delivery.delivered",
		"delivery.cancelled",
	}
	for _, q := range deliveryQueues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		if err := ch.QueueBind(q, q, DeliveryExchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}

	// 5. Очереди для agent_topic
	agentQueues := []string{
		"agent.status_changed",
		"agent.location_updated",
	}
	for _, q := range agentQueues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		if err := ch.QueueBind(q, q, AgentExchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}

	// 6. Очередь notification-коллаборатора
	if _, err := ch.QueueDeclare("notification.events", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare notification.events: %w", err)
	}
	if err := ch.QueueBind("notification.events", "", NotificationExchange, false, nil); err != nil {
		return fmt.Errorf("bind notification.events: %w", err)
	}

	log.Info(logger.Entry{
		Action:  "topology_setup_complete",
		Message: "all exchanges and queues created",
	})

	return nil
}
