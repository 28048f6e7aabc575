package out_amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/mq"
)

// AgentEventPublisher публикует события курьеров в RabbitMQ
type AgentEventPublisher struct {
	mq  *mq.RabbitMQ
	log *logger.Logger
}

// NewAgentEventPublisher создает новый publisher
func NewAgentEventPublisher(mqConn *mq.RabbitMQ, log *logger.Logger) *AgentEventPublisher {
	return &AgentEventPublisher{
		mq:  mqConn,
		log: log,
	}
}

// PublishAgentEvent публикует событие курьера в agent_topic exchange
func (p *AgentEventPublisher) PublishAgentEvent(ctx context.Context, eventType string, data any) error {
	event := domain.Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal agent event: %w", err)
	}

	routingKey := getRoutingKey(eventType)
	if err := p.mq.Publish(ctx, mq.AgentExchange, routingKey, payload); err != nil {
		p.log.Error(logger.Entry{
			Action:  "publish_agent_event_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"event_type":  eventType,
				"routing_key": routingKey,
			},
		})
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}

	p.log.Debug(logger.Entry{
		Action:  "agent_event_published",
		Message: eventType,
		Additional: map[string]any{
			"routing_key": routingKey,
		},
	})

	return nil
}

// getRoutingKey возвращает routing key для типа события
func getRoutingKey(eventType string) string {
	switch eventType {
	case domain.EventAgentOnline, domain.EventAgentOffline:
		return "agent.status_changed"
	case domain.EventAgentLocationUpdated:
		return "agent.location_updated"
	default:
		return "agent.unknown"
	}
}
