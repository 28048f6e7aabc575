package out

import "context"

// AgentNotifier — доставка уведомлений курьеру (WebSocket)
type AgentNotifier interface {
	// NotifyNewDelivery отправляет курьеру предложение новой доставки
	NotifyNewDelivery(ctx context.Context, agentID string, payload any) error
}

// EventPublisher — публикация событий контекста курьеров в шину
type EventPublisher interface {
	PublishAgentEvent(ctx context.Context, eventType string, data any) error
}
