package in

import "context"

// AssignDeliveryInput — входные данные для назначения агента
type AssignDeliveryInput struct {
	DeliveryID string `json:"delivery_id"`
	AgentID    string `json:"agent_id"`
}

// AssignDeliveryOutput — результат назначения
type AssignDeliveryOutput struct {
	DeliveryID string `json:"delivery_id"`
	AgentID    string `json:"agent_id"`
	Status     string `json:"status"`
	AssignedAt string `json:"assigned_at"`
}

// AssignDeliveryUseCase — интерфейс use-case для назначения агента на доставку
type AssignDeliveryUseCase interface {
	Execute(ctx context.Context, input AssignDeliveryInput) (*AssignDeliveryOutput, error)
}
