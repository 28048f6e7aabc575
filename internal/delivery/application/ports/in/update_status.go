package in

import "context"

// UpdateStatusInput — входные данные для перевода доставки в новый статус
type UpdateStatusInput struct {
	DeliveryID   string `json:"delivery_id"`
	ActorID      string `json:"actor_id"`
	ActorRole    string `json:"actor_role"`
	Status       string `json:"status"`
	CancelReason string `json:"cancel_reason,omitempty"`
}

// UpdateStatusOutput — результат перехода
type UpdateStatusOutput struct {
	DeliveryID string `json:"delivery_id"`
	Status     string `json:"status"`
	UpdatedAt  string `json:"updated_at"`
}

// UpdateStatusUseCase — интерфейс use-case для смены статуса доставки
type UpdateStatusUseCase interface {
	Execute(ctx context.Context, input UpdateStatusInput) (*UpdateStatusOutput, error)
}
