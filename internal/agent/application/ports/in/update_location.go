package in

import "context"

// UpdateLocationInput — входные данные обновления позиции курьера
type UpdateLocationInput struct {
	AgentID   string  `json:"agent_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpdateLocationOutput — результат обновления позиции
type UpdateLocationOutput struct {
	AgentID   string `json:"agent_id"`
	UpdatedAt string `json:"updated_at"`
}

// UpdateLocationUseCase — use-case обновления позиции курьера
type UpdateLocationUseCase interface {
	Execute(ctx context.Context, input UpdateLocationInput) (*UpdateLocationOutput, error)
}
