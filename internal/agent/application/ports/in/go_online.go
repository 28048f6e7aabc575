package in

import "context"

// GoOnlineInput — входные данные для перехода курьера в онлайн
type GoOnlineInput struct {
	AgentID   string  `json:"agent_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GoOnlineOutput — результат перехода в онлайн
type GoOnlineOutput struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// GoOnlineUseCase — use-case перехода курьера в онлайн
type GoOnlineUseCase interface {
	Execute(ctx context.Context, input GoOnlineInput) (*GoOnlineOutput, error)
}
