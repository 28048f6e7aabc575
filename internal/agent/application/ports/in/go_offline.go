package in

import "context"

// GoOfflineInput — входные данные для перехода курьера в оффлайн
type GoOfflineInput struct {
	AgentID string `json:"agent_id"`
}

// GoOfflineOutput — результат перехода в оффлайн
type GoOfflineOutput struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// GoOfflineUseCase — use-case перехода курьера в оффлайн
type GoOfflineUseCase interface {
	Execute(ctx context.Context, input GoOfflineInput) (*GoOfflineOutput, error)
}
