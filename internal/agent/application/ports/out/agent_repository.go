package out

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
)

// AgentRepository — репозиторий для работы с курьерами
type AgentRepository interface {
	// FindByID находит курьера по ID
	FindByID(ctx context.Context, agentID string) (*domain.Agent, error)

	// FindByIDs возвращает курьеров по списку ID
	FindByIDs(ctx context.Context, agentIDs []string) ([]*domain.Agent, error)

	// SetAvailability переключает доступность курьера
	SetAvailability(ctx context.Context, agentID string, available bool) error
}
