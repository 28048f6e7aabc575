package out

import (
	"context"
	"time"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
)

// LocationRepository — хранилище последних позиций курьеров (аудит в PostgreSQL)
type LocationRepository interface {
	// Save перезаписывает позицию курьера (last-write-wins)
	Save(ctx context.Context, loc *domain.AgentLocation) error

	// LastUpdate возвращает время последнего обновления позиции, nil если позиций не было
	LastUpdate(ctx context.Context, agentID string) (*time.Time, error)

	// ForAgents возвращает последние позиции указанных курьеров
	ForAgents(ctx context.Context, agentIDs []string) (map[string]*domain.AgentLocation, error)
}
