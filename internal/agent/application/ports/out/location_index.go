package out

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
)

// Candidate — курьер из геоиндекса с расстоянием до точки поиска
type Candidate struct {
	AgentID    string
	Point      geo.Point
	DistanceKm float64
}

// LocationIndex — геоиндекс доступных курьеров (Redis GEO, ключ на город)
type LocationIndex interface {
	// Add добавляет или обновляет курьера в индексе города
	Add(ctx context.Context, cityID, agentID string, p geo.Point) error

	// Remove убирает курьера из индекса города
	Remove(ctx context.Context, cityID, agentID string) error

	// Nearby возвращает курьеров в радиусе radiusKm от точки, ближайшие первыми
	Nearby(ctx context.Context, cityID string, p geo.Point, radiusKm float64) ([]Candidate, error)
}
