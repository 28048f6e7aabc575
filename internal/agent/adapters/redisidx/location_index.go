package redisidx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	out "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// RedisLocationIndex — геоиндекс доступных курьеров на Redis GEO.
// Один sorted set на город.
type RedisLocationIndex struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisLocationIndex создает новый индекс
func NewRedisLocationIndex(client *redis.Client, log *logger.Logger) *RedisLocationIndex {
	return &RedisLocationIndex{
		client: client,
		log:    log,
	}
}

func cityKey(cityID string) string {
	return "agents:geo:" + cityID
}

// Add добавляет или обновляет курьера в индексе города
func (i *RedisLocationIndex) Add(ctx context.Context, cityID, agentID string, p geo.Point) error {
	err := i.client.GeoAdd(ctx, cityKey(cityID), &redis.GeoLocation{
		Name:      agentID,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}).Err()
	if err != nil {
		return fmt.Errorf("geoadd agent: %w", err)
	}
	return nil
}

// Remove убирает курьера из индекса города
func (i *RedisLocationIndex) Remove(ctx context.Context, cityID, agentID string) error {
	if err := i.client.ZRem(ctx, cityKey(cityID), agentID).Err(); err != nil {
		return fmt.Errorf("remove agent from index: %w", err)
	}
	return nil
}

// Nearby возвращает курьеров в радиусе radiusKm от точки, ближайшие первыми
func (i *RedisLocationIndex) Nearby(ctx context.Context, cityID string, p geo.Point, radiusKm float64) ([]out.Candidate, error) {
	locations, err := i.client.GeoSearchLocation(ctx, cityKey(cityID), &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Latitude:   p.Latitude,
			Longitude:  p.Longitude,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geosearch agents: %w", err)
	}

	candidates := make([]out.Candidate, 0, len(locations))
	for _, loc := range locations {
		candidates = append(candidates, out.Candidate{
			AgentID:    loc.Name,
			Point:      geo.Point{Latitude: loc.Latitude, Longitude: loc.Longitude},
			DistanceKm: loc.Dist,
		})
	}
	return candidates, nil
}
