package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// LocationPgRepository — PostgreSQL хранилище позиций курьеров
type LocationPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewLocationPgRepository создает новый экземпляр репозитория
func NewLocationPgRepository(pool *pgxpool.Pool, log *logger.Logger) *LocationPgRepository {
	return &LocationPgRepository{
		pool: pool,
		log:  log,
	}
}

// Save перезаписывает позицию курьера. Одна строка на курьера, last-write-wins.
func (r *LocationPgRepository) Save(ctx context.Context, loc *domain.AgentLocation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO agent_locations (agent_id, latitude, longitude, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (agent_id)
		DO UPDATE SET latitude = $2, longitude = $3, updated_at = $4
	`, loc.AgentID, loc.Latitude, loc.Longitude, loc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save agent location: %w", err)
	}
	return nil
}

// LastUpdate возвращает время последнего обновления позиции курьера
func (r *LocationPgRepository) LastUpdate(ctx context.Context, agentID string) (*time.Time, error) {
	var updatedAt time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT updated_at FROM agent_locations WHERE agent_id = $1`,
		agentID,
	).Scan(&updatedAt)
	if err != nil {
		return nil, nil
	}
	return &updatedAt, nil
}

// ForAgents возвращает последние позиции указанных курьеров
func (r *LocationPgRepository) ForAgents(ctx context.Context, agentIDs []string) (map[string]*domain.AgentLocation, error) {
	if len(agentIDs) == 0 {
		return map[string]*domain.AgentLocation{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT agent_id, latitude, longitude, updated_at
		FROM agent_locations
		WHERE agent_id = ANY($1)
	`, agentIDs)
	if err != nil {
		return nil, fmt.Errorf("load agent locations: %w", err)
	}
	defer rows.Close()

	res := make(map[string]*domain.AgentLocation, len(agentIDs))
	for rows.Next() {
		var loc domain.AgentLocation
		if err := rows.Scan(&loc.AgentID, &loc.Latitude, &loc.Longitude, &loc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan agent location: %w", err)
		}
		res[loc.AgentID] = &loc
	}
	return res, rows.Err()
}
