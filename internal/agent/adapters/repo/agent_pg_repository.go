package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// AgentPgRepository — PostgreSQL репозиторий курьеров
type AgentPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewAgentPgRepository создает новый экземпляр репозитория
func NewAgentPgRepository(pool *pgxpool.Pool, log *logger.Logger) *AgentPgRepository {
	return &AgentPgRepository{
		pool: pool,
		log:  log,
	}
}

const agentColumns = `id, full_name, phone, city_id, is_active, is_verified, is_available, created_at, updated_at`

// FindByID возвращает курьера по ID
func (r *AgentPgRepository) FindByID(ctx context.Context, agentID string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`

	var a domain.Agent
	err := r.pool.QueryRow(ctx, query, agentID).Scan(
		&a.ID, &a.FullName, &a.Phone, &a.CityID,
		&a.IsActive, &a.IsVerified, &a.IsAvailable,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("find agent: %w", err)
	}
	return &a, nil
}

// FindByIDs возвращает курьеров по списку ID
func (r *AgentPgRepository) FindByIDs(ctx context.Context, agentIDs []string) ([]*domain.Agent, error) {
	if len(agentIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + agentColumns + ` FROM agents WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, agentIDs)
	if err != nil {
		return nil, fmt.Errorf("find agents by ids: %w", err)
	}
	defer rows.Close()

	var agents []*domain.Agent
	for rows.Next() {
		var a domain.Agent
		if err := rows.Scan(
			&a.ID, &a.FullName, &a.Phone, &a.CityID,
			&a.IsActive, &a.IsVerified, &a.IsAvailable,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, &a)
	}
	return agents, rows.Err()
}

// SetAvailability переключает доступность курьера
func (r *AgentPgRepository) SetAvailability(ctx context.Context, agentID string, available bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE agents SET is_available = $2, updated_at = NOW() WHERE id = $1`,
		agentID, available,
	)
	if err != nil {
		r.log.Error(logger.Entry{
			Action:  "db_set_availability_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"agent_id": agentID,
			},
		})
		return fmt.Errorf("set availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAgentNotFound
	}
	return nil
}
