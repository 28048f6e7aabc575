package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
)

// HistoryPgRepository — PostgreSQL реализация HistoryRepository
type HistoryPgRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryPgRepository создает новый репозиторий истории доставок
func NewHistoryPgRepository(pool *pgxpool.Pool) *HistoryPgRepository {
	return &HistoryPgRepository{pool: pool}
}

func (r *HistoryPgRepository) Append(ctx context.Context, h *domain.DeliveryHistory) error {
	query := `
		INSERT INTO delivery_history (id, delivery_id, status, actor, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query, h.ID, h.DeliveryID, string(h.Status), h.Actor, h.Note, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert delivery history: %w", err)
	}
	return nil
}

func (r *HistoryPgRepository) ForDelivery(ctx context.Context, deliveryID string) ([]*domain.DeliveryHistory, error) {
	query := `
		SELECT id, delivery_id, status, actor, note, created_at
		FROM delivery_history
		WHERE delivery_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("query delivery history: %w", err)
	}
	defer rows.Close()

	var history []*domain.DeliveryHistory
	for rows.Next() {
		var (
			h      domain.DeliveryHistory
			status string
		)
		if err := rows.Scan(&h.ID, &h.DeliveryID, &status, &h.Actor, &h.Note, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery history: %w", err)
		}
		h.Status = domain.Status(status)
		history = append(history, &h)
	}
	return history, rows.Err()
}
