package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
)

const deliveryColumns = `id, tracking_code, client_id, agent_id, city_id, status,
		pickup_latitude, pickup_longitude, pickup_address,
		dropoff_latitude, dropoff_longitude, dropoff_address,
		package_weight_kg, package_note, distance_km, fare_total::text, currency,
		assigned_at, requested_at, picked_up_at, delivered_at, cancelled_at,
		cancel_reason, cancelled_by, created_at, updated_at`

var activeStatuses = []string{
	string(domain.StatusRequested),
	string(domain.StatusAssigned),
	string(domain.StatusPickedUp),
	string(domain.StatusInTransit),
}

// DeliveryPgRepository — PostgreSQL реализация DeliveryRepository
type DeliveryPgRepository struct {
	pool *pgxpool.Pool
}

// NewDeliveryPgRepository создает новый репозиторий доставок
func NewDeliveryPgRepository(pool *pgxpool.Pool) *DeliveryPgRepository {
	return &DeliveryPgRepository{pool: pool}
}

func (r *DeliveryPgRepository) Create(ctx context.Context, d *domain.Delivery) error {
	query := `
		INSERT INTO deliveries (
			id, tracking_code, client_id, city_id, status,
			pickup_latitude, pickup_longitude, pickup_address,
			dropoff_latitude, dropoff_longitude, dropoff_address,
			package_weight_kg, package_note, distance_km, fare_total, currency,
			requested_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.TrackingCode, d.ClientID, d.CityID, string(d.Status),
		d.PickupLatitude, d.PickupLongitude, d.PickupAddress,
		d.DropoffLatitude, d.DropoffLongitude, d.DropoffAddress,
		d.PackageWeightKg, d.PackageNote, d.DistanceKm, d.FareTotal.StringFixed(2), d.Currency,
		d.RequestedAt, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (r *DeliveryPgRepository) FindByID(ctx context.Context, deliveryID string) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, deliveryID))
}

func (r *DeliveryPgRepository) FindByTrackingCode(ctx context.Context, code string) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE tracking_code = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, code))
}

// Assign назначает агента условным UPDATE. Статус и отсутствие агента
// проверяются в самом запросе, поэтому двойное назначение невозможно.
func (r *DeliveryPgRepository) Assign(ctx context.Context, deliveryID, agentID string, at time.Time) (bool, error) {
	query := `
		UPDATE deliveries
		SET agent_id = $2, status = $3, assigned_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5 AND agent_id IS NULL`

	tag, err := r.pool.Exec(ctx, query,
		deliveryID, agentID, string(domain.StatusAssigned), at, string(domain.StatusRequested))
	if err != nil {
		return false, fmt.Errorf("assign delivery: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatus переводит доставку условным UPDATE. Отмена снимает агента:
// agent_id заполнен только у назначенных и доставленных доставок.
func (r *DeliveryPgRepository) UpdateStatus(ctx context.Context, upd out.StatusUpdate) (bool, error) {
	query := `
		UPDATE deliveries
		SET status = $3,
			picked_up_at = CASE WHEN $3 = 'PICKED_UP' THEN $4 ELSE picked_up_at END,
			delivered_at = CASE WHEN $3 = 'DELIVERED' THEN $4 ELSE delivered_at END,
			cancelled_at = CASE WHEN $3 = 'CANCELLED' THEN $4 ELSE cancelled_at END,
			agent_id = CASE WHEN $3 = 'CANCELLED' THEN NULL ELSE agent_id END,
			cancel_reason = COALESCE($5, cancel_reason),
			cancelled_by = COALESCE($6, cancelled_by),
			updated_at = NOW()
		WHERE id = $1 AND status = $2`

	tag, err := r.pool.Exec(ctx, query,
		upd.DeliveryID, string(upd.FromStatus), string(upd.ToStatus), upd.At,
		upd.CancelReason, upd.CancelledBy)
	if err != nil {
		return false, fmt.Errorf("update delivery status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *DeliveryPgRepository) FindActiveByClient(ctx context.Context, clientID string) ([]*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + `
		FROM deliveries
		WHERE client_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, clientID, activeStatuses)
	if err != nil {
		return nil, fmt.Errorf("query active deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*domain.Delivery
	for rows.Next() {
		d, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func (r *DeliveryPgRepository) FindActiveByAgent(ctx context.Context, agentID string) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + `
		FROM deliveries
		WHERE agent_id = $1 AND status = ANY($2)
		LIMIT 1`

	d, err := r.scanOne(r.pool.QueryRow(ctx, query, agentID, activeStatuses))
	if errors.Is(err, domain.ErrDeliveryNotFound) {
		return nil, nil
	}
	return d, err
}

func (r *DeliveryPgRepository) CountCompletedByClient(ctx context.Context, clientID string) (int, error) {
	query := `SELECT COUNT(*) FROM deliveries WHERE client_id = $1 AND status = $2`

	var count int
	err := r.pool.QueryRow(ctx, query, clientID, string(domain.StatusDelivered)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed deliveries: %w", err)
	}
	return count, nil
}

func (r *DeliveryPgRepository) scanOne(row pgx.Row) (*domain.Delivery, error) {
	var (
		d         domain.Delivery
		status    string
		fareTotal string
	)
	err := row.Scan(
		&d.ID, &d.TrackingCode, &d.ClientID, &d.AgentID, &d.CityID, &status,
		&d.PickupLatitude, &d.PickupLongitude, &d.PickupAddress,
		&d.DropoffLatitude, &d.DropoffLongitude, &d.DropoffAddress,
		&d.PackageWeightKg, &d.PackageNote, &d.DistanceKm, &fareTotal, &d.Currency,
		&d.AssignedAt, &d.RequestedAt, &d.PickedUpAt, &d.DeliveredAt, &d.CancelledAt,
		&d.CancelReason, &d.CancelledBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDeliveryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan delivery: %w", err)
	}
	d.Status = domain.Status(status)
	d.FareTotal, err = decimal.NewFromString(fareTotal)
	if err != nil {
		return nil, fmt.Errorf("parse fare total: %w", err)
	}
	return &d, nil
}
