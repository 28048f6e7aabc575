package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/promo/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// PromoPgRepository — PostgreSQL репозиторий промокодов
type PromoPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPromoPgRepository создает новый экземпляр репозитория
func NewPromoPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PromoPgRepository {
	return &PromoPgRepository{
		pool: pool,
		log:  log,
	}
}

// FindByCode возвращает промокод по коду (без учета регистра)
func (r *PromoPgRepository) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	query := `
		SELECT
			id, code, discount_type, discount_value::text,
			max_discount::text, min_order_amount::text,
			usage_limit, per_user_limit, usage_count,
			valid_from, valid_until,
			new_users_only, first_order_only, is_active,
			created_at, updated_at
		FROM promo_codes
		WHERE LOWER(code) = LOWER($1)
	`

	var (
		promo                 domain.PromoCode
		discountValue         string
		maxDiscount, minOrder *string
	)

	err := r.pool.QueryRow(ctx, query, code).Scan(
		&promo.ID, &promo.Code, &promo.DiscountType, &discountValue,
		&maxDiscount, &minOrder,
		&promo.UsageLimit, &promo.PerUserLimit, &promo.UsageCount,
		&promo.ValidFrom, &promo.ValidUntil,
		&promo.NewUsersOnly, &promo.FirstOrderOnly, &promo.IsActive,
		&promo.CreatedAt, &promo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPromoNotFound
		}
		return nil, fmt.Errorf("find promo code: %w", err)
	}

	if promo.DiscountValue, err = decimal.NewFromString(discountValue); err != nil {
		return nil, fmt.Errorf("parse discount_value: %w", err)
	}
	if maxDiscount != nil {
		d, err := decimal.NewFromString(*maxDiscount)
		if err != nil {
			return nil, fmt.Errorf("parse max_discount: %w", err)
		}
		promo.MaxDiscount = &d
	}
	if minOrder != nil {
		d, err := decimal.NewFromString(*minOrder)
		if err != nil {
			return nil, fmt.Errorf("parse min_order_amount: %w", err)
		}
		promo.MinOrderAmount = &d
	}

	return &promo, nil
}

// CountUserUsages возвращает количество погашений промокода пользователем
func (r *PromoPgRepository) CountUserUsages(ctx context.Context, promoCodeID, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM promo_code_usages WHERE promo_id = $1 AND user_id = $2`,
		promoCodeID, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count promo usages: %w", err)
	}
	return count, nil
}

// Redeem атомарно инкрементирует счетчик использований и пишет запись погашения.
// Условный UPDATE защищает от lost update при конкурентных погашениях:
// исчерпанный лимит дает 0 затронутых строк и откат транзакции.
func (r *PromoPgRepository) Redeem(ctx context.Context, usage *domain.PromoCodeUsage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin redeem tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE promo_codes
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = $1 AND (usage_limit = 0 OR usage_count < usage_limit)
	`, usage.PromoID)
	if err != nil {
		return fmt.Errorf("increment usage count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUsageLimitReached
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO promo_code_usages (id, promo_id, user_id, delivery_id, original_amount, discount_amount, final_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		usage.ID, usage.PromoID, usage.UserID, usage.DeliveryID,
		usage.OriginalAmount.StringFixed(2), usage.DiscountAmount.StringFixed(2),
		usage.FinalAmount.StringFixed(2), usage.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert promo usage: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit redeem tx: %w", err)
	}

	r.log.Debug(logger.Entry{
		Action:     "db_promo_redeemed",
		Message:    "promo usage recorded",
		DeliveryID: usage.DeliveryID,
		Additional: map[string]any{
			"promo_id": usage.PromoID,
		},
	})

	return nil
}
