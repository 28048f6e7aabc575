package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// PaymentPgRepository — PostgreSQL хранилище платежей
type PaymentPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPaymentPgRepository создает новый экземпляр репозитория
func NewPaymentPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PaymentPgRepository {
	return &PaymentPgRepository{
		pool: pool,
		log:  log,
	}
}

// Create сохраняет новый платеж
func (r *PaymentPgRepository) Create(ctx context.Context, p *domain.Payment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payments (
			id, delivery_id, payer_id, provider, method, status,
			amount, tip, platform_fee, driver_amount, refunded_amount,
			provider_ref, session_id, charge_id,
			escrow_released, escrow_released_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		p.ID, p.DeliveryID, p.PayerID, p.Provider, p.Method, p.Status,
		p.Amount.StringFixed(2), p.Tip.StringFixed(2),
		p.PlatformFee.StringFixed(2), p.DriverAmount.StringFixed(2), p.RefundedAmount.StringFixed(2),
		p.ProviderRef, p.SessionID, p.ChargeID,
		p.EscrowReleased, p.EscrowReleasedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.log.Error(logger.Entry{
			Action:     "db_create_payment_failed",
			Message:    err.Error(),
			DeliveryID: p.DeliveryID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// FindByDelivery возвращает платеж доставки
func (r *PaymentPgRepository) FindByDelivery(ctx context.Context, deliveryID string) (*domain.Payment, error) {
	query := `
		SELECT
			id, delivery_id, payer_id, provider, method, status,
			amount::text, tip::text, platform_fee::text, driver_amount::text, refunded_amount::text,
			provider_ref, session_id, charge_id,
			escrow_released, escrow_released_at, created_at, updated_at
		FROM payments
		WHERE delivery_id = $1
	`

	var (
		p                            domain.Payment
		amount, tip, platformFee     string
		driverAmount, refundedAmount string
	)
	err := r.pool.QueryRow(ctx, query, deliveryID).Scan(
		&p.ID, &p.DeliveryID, &p.PayerID, &p.Provider, &p.Method, &p.Status,
		&amount, &tip, &platformFee, &driverAmount, &refundedAmount,
		&p.ProviderRef, &p.SessionID, &p.ChargeID,
		&p.EscrowReleased, &p.EscrowReleasedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}

	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	if p.Tip, err = decimal.NewFromString(tip); err != nil {
		return nil, fmt.Errorf("parse tip: %w", err)
	}
	if p.PlatformFee, err = decimal.NewFromString(platformFee); err != nil {
		return nil, fmt.Errorf("parse platform_fee: %w", err)
	}
	if p.DriverAmount, err = decimal.NewFromString(driverAmount); err != nil {
		return nil, fmt.Errorf("parse driver_amount: %w", err)
	}
	if p.RefundedAmount, err = decimal.NewFromString(refundedAmount); err != nil {
		return nil, fmt.Errorf("parse refunded_amount: %w", err)
	}
	return &p, nil
}

// Update сохраняет изменяемые поля платежа
func (r *PaymentPgRepository) Update(ctx context.Context, p *domain.Payment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET status = $2, provider_ref = $3, session_id = $4, charge_id = $5, updated_at = $6
		WHERE id = $1
	`, p.ID, p.Status, p.ProviderRef, p.SessionID, p.ChargeID, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// Settle атомарно проводит расчет доставки. CAS на escrow_released
// гарантирует ровно одно проведение: проигравший конкурентный вызов получает
// false без побочных эффектов. Зачисление курьеру, строка заработка,
// обновление платежа и строка аудита происходят в одной транзакции.
func (r *PaymentPgRepository) Settle(ctx context.Context, deliveryID, agentID string, driverCut, platformCut, tip decimal.Decimal) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin settle tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE payments
		SET escrow_released = TRUE,
		    escrow_released_at = NOW(),
		    driver_amount = $2,
		    platform_fee = $3,
		    status = $4,
		    updated_at = NOW()
		WHERE delivery_id = $1 AND escrow_released = FALSE
	`, deliveryID, driverCut.StringFixed(2), platformCut.StringFixed(2), domain.PaymentStatusCompleted)
	if err != nil {
		return false, fmt.Errorf("release escrow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	// Кошелек курьера создается при первом зачислении
	_, err = tx.Exec(ctx, `
		INSERT INTO wallets (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New().String(), agentID)
	if err != nil {
		return false, fmt.Errorf("ensure agent wallet: %w", err)
	}

	payout := driverCut.Add(tip)
	var walletID string
	err = tx.QueryRow(ctx, `
		UPDATE wallets
		SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING id
	`, agentID, payout.StringFixed(2)).Scan(&walletID)
	if err != nil {
		return false, fmt.Errorf("credit agent wallet: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO wallet_transactions (id, wallet_id, amount, tx_type, reference)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New().String(), walletID, payout.StringFixed(2), domain.TxTypeEarning, deliveryID)
	if err != nil {
		return false, fmt.Errorf("insert earning transaction: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO driver_earnings (id, agent_id, delivery_id, amount, tip)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New().String(), agentID, deliveryID, driverCut.StringFixed(2), tip.StringFixed(2))
	if err != nil {
		return false, fmt.Errorf("insert driver earning: %w", err)
	}

	note := fmt.Sprintf("settled: driver %s, platform %s", driverCut.StringFixed(2), platformCut.StringFixed(2))
	_, err = tx.Exec(ctx, `
		INSERT INTO delivery_history (id, delivery_id, status, actor, note)
		VALUES ($1, $2, 'DELIVERED', 'SYSTEM', $3)
	`, uuid.New().String(), deliveryID, note)
	if err != nil {
		return false, fmt.Errorf("insert settlement history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit settle tx: %w", err)
	}
	return true, nil
}

// RecordRefund увеличивает возвращенную сумму и обновляет статус
func (r *PaymentPgRepository) RecordRefund(ctx context.Context, paymentID string, amount decimal.Decimal, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET refunded_amount = refunded_amount + $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`, paymentID, amount.StringFixed(2), status)
	if err != nil {
		return fmt.Errorf("record refund: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
