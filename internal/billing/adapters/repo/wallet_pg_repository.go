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

// WalletPgRepository — PostgreSQL хранилище кошельков
type WalletPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewWalletPgRepository создает новый экземпляр репозитория
func NewWalletPgRepository(pool *pgxpool.Pool, log *logger.Logger) *WalletPgRepository {
	return &WalletPgRepository{
		pool: pool,
		log:  log,
	}
}

const walletColumns = `id, user_id, balance::text, currency, is_active,
	daily_limit::text, monthly_limit::text, daily_spent::text, monthly_spent::text,
	limits_reset_at, created_at, updated_at`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		w                                 domain.Wallet
		balance, dailyLimit, monthlyLimit string
		dailySpent, monthlySpent          string
	)
	err := row.Scan(
		&w.ID, &w.UserID, &balance, &w.Currency, &w.IsActive,
		&dailyLimit, &monthlyLimit, &dailySpent, &monthlySpent,
		&w.LimitsResetAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if w.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	if w.DailyLimit, err = decimal.NewFromString(dailyLimit); err != nil {
		return nil, fmt.Errorf("parse daily_limit: %w", err)
	}
	if w.MonthlyLimit, err = decimal.NewFromString(monthlyLimit); err != nil {
		return nil, fmt.Errorf("parse monthly_limit: %w", err)
	}
	if w.DailySpent, err = decimal.NewFromString(dailySpent); err != nil {
		return nil, fmt.Errorf("parse daily_spent: %w", err)
	}
	if w.MonthlySpent, err = decimal.NewFromString(monthlySpent); err != nil {
		return nil, fmt.Errorf("parse monthly_spent: %w", err)
	}
	return &w, nil
}

// FindByUser возвращает кошелек пользователя
func (r *WalletPgRepository) FindByUser(ctx context.Context, userID string) (*domain.Wallet, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("find wallet: %w", err)
	}
	return w, nil
}

// Ensure создает кошелек пользователя, если его еще нет
func (r *WalletPgRepository) Ensure(ctx context.Context, userID, currency string) (*domain.Wallet, error) {
	if currency == "" {
		currency = "USD"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wallets (id, user_id, currency)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New().String(), userID, currency)
	if err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}
	return r.FindByUser(ctx, userID)
}

// Debit атомарно списывает средства. Условный UPDATE проверяет активность,
// баланс и оба лимита; нулевой лимит означает безлимит. Строка журнала
// пишется в той же транзакции с отрицательной суммой.
func (r *WalletPgRepository) Debit(ctx context.Context, userID string, amount decimal.Decimal, txType, reference string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin debit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	amountStr := amount.StringFixed(2)

	var walletID string
	err = tx.QueryRow(ctx, `
		UPDATE wallets
		SET balance = balance - $2,
		    daily_spent = daily_spent + $2,
		    monthly_spent = monthly_spent + $2,
		    updated_at = NOW()
		WHERE user_id = $1
		  AND is_active
		  AND balance >= $2
		  AND (daily_limit = 0 OR daily_spent + $2 <= daily_limit)
		  AND (monthly_limit = 0 OR monthly_spent + $2 <= monthly_limit)
		RETURNING id
	`, userID, amountStr).Scan(&walletID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyDebitFailure(ctx, userID, amount)
		}
		return fmt.Errorf("debit wallet: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO wallet_transactions (id, wallet_id, amount, tx_type, reference)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New().String(), walletID, amount.Neg().StringFixed(2), txType, reference)
	if err != nil {
		return fmt.Errorf("insert debit transaction: %w", err)
	}

	return tx.Commit(ctx)
}

// classifyDebitFailure определяет причину отказа условного списания
func (r *WalletPgRepository) classifyDebitFailure(ctx context.Context, userID string, amount decimal.Decimal) error {
	w, err := r.FindByUser(ctx, userID)
	if err != nil {
		return err
	}
	switch {
	case !w.IsActive:
		return domain.ErrWalletInactive
	case w.Balance.LessThan(amount):
		return domain.ErrInsufficientBalance
	case w.DailyLimit.IsPositive() && w.DailySpent.Add(amount).GreaterThan(w.DailyLimit):
		return domain.ErrDailyLimitExceeded
	case w.MonthlyLimit.IsPositive() && w.MonthlySpent.Add(amount).GreaterThan(w.MonthlyLimit):
		return domain.ErrMonthlyLimitExceeded
	default:
		// Условие перестало нарушаться между UPDATE и повторным чтением
		return domain.ErrInsufficientBalance
	}
}

// Credit атомарно зачисляет средства со строкой журнала
func (r *WalletPgRepository) Credit(ctx context.Context, userID string, amount decimal.Decimal, txType, reference string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin credit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var walletID string
	err = tx.QueryRow(ctx, `
		UPDATE wallets
		SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING id
	`, userID, amount.StringFixed(2)).Scan(&walletID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrWalletNotFound
		}
		return fmt.Errorf("credit wallet: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO wallet_transactions (id, wallet_id, amount, tx_type, reference)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New().String(), walletID, amount.StringFixed(2), txType, reference)
	if err != nil {
		return fmt.Errorf("insert credit transaction: %w", err)
	}

	return tx.Commit(ctx)
}

// ResetWindows обнуляет счетчики лимитов при смене дня или месяца
func (r *WalletPgRepository) ResetWindows(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE wallets
		SET daily_spent = 0,
		    monthly_spent = CASE
		        WHEN date_trunc('month', limits_reset_at) < date_trunc('month', NOW()) THEN 0
		        ELSE monthly_spent
		    END,
		    limits_reset_at = NOW()
		WHERE user_id = $1 AND limits_reset_at::date < CURRENT_DATE
	`, userID)
	if err != nil {
		return fmt.Errorf("reset limit windows: %w", err)
	}
	return nil
}

// Transactions возвращает последние операции кошелька
func (r *WalletPgRepository) Transactions(ctx context.Context, walletID string, limit int) ([]*domain.WalletTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, wallet_id, amount::text, tx_type, reference, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("list wallet transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.WalletTransaction
	for rows.Next() {
		var (
			t      domain.WalletTransaction
			amount string
		)
		if err := rows.Scan(&t.ID, &t.WalletID, &amount, &t.TxType, &t.Reference, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet transaction: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse transaction amount: %w", err)
		}
		txs = append(txs, &t)
	}
	return txs, rows.Err()
}

// LedgerSum возвращает сумму всех операций журнала кошелька
func (r *WalletPgRepository) LedgerSum(ctx context.Context, walletID string) (decimal.Decimal, error) {
	var sum string
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::text FROM wallet_transactions WHERE wallet_id = $1`,
		walletID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum wallet ledger: %w", err)
	}
	return decimal.NewFromString(sum)
}
