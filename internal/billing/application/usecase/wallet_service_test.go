package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// memWalletRepo повторяет семантику условного UPDATE хранилища:
// дебет атомарен и отвергается при нехватке баланса или превышении лимитов.
type memWalletRepo struct {
	mu      sync.Mutex
	wallets map[string]*domain.Wallet
	ledger  map[string][]*domain.WalletTransaction
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{
		wallets: make(map[string]*domain.Wallet),
		ledger:  make(map[string][]*domain.WalletTransaction),
	}
}

func (m *memWalletRepo) put(w *domain.Wallet) {
	m.wallets[w.UserID] = w
}

func (m *memWalletRepo) FindByUser(_ context.Context, userID string) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memWalletRepo) Ensure(_ context.Context, userID, currency string) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.wallets[userID]; ok {
		cp := *w
		return &cp, nil
	}
	w := &domain.Wallet{
		ID:       uuid.New().String(),
		UserID:   userID,
		Balance:  decimal.Zero,
		Currency: currency,
		IsActive: true,
	}
	m.wallets[userID] = w
	cp := *w
	return &cp, nil
}

func (m *memWalletRepo) Debit(_ context.Context, userID string, amount decimal.Decimal, txType, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		return domain.ErrWalletNotFound
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
	}
	w.Balance = w.Balance.Sub(amount)
	w.DailySpent = w.DailySpent.Add(amount)
	w.MonthlySpent = w.MonthlySpent.Add(amount)
	m.ledger[w.ID] = append(m.ledger[w.ID], &domain.WalletTransaction{
		ID: uuid.New().String(), WalletID: w.ID, Amount: amount.Neg(),
		TxType: txType, Reference: reference, CreatedAt: time.Now(),
	})
	return nil
}

func (m *memWalletRepo) Credit(_ context.Context, userID string, amount decimal.Decimal, txType, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w.Balance = w.Balance.Add(amount)
	m.ledger[w.ID] = append(m.ledger[w.ID], &domain.WalletTransaction{
		ID: uuid.New().String(), WalletID: w.ID, Amount: amount,
		TxType: txType, Reference: reference, CreatedAt: time.Now(),
	})
	return nil
}

func (m *memWalletRepo) ResetWindows(_ context.Context, _ string) error { return nil }

func (m *memWalletRepo) Transactions(_ context.Context, walletID string, limit int) ([]*domain.WalletTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txs := m.ledger[walletID]
	if len(txs) > limit {
		txs = txs[len(txs)-limit:]
	}
	return txs, nil
}

func (m *memWalletRepo) LedgerSum(_ context.Context, walletID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, t := range m.ledger[walletID] {
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

func walletWith(balance, dailyLimit int64) *domain.Wallet {
	return &domain.Wallet{
		ID:         uuid.New().String(),
		UserID:     "user-1",
		Balance:    decimal.NewFromInt(balance),
		Currency:   "MKD",
		IsActive:   true,
		DailyLimit: decimal.NewFromInt(dailyLimit),
	}
}

func walletService(repo *memWalletRepo) *WalletService {
	return NewWalletService(repo, logger.NewLogger("wallet-test", "error"))
}

func TestWithdraw_DailyLimit(t *testing.T) {
	repo := newMemWalletRepo()
	repo.put(walletWith(100, 50))
	svc := walletService(repo)
	ctx := context.Background()

	// 60 превышает дневной лимит 50, хотя баланс позволяет
	if _, err := svc.Withdraw(ctx, "user-1", decimal.NewFromInt(60)); !errors.Is(err, domain.ErrDailyLimitExceeded) {
		t.Fatalf("expected ErrDailyLimitExceeded, got %v", err)
	}

	// 40 проходит
	w, err := svc.Withdraw(ctx, "user-1", decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("balance = %s, want 60", w.Balance)
	}

	// 15 добило бы окно до 55 > 50
	if _, err := svc.Withdraw(ctx, "user-1", decimal.NewFromInt(15)); !errors.Is(err, domain.ErrDailyLimitExceeded) {
		t.Fatalf("expected ErrDailyLimitExceeded, got %v", err)
	}
}

func TestWithdraw_InsufficientBalance(t *testing.T) {
	repo := newMemWalletRepo()
	repo.put(walletWith(30, 0))
	svc := walletService(repo)

	_, err := svc.Withdraw(context.Background(), "user-1", decimal.NewFromInt(31))
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestWithdraw_RejectsNonPositiveAmount(t *testing.T) {
	repo := newMemWalletRepo()
	repo.put(walletWith(100, 0))
	svc := walletService(repo)

	for _, amount := range []int64{0, -5} {
		if _, err := svc.Withdraw(context.Background(), "user-1", decimal.NewFromInt(amount)); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestConcurrentWithdraw_AtMostOneWins(t *testing.T) {
	repo := newMemWalletRepo()
	repo.put(walletWith(100, 0))
	svc := walletService(repo)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(context.Background(), "user-1", decimal.NewFromInt(60))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, losses int
	for err := range errs {
		if err == nil {
			wins++
		} else if errors.Is(err, domain.ErrInsufficientBalance) {
			losses++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("wins=%d losses=%d, want exactly one of each", wins, losses)
	}

	w, err := svc.Balance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("balance = %s, want 40", w.Balance)
	}
}

func TestDeposit_CreatesWalletAndCredits(t *testing.T) {
	repo := newMemWalletRepo()
	svc := walletService(repo)

	w, err := svc.Deposit(context.Background(), "new-user", decimal.NewFromInt(250))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("balance = %s, want 250", w.Balance)
	}
}

func TestReconcile_DetectsMismatch(t *testing.T) {
	repo := newMemWalletRepo()
	svc := walletService(repo)
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, "user-1", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Withdraw(ctx, "user-1", decimal.NewFromInt(30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := svc.Reconcile(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("ledger should match balance")
	}

	// Правка баланса мимо журнала ломает сверку
	repo.mu.Lock()
	repo.wallets["user-1"].Balance = repo.wallets["user-1"].Balance.Add(decimal.NewFromInt(1))
	repo.mu.Unlock()

	ok, err = svc.Reconcile(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("reconciliation should detect the mismatch")
	}
}
