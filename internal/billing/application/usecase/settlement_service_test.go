package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/providers"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// memPaymentRepo повторяет CAS-семантику хранилища платежей
type memPaymentRepo struct {
	mu         sync.Mutex
	payments   map[string]*domain.Payment // по delivery_id
	earnings   []*domain.DriverEarning
	credits    map[string]decimal.Decimal // зачисления курьерам
	auditNotes []string                   // строки аудита расчетов, по одной на проведение
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{
		payments: make(map[string]*domain.Payment),
		credits:  make(map[string]decimal.Decimal),
	}
}

func (m *memPaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments[p.DeliveryID] = &cp
	return nil
}

func (m *memPaymentRepo) FindByDelivery(_ context.Context, deliveryID string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[deliveryID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentRepo) Update(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.payments[p.DeliveryID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	stored.Status = p.Status
	stored.ProviderRef = p.ProviderRef
	stored.SessionID = p.SessionID
	stored.ChargeID = p.ChargeID
	return nil
}

func (m *memPaymentRepo) Settle(_ context.Context, deliveryID, agentID string, driverCut, platformCut, tip decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[deliveryID]
	if !ok {
		return false, domain.ErrPaymentNotFound
	}
	if p.EscrowReleased {
		return false, nil
	}
	p.EscrowReleased = true
	p.DriverAmount = driverCut
	p.PlatformFee = platformCut
	p.Status = domain.PaymentStatusCompleted
	m.earnings = append(m.earnings, &domain.DriverEarning{
		AgentID: agentID, DeliveryID: deliveryID, Amount: driverCut, Tip: tip,
	})
	m.credits[agentID] = m.credits[agentID].Add(driverCut.Add(tip))
	m.auditNotes = append(m.auditNotes,
		"settled: driver "+driverCut.StringFixed(2)+", platform "+platformCut.StringFixed(2))
	return true, nil
}

func (m *memPaymentRepo) RecordRefund(_ context.Context, paymentID string, amount decimal.Decimal, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == paymentID {
			p.RefundedAmount = p.RefundedAmount.Add(amount)
			p.Status = status
			return nil
		}
	}
	return domain.ErrPaymentNotFound
}

// memFunds — кошельки для wallet-провайдера
type memFunds struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

func newMemFunds() *memFunds {
	return &memFunds{balances: make(map[string]decimal.Decimal)}
}

func (m *memFunds) Debit(_ context.Context, userID string, amount decimal.Decimal, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[userID].LessThan(amount) {
		return domain.ErrInsufficientBalance
	}
	m.balances[userID] = m.balances[userID].Sub(amount)
	return nil
}

func (m *memFunds) Credit(_ context.Context, userID string, amount decimal.Decimal, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = m.balances[userID].Add(amount)
	return nil
}

func settlementFixture(funds *memFunds) (*SettlementService, *memPaymentRepo) {
	log := logger.NewLogger("settlement-test", "error")
	registry := providers.NewRegistry()
	registry.Register(domain.ProviderWallet, providers.NewWalletProvider(funds, log))
	registry.Register(domain.ProviderCash, providers.NewCashProvider(log))
	registry.Register(domain.ProviderMock, providers.NewMockProvider())

	repo := newMemPaymentRepo()
	return NewSettlementService(repo, registry, log), repo
}

func TestSplitCommission(t *testing.T) {
	driverCut, platformCut := domain.SplitCommission(decimal.NewFromInt(184), decimal.NewFromInt(20))
	if !driverCut.Equal(decimal.NewFromFloat(147.20)) {
		t.Fatalf("driver cut = %s, want 147.20", driverCut)
	}
	if !platformCut.Equal(decimal.NewFromFloat(36.80)) {
		t.Fatalf("platform cut = %s, want 36.80", platformCut)
	}
	if !driverCut.Add(platformCut).Equal(decimal.NewFromInt(184)) {
		t.Fatal("cuts must sum to the total")
	}
}

func TestOpenHold_WalletDebitsImmediately(t *testing.T) {
	funds := newMemFunds()
	funds.balances["client-1"] = decimal.NewFromInt(500)
	svc, _ := settlementFixture(funds)

	payment, err := svc.OpenHold(context.Background(), OpenHoldInput{
		DeliveryID: "d-1",
		PayerID:    "client-1",
		Provider:   domain.ProviderWallet,
		Amount:     decimal.NewFromInt(184),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != domain.PaymentStatusHeld {
		t.Fatalf("status = %s, want HELD", payment.Status)
	}
	if !funds.balances["client-1"].Equal(decimal.NewFromInt(316)) {
		t.Fatalf("payer balance = %s, want 316", funds.balances["client-1"])
	}
}

func TestOpenHold_InsufficientFundsAbort(t *testing.T) {
	funds := newMemFunds()
	funds.balances["client-1"] = decimal.NewFromInt(10)
	svc, repo := settlementFixture(funds)

	_, err := svc.OpenHold(context.Background(), OpenHoldInput{
		DeliveryID: "d-1",
		PayerID:    "client-1",
		Provider:   domain.ProviderWallet,
		Amount:     decimal.NewFromInt(184),
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if len(repo.payments) != 0 {
		t.Fatal("no payment must be persisted on failed hold")
	}
}

func TestOpenHold_UnknownProvider(t *testing.T) {
	svc, _ := settlementFixture(newMemFunds())

	_, err := svc.OpenHold(context.Background(), OpenHoldInput{
		DeliveryID: "d-1",
		PayerID:    "client-1",
		Provider:   "bitcoin",
		Amount:     decimal.NewFromInt(184),
	})
	if !errors.Is(err, domain.ErrProviderNotSupported) {
		t.Fatalf("expected ErrProviderNotSupported, got %v", err)
	}
}

func TestSettle_SplitsAndCreditsOnce(t *testing.T) {
	funds := newMemFunds()
	funds.balances["client-1"] = decimal.NewFromInt(500)
	svc, repo := settlementFixture(funds)
	ctx := context.Background()

	_, err := svc.OpenHold(ctx, OpenHoldInput{
		DeliveryID: "d-1", PayerID: "client-1",
		Provider: domain.ProviderWallet, Amount: decimal.NewFromInt(184),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Settle(ctx, "d-1", "agent-1", decimal.NewFromInt(20)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.earnings) != 1 {
		t.Fatalf("expected 1 earning record, got %d", len(repo.earnings))
	}
	e := repo.earnings[0]
	if !e.Amount.Equal(decimal.NewFromFloat(147.20)) {
		t.Fatalf("earning = %s, want 147.20", e.Amount)
	}
	if !repo.credits["agent-1"].Equal(decimal.NewFromFloat(147.20)) {
		t.Fatalf("agent credit = %s, want 147.20", repo.credits["agent-1"])
	}

	if len(repo.auditNotes) != 1 {
		t.Fatalf("expected 1 settlement audit note, got %d", len(repo.auditNotes))
	}
	if repo.auditNotes[0] != "settled: driver 147.20, platform 36.80" {
		t.Fatalf("audit note = %q", repo.auditNotes[0])
	}

	// Повторный расчет — тихий no-op
	if err := svc.Settle(ctx, "d-1", "agent-1", decimal.NewFromInt(20)); err != nil {
		t.Fatalf("duplicate settle must be silent: %v", err)
	}
	if len(repo.earnings) != 1 {
		t.Fatalf("duplicate settle must not add earnings, got %d", len(repo.earnings))
	}
	if len(repo.auditNotes) != 1 {
		t.Fatalf("duplicate settle must not add audit notes, got %d", len(repo.auditNotes))
	}
}

func TestSettle_ConcurrentCallsSettleOnce(t *testing.T) {
	funds := newMemFunds()
	funds.balances["client-1"] = decimal.NewFromInt(500)
	svc, repo := settlementFixture(funds)
	ctx := context.Background()

	_, err := svc.OpenHold(ctx, OpenHoldInput{
		DeliveryID: "d-1", PayerID: "client-1",
		Provider: domain.ProviderWallet, Amount: decimal.NewFromInt(184),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Settle(ctx, "d-1", "agent-1", decimal.NewFromInt(20)); err != nil {
				t.Errorf("settle failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(repo.earnings) != 1 {
		t.Fatalf("expected exactly 1 earning record, got %d", len(repo.earnings))
	}
	if !repo.credits["agent-1"].Equal(decimal.NewFromFloat(147.20)) {
		t.Fatalf("agent credit = %s, want 147.20", repo.credits["agent-1"])
	}
}

func TestSettle_PendingCashNotSettleable(t *testing.T) {
	svc, _ := settlementFixture(newMemFunds())
	ctx := context.Background()

	_, err := svc.OpenHold(ctx, OpenHoldInput{
		DeliveryID: "d-1", PayerID: "client-1",
		Provider: domain.ProviderCash, Amount: decimal.NewFromInt(184),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Наличные еще не подтверждены курьером
	if err := svc.Settle(ctx, "d-1", "agent-1", decimal.NewFromInt(20)); !errors.Is(err, domain.ErrPaymentNotSettleable) {
		t.Fatalf("expected ErrPaymentNotSettleable, got %v", err)
	}

	if err := svc.Confirm(ctx, "d-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Settle(ctx, "d-1", "agent-1", decimal.NewFromInt(20)); err != nil {
		t.Fatalf("settle after confirm failed: %v", err)
	}
}

func TestConfirm_IdempotentWhenCompleted(t *testing.T) {
	svc, repo := settlementFixture(newMemFunds())
	ctx := context.Background()

	_, err := svc.OpenHold(ctx, OpenHoldInput{
		DeliveryID: "d-1", PayerID: "client-1",
		Provider: domain.ProviderCash, Amount: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Confirm(ctx, "d-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Confirm(ctx, "d-1"); err != nil {
		t.Fatalf("second confirm must be silent: %v", err)
	}
	if repo.payments["d-1"].Status != domain.PaymentStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", repo.payments["d-1"].Status)
	}
}

func TestRefund_ReturnsHeldFundsOnce(t *testing.T) {
	funds := newMemFunds()
	funds.balances["client-1"] = decimal.NewFromInt(200)
	svc, _ := settlementFixture(funds)
	ctx := context.Background()

	_, err := svc.OpenHold(ctx, OpenHoldInput{
		DeliveryID: "d-1", PayerID: "client-1",
		Provider: domain.ProviderWallet, Amount: decimal.NewFromInt(150),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !funds.balances["client-1"].Equal(decimal.NewFromInt(50)) {
		t.Fatalf("balance after hold = %s, want 50", funds.balances["client-1"])
	}

	if err := svc.Refund(ctx, "d-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !funds.balances["client-1"].Equal(decimal.NewFromInt(200)) {
		t.Fatalf("balance after refund = %s, want 200", funds.balances["client-1"])
	}

	// Повторный возврат — тихий успех без движения средств
	if err := svc.Refund(ctx, "d-1"); err != nil {
		t.Fatalf("second refund must be silent: %v", err)
	}
	if !funds.balances["client-1"].Equal(decimal.NewFromInt(200)) {
		t.Fatalf("balance changed on duplicate refund: %s", funds.balances["client-1"])
	}
}
