package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	agentdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	pricingdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/pricing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/promo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger("delivery-test", "error")
}

// memDeliveryRepo повторяет условные UPDATE запросы боевого репозитория
type memDeliveryRepo struct {
	mu         sync.Mutex
	deliveries map[string]*domain.Delivery
	completed  map[string]int
	createErr  error
	createN    int
}

func newMemDeliveryRepo() *memDeliveryRepo {
	return &memDeliveryRepo{
		deliveries: make(map[string]*domain.Delivery),
		completed:  make(map[string]int),
	}
}

func (r *memDeliveryRepo) Create(_ context.Context, d *domain.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createN++
	if r.createErr != nil {
		return r.createErr
	}
	clone := *d
	r.deliveries[d.ID] = &clone
	return nil
}

func (r *memDeliveryRepo) FindByID(_ context.Context, id string) (*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deliveries[id]
	if !ok {
		return nil, domain.ErrDeliveryNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *memDeliveryRepo) FindByTrackingCode(_ context.Context, code string) (*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.deliveries {
		if d.TrackingCode == code {
			clone := *d
			return &clone, nil
		}
	}
	return nil, domain.ErrDeliveryNotFound
}

func (r *memDeliveryRepo) Assign(_ context.Context, deliveryID, agentID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deliveries[deliveryID]
	if !ok {
		return false, nil
	}
	if d.Status != domain.StatusRequested || d.AgentID != nil {
		return false, nil
	}
	d.AgentID = &agentID
	d.Status = domain.StatusAssigned
	d.AssignedAt = &at
	return true, nil
}

func (r *memDeliveryRepo) UpdateStatus(_ context.Context, upd out.StatusUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deliveries[upd.DeliveryID]
	if !ok || d.Status != upd.FromStatus {
		return false, nil
	}
	d.Status = upd.ToStatus
	switch upd.ToStatus {
	case domain.StatusPickedUp:
		d.PickedUpAt = &upd.At
	case domain.StatusDelivered:
		d.DeliveredAt = &upd.At
	case domain.StatusCancelled:
		d.CancelledAt = &upd.At
		d.CancelReason = upd.CancelReason
		d.CancelledBy = upd.CancelledBy
		d.AgentID = nil
	}
	return true, nil
}

func (r *memDeliveryRepo) FindActiveByClient(_ context.Context, clientID string) ([]*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.Delivery
	for _, d := range r.deliveries {
		if d.ClientID == clientID && !d.IsTerminal() {
			clone := *d
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *memDeliveryRepo) FindActiveByAgent(_ context.Context, agentID string) (*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.deliveries {
		if d.AgentID != nil && *d.AgentID == agentID && !d.IsTerminal() {
			clone := *d
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memDeliveryRepo) CountCompletedByClient(_ context.Context, clientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed[clientID], nil
}

type memHistoryRepo struct {
	mu   sync.Mutex
	rows []*domain.DeliveryHistory
}

func (r *memHistoryRepo) Append(_ context.Context, h *domain.DeliveryHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, h)
	return nil
}

func (r *memHistoryRepo) ForDelivery(_ context.Context, deliveryID string) ([]*domain.DeliveryHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.DeliveryHistory
	for _, h := range r.rows {
		if h.DeliveryID == deliveryID {
			result = append(result, h)
		}
	}
	return result, nil
}

type stubQuoter struct {
	fare *pricingdomain.FareBreakdown
	err  error
}

func (s *stubQuoter) Quote(_ context.Context, _ string, _, _ geo.Point, _ time.Time) (*pricingdomain.FareBreakdown, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.fare, nil
}

type stubPromos struct {
	discount  decimal.Decimal
	valid     bool
	reason    string
	redeemErr error
	redeemed  int
}

func (s *stubPromos) Estimate(_ context.Context, _, _ string, _ decimal.Decimal) (*promo.Estimation, error) {
	return &promo.Estimation{Discount: s.discount, Valid: s.valid, Reason: s.reason}, nil
}

func (s *stubPromos) Redeem(_ context.Context, _, _, _ string, _ decimal.Decimal) (decimal.Decimal, error) {
	if s.redeemErr != nil {
		return decimal.Zero, s.redeemErr
	}
	s.redeemed++
	return s.discount, nil
}

type holdCall struct {
	deliveryID string
	provider   string
	amount     decimal.Decimal
	tip        decimal.Decimal
}

type settleCall struct {
	deliveryID string
	agentID    string
	percent    decimal.Decimal
}

type stubPayments struct {
	mu      sync.Mutex
	holdErr error
	holds   []holdCall
	settles []settleCall
	refunds []string
}

func (s *stubPayments) OpenHold(_ context.Context, deliveryID, _, provider string, amount, tip decimal.Decimal, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holdErr != nil {
		return s.holdErr
	}
	s.holds = append(s.holds, holdCall{deliveryID: deliveryID, provider: provider, amount: amount, tip: tip})
	return nil
}

func (s *stubPayments) Settle(_ context.Context, deliveryID, agentID string, percent decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settles = append(s.settles, settleCall{deliveryID: deliveryID, agentID: agentID, percent: percent})
	return nil
}

func (s *stubPayments) Refund(_ context.Context, deliveryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refunds = append(s.refunds, deliveryID)
	return nil
}

type stubDispatcher struct {
	mu         sync.Mutex
	nearest    *agentdomain.Agent
	broadcasts int
}

func (s *stubDispatcher) FindNearest(_ context.Context, _ string, _ geo.Point) (*agentdomain.Agent, error) {
	if s.nearest == nil {
		return nil, agentdomain.ErrNoAgentsAvailable
	}
	return s.nearest, nil
}

func (s *stubDispatcher) Broadcast(_ context.Context, _ string, _ geo.Point, _ any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts++
	return nil
}

type stubPublisher struct {
	mu            sync.Mutex
	events        []string
	notifications []*domain.Notification
}

func (s *stubPublisher) PublishDeliveryEvent(_ context.Context, eventType string, _ *domain.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, eventType)
	return nil
}

func (s *stubPublisher) PublishNotification(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

type trackingPush struct {
	userID  string
	payload any
}

type stubNotifier struct {
	mu       sync.Mutex
	sends    int
	tracking []trackingPush
}

func (s *stubNotifier) NotifyStatusChanged(_ context.Context, _ string, _ any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends++
	return nil
}

func (s *stubNotifier) NotifyTracking(_ context.Context, userID string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracking = append(s.tracking, trackingPush{userID: userID, payload: payload})
	return nil
}

type stubGeocoder struct {
	points map[string]geo.Point
}

func (s *stubGeocoder) Geocode(_ context.Context, address string) (geo.Point, error) {
	p, ok := s.points[address]
	if !ok {
		return geo.Point{}, errors.New("address not found")
	}
	return p, nil
}

type stubAgents struct {
	agents    map[string]*agentdomain.Agent
	locations map[string]*agentdomain.AgentLocation
}

func (s *stubAgents) FindByID(_ context.Context, agentID string) (*agentdomain.Agent, error) {
	a, ok := s.agents[agentID]
	if !ok {
		return nil, agentdomain.ErrAgentNotFound
	}
	return a, nil
}

func (s *stubAgents) LastLocation(_ context.Context, agentID string) (*agentdomain.AgentLocation, error) {
	return s.locations[agentID], nil
}

type stubCommission struct {
	percent decimal.Decimal
	err     error
}

func (s *stubCommission) CommissionPercent(_ context.Context, _ string) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.percent, nil
}
