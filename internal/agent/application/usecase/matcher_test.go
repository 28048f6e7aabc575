package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	out "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/config"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

type stubIndex struct {
	byRadius func(radius float64) []out.Candidate
	calls    []float64
}

func (s *stubIndex) Add(_ context.Context, _, _ string, _ geo.Point) error { return nil }
func (s *stubIndex) Remove(_ context.Context, _, _ string) error           { return nil }

func (s *stubIndex) Nearby(_ context.Context, _ string, _ geo.Point, radiusKm float64) ([]out.Candidate, error) {
	s.calls = append(s.calls, radiusKm)
	return s.byRadius(radiusKm), nil
}

type stubAgentRepo struct {
	agents map[string]*domain.Agent
}

func (s *stubAgentRepo) FindByID(_ context.Context, agentID string) (*domain.Agent, error) {
	a, ok := s.agents[agentID]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	return a, nil
}

func (s *stubAgentRepo) FindByIDs(_ context.Context, agentIDs []string) ([]*domain.Agent, error) {
	var res []*domain.Agent
	for _, id := range agentIDs {
		if a, ok := s.agents[id]; ok {
			res = append(res, a)
		}
	}
	return res, nil
}

func (s *stubAgentRepo) SetAvailability(_ context.Context, agentID string, available bool) error {
	if a, ok := s.agents[agentID]; ok {
		a.IsAvailable = available
	}
	return nil
}

type stubLocationRepo struct {
	locs map[string]*domain.AgentLocation
}

func (s *stubLocationRepo) Save(_ context.Context, loc *domain.AgentLocation) error {
	s.locs[loc.AgentID] = loc
	return nil
}

func (s *stubLocationRepo) LastUpdate(_ context.Context, agentID string) (*time.Time, error) {
	if loc, ok := s.locs[agentID]; ok {
		return &loc.UpdatedAt, nil
	}
	return nil, nil
}

func (s *stubLocationRepo) ForAgents(_ context.Context, agentIDs []string) (map[string]*domain.AgentLocation, error) {
	res := make(map[string]*domain.AgentLocation)
	for _, id := range agentIDs {
		if loc, ok := s.locs[id]; ok {
			res[id] = loc
		}
	}
	return res, nil
}

type stubNotifier struct {
	mu       sync.Mutex
	notified []string
	failFor  string
	done     chan struct{}
}

func (s *stubNotifier) NotifyNewDelivery(_ context.Context, agentID string, _ any) error {
	s.mu.Lock()
	s.notified = append(s.notified, agentID)
	s.mu.Unlock()
	if s.done != nil {
		s.done <- struct{}{}
	}
	if agentID == s.failFor {
		return errors.New("socket closed")
	}
	return nil
}

func dispatchCfg() config.DispatchConfig {
	return config.DispatchConfig{
		InitialRadiusKm:   2,
		RadiusIncrementKm: 2,
		MaxRadiusKm:       10,
		BroadcastRadiusKm: 5,
	}
}

func eligibleAgent(id string) *domain.Agent {
	return &domain.Agent{
		ID:          id,
		CityID:      "skopje",
		IsActive:    true,
		IsVerified:  true,
		IsAvailable: true,
	}
}

var searchPoint = geo.Point{Latitude: 41.9981, Longitude: 21.4254}

func newMatcher(idx *stubIndex, agents *stubAgentRepo, locs *stubLocationRepo, n *stubNotifier) *Matcher {
	return NewMatcher(agents, locs, idx, n, dispatchCfg(), logger.NewLogger("matcher-test", "error"))
}

func TestFindNearest_ExpandsRadius(t *testing.T) {
	agent := eligibleAgent("agent-1")
	candidate := out.Candidate{
		AgentID: "agent-1",
		Point:   geo.Point{Latitude: 42.04, Longitude: 21.4254},
	}

	idx := &stubIndex{byRadius: func(r float64) []out.Candidate {
		if r >= 6 {
			return []out.Candidate{candidate}
		}
		return nil
	}}
	agents := &stubAgentRepo{agents: map[string]*domain.Agent{"agent-1": agent}}
	locs := &stubLocationRepo{locs: map[string]*domain.AgentLocation{
		"agent-1": {AgentID: "agent-1", UpdatedAt: time.Now()},
	}}

	got, err := newMatcher(idx, agents, locs, &stubNotifier{}).FindNearest(context.Background(), "skopje", searchPoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "agent-1" {
		t.Fatalf("matched %s, want agent-1", got.ID)
	}
	// Радиусы 2 и 4 должны были быть опрошены до успеха на 6
	if len(idx.calls) != 3 || idx.calls[0] != 2 || idx.calls[1] != 4 || idx.calls[2] != 6 {
		t.Fatalf("unexpected radius progression: %v", idx.calls)
	}
}

func TestFindNearest_NoAgentsWithinMaxRadius(t *testing.T) {
	idx := &stubIndex{byRadius: func(float64) []out.Candidate { return nil }}
	agents := &stubAgentRepo{agents: map[string]*domain.Agent{}}
	locs := &stubLocationRepo{locs: map[string]*domain.AgentLocation{}}

	_, err := newMatcher(idx, agents, locs, &stubNotifier{}).FindNearest(context.Background(), "skopje", searchPoint)
	if !errors.Is(err, domain.ErrNoAgentsAvailable) {
		t.Fatalf("expected ErrNoAgentsAvailable, got %v", err)
	}
	// Радиусы 2, 4, 6, 8, 10 — все опрошены
	if len(idx.calls) != 5 {
		t.Fatalf("expected 5 radius queries, got %v", idx.calls)
	}
}

func TestFindNearest_ZeroIncrementStillTerminates(t *testing.T) {
	idx := &stubIndex{byRadius: func(float64) []out.Candidate { return nil }}
	agents := &stubAgentRepo{agents: map[string]*domain.Agent{}}
	locs := &stubLocationRepo{locs: map[string]*domain.AgentLocation{}}

	cfg := dispatchCfg()
	cfg.RadiusIncrementKm = 0
	m := NewMatcher(agents, locs, idx, &stubNotifier{}, cfg, logger.NewLogger("matcher-test", "error"))

	_, err := m.FindNearest(context.Background(), "skopje", searchPoint)
	if !errors.Is(err, domain.ErrNoAgentsAvailable) {
		t.Fatalf("expected ErrNoAgentsAvailable, got %v", err)
	}
	// Запасной шаг 2 км: радиусы 2, 4, 6, 8, 10
	if len(idx.calls) != 5 {
		t.Fatalf("expected 5 radius queries, got %v", idx.calls)
	}
}

func TestFindNearest_PicksMinimumDistance(t *testing.T) {
	near := out.Candidate{AgentID: "near", Point: geo.Point{Latitude: 42.005, Longitude: 21.4254}}
	far := out.Candidate{AgentID: "far", Point: geo.Point{Latitude: 42.015, Longitude: 21.4254}}

	idx := &stubIndex{byRadius: func(float64) []out.Candidate {
		return []out.Candidate{far, near}
	}}
	agents := &stubAgentRepo{agents: map[string]*domain.Agent{
		"near": eligibleAgent("near"),
		"far":  eligibleAgent("far"),
	}}
	locs := &stubLocationRepo{locs: map[string]*domain.AgentLocation{
		"near": {AgentID: "near", UpdatedAt: time.Now()},
		"far":  {AgentID: "far", UpdatedAt: time.Now()},
	}}

	got, err := newMatcher(idx, agents, locs, &stubNotifier{}).FindNearest(context.Background(), "skopje", searchPoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "near" {
		t.Fatalf("matched %s, want near", got.ID)
	}
}

func TestFindNearest_TieGoesToFresherLocation(t *testing.T) {
	samePoint := geo.Point{Latitude: 42.005, Longitude: 21.4254}
	stale := out.Candidate{AgentID: "stale", Point: samePoint}
	fresh := out.Candidate{AgentID: "fresh", Point: samePoint}

	idx := &stubIndex{byRadius: func(float64) []out.Candidate {
		return []out.Candidate{stale, fresh}
	}}
	agents := &stubAgentRepo{agents: map[string]*domain.Agent{
		"stale": eligibleAgent("stale"),
		"fresh": eligibleAgent("fresh"),
	}}
	locs := &stubLocationRepo{locs: map[string]*domain.AgentLocation{
		"stale": {AgentID: "stale", UpdatedAt: time.Now().Add(-time.Minute)},
		"fresh": {AgentID: "fresh", UpdatedAt: time.Now()},
	}}

	got, err := newMatcher(idx, agents, locs, &stubNotifier{}).FindNearest(context.Background(), "skopje", searchPoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "fresh" {
		t.Fatalf("matched %s, want fresh", got.ID)
	}
}

func TestFindNearest_SkipsIneligible(t *testing.T) {
	unverified := eligibleAgent("unverified")
	unverified.IsVerified = false
	busy := eligibleAgent("busy")
	busy.IsAvailable = false
	good := eligibleAgent("good")

	idx := &stubIndex{byRadius: func(float64) []out.Candidate {
		return []out.Candidate{
			{AgentID: "unverified", Point: geo.Point{Latitude: 41.999, Longitude: 21.4254}},
			{AgentID: "busy", Point: geo.Point{Latitude: 41.999, Longitude: 21.4254}},
			{AgentID: "good", Point: geo.Point{Latitude: 42.02, Longitude: 21.4254}},
		}
	}}
	agents := &stubAgentRepo{agents: map[string]*domain.Agent{
		"unverified": unverified,
		"busy":       busy,
		"good":       good,
	}}
	locs := &stubLocationRepo{locs: map[string]*domain.AgentLocation{
		"good": {AgentID: "good", UpdatedAt: time.Now()},
	}}

	got, err := newMatcher(idx, agents, locs, &stubNotifier{}).FindNearest(context.Background(), "skopje", searchPoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "good" {
		t.Fatalf("matched %s, want good", got.ID)
	}
}

func TestBroadcast_SingleFailureDoesNotAbort(t *testing.T) {
	idx := &stubIndex{byRadius: func(float64) []out.Candidate {
		return []out.Candidate{
			{AgentID: "a1", Point: geo.Point{Latitude: 42.0, Longitude: 21.42}},
			{AgentID: "a2", Point: geo.Point{Latitude: 42.0, Longitude: 21.43}},
		}
	}}
	agents := &stubAgentRepo{agents: map[string]*domain.Agent{
		"a1": eligibleAgent("a1"),
		"a2": eligibleAgent("a2"),
	}}
	locs := &stubLocationRepo{locs: map[string]*domain.AgentLocation{}}
	notifier := &stubNotifier{failFor: "a1", done: make(chan struct{}, 2)}

	err := newMatcher(idx, agents, locs, notifier).Broadcast(context.Background(), "skopje", searchPoint, map[string]any{"delivery_id": "d-1"})
	if err != nil {
		t.Fatalf("broadcast must not fail on individual notification errors: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-notifier.done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for notifications")
		}
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.notified) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.notified))
	}
}
