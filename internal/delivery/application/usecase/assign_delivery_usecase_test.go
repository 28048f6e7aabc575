package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	agentdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/in"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
)

func eligibleAgent(id string) *agentdomain.Agent {
	return &agentdomain.Agent{
		ID:          id,
		IsActive:    true,
		IsVerified:  true,
		IsAvailable: true,
	}
}

func requestedDelivery(id string) *domain.Delivery {
	return &domain.Delivery{
		ID:           id,
		TrackingCode: "DLV-" + id,
		ClientID:     "client-1",
		CityID:       "bitola",
		Status:       domain.StatusRequested,
		RequestedAt:  time.Now().UTC(),
	}
}

type assignFixture struct {
	repo       *memDeliveryRepo
	history    *memHistoryRepo
	agents     *stubAgents
	dispatcher *stubDispatcher
	publisher  *stubPublisher
	service    *AssignDeliveryService
}

func newAssignFixture() *assignFixture {
	f := &assignFixture{
		repo:       newMemDeliveryRepo(),
		history:    &memHistoryRepo{},
		agents:     &stubAgents{agents: map[string]*agentdomain.Agent{}},
		dispatcher: &stubDispatcher{},
		publisher:  &stubPublisher{},
	}
	f.service = NewAssignDeliveryService(
		f.repo, f.history, f.agents, f.dispatcher, f.publisher, &stubNotifier{}, testLogger(),
	)
	return f
}

func TestAssignDelivery_HappyPath(t *testing.T) {
	f := newAssignFixture()
	f.repo.deliveries["d1"] = requestedDelivery("d1")
	f.agents.agents["a1"] = eligibleAgent("a1")

	output, err := f.service.Execute(context.Background(), in.AssignDeliveryInput{
		DeliveryID: "d1",
		AgentID:    "a1",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if output.Status != string(domain.StatusAssigned) {
		t.Errorf("status = %s, want ASSIGNED", output.Status)
	}
	stored, _ := f.repo.FindByID(context.Background(), "d1")
	if stored.AgentID == nil || *stored.AgentID != "a1" {
		t.Errorf("agent not stored on delivery: %+v", stored)
	}
	rows, _ := f.history.ForDelivery(context.Background(), "d1")
	if len(rows) != 1 || rows[0].Status != domain.StatusAssigned {
		t.Errorf("history = %v, want one ASSIGNED row", rows)
	}
	if rows[0].Actor != domain.ActorAgent {
		t.Errorf("history actor = %s, want AGENT", rows[0].Actor)
	}
	if len(f.publisher.notifications) != 1 || f.publisher.notifications[0].UserID != "client-1" {
		t.Errorf("expected one client notification, got %+v", f.publisher.notifications)
	}
	if f.publisher.notifications[0].Type != domain.EventDeliveryAssigned {
		t.Errorf("notification type = %s, want %s", f.publisher.notifications[0].Type, domain.EventDeliveryAssigned)
	}
}

func TestAssignDelivery_AutoAssignPicksNearest(t *testing.T) {
	f := newAssignFixture()
	f.repo.deliveries["d1"] = requestedDelivery("d1")
	f.agents.agents["a1"] = eligibleAgent("a1")
	f.dispatcher.nearest = eligibleAgent("a1")

	output, err := f.service.Execute(context.Background(), in.AssignDeliveryInput{
		DeliveryID: "d1",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if output.AgentID != "a1" {
		t.Errorf("assigned agent = %s, want a1", output.AgentID)
	}
	stored, _ := f.repo.FindByID(context.Background(), "d1")
	if stored.AgentID == nil || *stored.AgentID != "a1" {
		t.Errorf("agent not stored on delivery: %+v", stored)
	}
}

func TestAssignDelivery_AutoAssignNoAgents(t *testing.T) {
	f := newAssignFixture()
	f.repo.deliveries["d1"] = requestedDelivery("d1")

	_, err := f.service.Execute(context.Background(), in.AssignDeliveryInput{
		DeliveryID: "d1",
	})
	if !errors.Is(err, agentdomain.ErrNoAgentsAvailable) {
		t.Fatalf("expected ErrNoAgentsAvailable, got %v", err)
	}
	stored, _ := f.repo.FindByID(context.Background(), "d1")
	if stored.Status != domain.StatusRequested || stored.AgentID != nil {
		t.Errorf("delivery must stay REQUESTED and unassigned: %+v", stored)
	}
}

func TestAssignDelivery_PreconditionOrder(t *testing.T) {
	agentID := "a1"

	tests := []struct {
		name    string
		prepare func(f *assignFixture)
		wantErr error
	}{
		{
			name:    "delivery not found",
			prepare: func(f *assignFixture) {},
			wantErr: domain.ErrDeliveryNotFound,
		},
		{
			name: "already assigned",
			prepare: func(f *assignFixture) {
				d := requestedDelivery("d1")
				other := "a2"
				d.AgentID = &other
				d.Status = domain.StatusAssigned
				f.repo.deliveries["d1"] = d
			},
			wantErr: domain.ErrDeliveryAlreadyAssigned,
		},
		{
			name: "not assignable status",
			prepare: func(f *assignFixture) {
				d := requestedDelivery("d1")
				d.Status = domain.StatusCancelled
				f.repo.deliveries["d1"] = d
			},
			wantErr: domain.ErrDeliveryNotAssignable,
		},
		{
			name: "agent not found",
			prepare: func(f *assignFixture) {
				f.repo.deliveries["d1"] = requestedDelivery("d1")
			},
			wantErr: agentdomain.ErrAgentNotFound,
		},
		{
			name: "agent not eligible",
			prepare: func(f *assignFixture) {
				f.repo.deliveries["d1"] = requestedDelivery("d1")
				a := eligibleAgent(agentID)
				a.IsVerified = false
				f.agents.agents[agentID] = a
			},
			wantErr: agentdomain.ErrAgentNotEligible,
		},
		{
			name: "agent busy",
			prepare: func(f *assignFixture) {
				f.repo.deliveries["d1"] = requestedDelivery("d1")
				f.agents.agents[agentID] = eligibleAgent(agentID)
				busy := requestedDelivery("d2")
				busy.AgentID = &agentID
				busy.Status = domain.StatusPickedUp
				f.repo.deliveries["d2"] = busy
			},
			wantErr: domain.ErrAgentBusy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssignFixture()
			tt.prepare(f)

			_, err := f.service.Execute(context.Background(), in.AssignDeliveryInput{
				DeliveryID: "d1",
				AgentID:    agentID,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAssignDelivery_ConcurrentAcceptOneWins(t *testing.T) {
	f := newAssignFixture()
	f.repo.deliveries["d1"] = requestedDelivery("d1")
	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		f.agents.agents[id] = eligibleAgent(id)
	}

	var wg sync.WaitGroup
	wins := make(chan string, 4)
	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		wg.Add(1)
		go func(agentID string) {
			defer wg.Done()
			_, err := f.service.Execute(context.Background(), in.AssignDeliveryInput{
				DeliveryID: "d1",
				AgentID:    agentID,
			})
			if err == nil {
				wins <- agentID
			}
		}(id)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("winners = %v, want exactly one", winners)
	}

	stored, _ := f.repo.FindByID(context.Background(), "d1")
	if stored.AgentID == nil || *stored.AgentID != winners[0] {
		t.Errorf("stored agent = %v, want %s", stored.AgentID, winners[0])
	}
}
