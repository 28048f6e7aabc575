package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	agentdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/in"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
)

func TestTrackDelivery_ReturnsAgentPositionAndETA(t *testing.T) {
	repo := newMemDeliveryRepo()
	agents := &stubAgents{
		agents:    map[string]*agentdomain.Agent{},
		locations: map[string]*agentdomain.AgentLocation{},
	}

	d := assignedDelivery("d1", "a1")
	d.Status = domain.StatusInTransit
	d.DropoffLatitude = 41.0359729
	d.DropoffLongitude = 21.42
	repo.deliveries["d1"] = d
	// Агент в точке забора, до высадки около 4 км
	agents.locations["a1"] = &agentdomain.AgentLocation{
		AgentID:   "a1",
		Latitude:  41.0,
		Longitude: 21.42,
		UpdatedAt: time.Now().UTC(),
	}

	service := NewTrackDeliveryService(repo, agents, 35, testLogger())

	output, err := service.Execute(context.Background(), in.TrackDeliveryInput{TrackingCode: "DLV-d1"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if output.AgentLat == nil || *output.AgentLat != 41.0 {
		t.Errorf("agent lat = %v, want 41.0", output.AgentLat)
	}
	if output.RemainingKm == nil || *output.RemainingKm < 3.9 || *output.RemainingKm > 4.1 {
		t.Errorf("remaining km = %v, want ~4", output.RemainingKm)
	}
	// 4 км при 35 км/ч — 7 минут с округлением вверх
	if output.RemainingMinutes == nil || *output.RemainingMinutes != 7 {
		t.Errorf("remaining minutes = %v, want 7", output.RemainingMinutes)
	}
}

func TestTrackDelivery_TerminalStatusHasNoPosition(t *testing.T) {
	repo := newMemDeliveryRepo()
	agents := &stubAgents{locations: map[string]*agentdomain.AgentLocation{}}

	d := assignedDelivery("d1", "a1")
	d.Status = domain.StatusDelivered
	repo.deliveries["d1"] = d

	service := NewTrackDeliveryService(repo, agents, 30, testLogger())

	output, err := service.Execute(context.Background(), in.TrackDeliveryInput{TrackingCode: "DLV-d1"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if output.AgentLat != nil || output.RemainingKm != nil {
		t.Errorf("terminal delivery leaked position: %+v", output)
	}
}

func TestTrackDelivery_UnknownCode(t *testing.T) {
	service := NewTrackDeliveryService(newMemDeliveryRepo(), &stubAgents{}, 30, testLogger())

	_, err := service.Execute(context.Background(), in.TrackDeliveryInput{TrackingCode: "DLV-nope"})
	if !errors.Is(err, domain.ErrDeliveryNotFound) {
		t.Fatalf("err = %v, want ErrDeliveryNotFound", err)
	}
}
