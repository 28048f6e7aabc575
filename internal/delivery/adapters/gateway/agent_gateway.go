package gateway

import (
	"context"

	agentout "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/application/ports/out"
	agentdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
)

// AgentGateway адаптирует репозитории агентов к портам контекста delivery
type AgentGateway struct {
	agents    agentout.AgentRepository
	locations agentout.LocationRepository
}

// NewAgentGateway создает шлюз агентов
func NewAgentGateway(agents agentout.AgentRepository, locations agentout.LocationRepository) *AgentGateway {
	return &AgentGateway{agents: agents, locations: locations}
}

func (g *AgentGateway) FindByID(ctx context.Context, agentID string) (*agentdomain.Agent, error) {
	return g.agents.FindByID(ctx, agentID)
}

func (g *AgentGateway) LastLocation(ctx context.Context, agentID string) (*agentdomain.AgentLocation, error) {
	locations, err := g.locations.ForAgents(ctx, []string{agentID})
	if err != nil {
		return nil, err
	}
	return locations[agentID], nil
}
