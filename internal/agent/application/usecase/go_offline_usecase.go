package usecase

import (
	"context"
	"fmt"

	in "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/application/ports/in"
	out "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

type goOfflineUseCase struct {
	agentRepo out.AgentRepository
	index     out.LocationIndex
	eventPub  out.EventPublisher
	log       *logger.Logger
}

func NewGoOfflineUseCase(
	agentRepo out.AgentRepository,
	index out.LocationIndex,
	eventPub out.EventPublisher,
	log *logger.Logger,
) in.GoOfflineUseCase {
	return &goOfflineUseCase{
		agentRepo: agentRepo,
		index:     index,
		eventPub:  eventPub,
		log:       log,
	}
}

func (uc *goOfflineUseCase) Execute(ctx context.Context, input in.GoOfflineInput) (*in.GoOfflineOutput, error) {
	agent, err := uc.agentRepo.FindByID(ctx, input.AgentID)
	if err != nil {
		return nil, err
	}

	if err := uc.agentRepo.SetAvailability(ctx, input.AgentID, false); err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}

	if err := uc.index.Remove(ctx, agent.CityID, input.AgentID); err != nil {
		uc.log.Error(logger.Entry{
			Action:  "go_offline_index_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"agent_id": input.AgentID,
			},
		})
		return nil, fmt.Errorf("remove agent from index: %w", err)
	}

	if err := uc.eventPub.PublishAgentEvent(ctx, domain.EventAgentOffline, map[string]any{
		"agent_id": input.AgentID,
		"city_id":  agent.CityID,
	}); err != nil {
		uc.log.Warn(logger.Entry{
			Action:  "go_offline_event_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	uc.log.Info(logger.Entry{
		Action:  "agent_offline",
		Message: "agent went offline",
		Additional: map[string]any{
			"agent_id": input.AgentID,
		},
	})

	return &in.GoOfflineOutput{
		Status:  "offline",
		Message: "agent is no longer available",
	}, nil
}
