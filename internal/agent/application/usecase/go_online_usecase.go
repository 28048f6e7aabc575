package usecase

import (
	"context"
	"fmt"
	"time"

	in "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/application/ports/in"
	out "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

type goOnlineUseCase struct {
	agentRepo    out.AgentRepository
	locationRepo out.LocationRepository
	index        out.LocationIndex
	eventPub     out.EventPublisher
	log          *logger.Logger
}

func NewGoOnlineUseCase(
	agentRepo out.AgentRepository,
	locationRepo out.LocationRepository,
	index out.LocationIndex,
	eventPub out.EventPublisher,
	log *logger.Logger,
) in.GoOnlineUseCase {
	return &goOnlineUseCase{
		agentRepo:    agentRepo,
		locationRepo: locationRepo,
		index:        index,
		eventPub:     eventPub,
		log:          log,
	}
}

func (uc *goOnlineUseCase) Execute(ctx context.Context, input in.GoOnlineInput) (*in.GoOnlineOutput, error) {
	if err := geo.Validate(input.Latitude, input.Longitude); err != nil {
		return nil, domain.ErrInvalidCoordinates
	}

	agent, err := uc.agentRepo.FindByID(ctx, input.AgentID)
	if err != nil {
		return nil, err
	}

	if !agent.CanGoOnline() {
		uc.log.Warn(logger.Entry{
			Action:  "go_online_rejected",
			Message: "agent is not active or not verified",
			Additional: map[string]any{
				"agent_id": input.AgentID,
			},
		})
		return nil, domain.ErrAgentNotEligible
	}

	if err := uc.agentRepo.SetAvailability(ctx, input.AgentID, true); err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}

	loc := &domain.AgentLocation{
		AgentID:   input.AgentID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		UpdatedAt: time.Now().UTC(),
	}
	if err := uc.locationRepo.Save(ctx, loc); err != nil {
		return nil, fmt.Errorf("save location: %w", err)
	}

	point := geo.Point{Latitude: input.Latitude, Longitude: input.Longitude}
	if err := uc.index.Add(ctx, agent.CityID, input.AgentID, point); err != nil {
		uc.log.Error(logger.Entry{
			Action:  "go_online_index_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"agent_id": input.AgentID,
			},
		})
		return nil, fmt.Errorf("index agent location: %w", err)
	}

	// Событие в шину, сбой публикации не откатывает переход в онлайн
	if err := uc.eventPub.PublishAgentEvent(ctx, domain.EventAgentOnline, map[string]any{
		"agent_id": input.AgentID,
		"city_id":  agent.CityID,
	}); err != nil {
		uc.log.Warn(logger.Entry{
			Action:  "go_online_event_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	uc.log.Info(logger.Entry{
		Action:  "agent_online",
		Message: "agent went online",
		Additional: map[string]any{
			"agent_id": input.AgentID,
			"city_id":  agent.CityID,
		},
	})

	return &in.GoOnlineOutput{
		Status:  "online",
		Message: "agent is now available for deliveries",
	}, nil
}
