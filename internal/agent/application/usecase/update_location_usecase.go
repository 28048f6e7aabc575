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

// Минимальный интервал между обновлениями позиции одного курьера
const minLocationInterval = 3 * time.Second

type updateLocationUseCase struct {
	agentRepo    out.AgentRepository
	locationRepo out.LocationRepository
	index        out.LocationIndex
	eventPub     out.EventPublisher
	listener     out.LocationListener
	log          *logger.Logger
}

func NewUpdateLocationUseCase(
	agentRepo out.AgentRepository,
	locationRepo out.LocationRepository,
	index out.LocationIndex,
	eventPub out.EventPublisher,
	listener out.LocationListener,
	log *logger.Logger,
) in.UpdateLocationUseCase {
	return &updateLocationUseCase{
		agentRepo:    agentRepo,
		locationRepo: locationRepo,
		index:        index,
		eventPub:     eventPub,
		listener:     listener,
		log:          log,
	}
}

func (uc *updateLocationUseCase) Execute(ctx context.Context, input in.UpdateLocationInput) (*in.UpdateLocationOutput, error) {
	if err := geo.Validate(input.Latitude, input.Longitude); err != nil {
		return nil, domain.ErrInvalidCoordinates
	}

	// Rate-limit: не чаще одного обновления в 3 секунды
	lastUpdate, err := uc.locationRepo.LastUpdate(ctx, input.AgentID)
	if err == nil && lastUpdate != nil && time.Since(*lastUpdate) < minLocationInterval {
		uc.log.Debug(logger.Entry{
			Action:  "location_update_rate_limited",
			Message: "location update too frequent",
			Additional: map[string]any{
				"agent_id":      input.AgentID,
				"seconds_since": time.Since(*lastUpdate).Seconds(),
			},
		})
		return nil, domain.ErrLocationUpdateTooFrequent
	}

	now := time.Now().UTC()
	loc := &domain.AgentLocation{
		AgentID:   input.AgentID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		UpdatedAt: now,
	}
	if err := uc.locationRepo.Save(ctx, loc); err != nil {
		uc.log.Error(logger.Entry{
			Action:  "location_update_save_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"agent_id": input.AgentID,
			},
		})
		return nil, fmt.Errorf("save location: %w", err)
	}

	// Гео-индекс обновляется только для доступных курьеров
	agent, err := uc.agentRepo.FindByID(ctx, input.AgentID)
	if err != nil {
		return nil, err
	}
	if agent.IsAvailable {
		point := geo.Point{Latitude: input.Latitude, Longitude: input.Longitude}
		if err := uc.index.Add(ctx, agent.CityID, input.AgentID, point); err != nil {
			uc.log.Warn(logger.Entry{
				Action:  "location_index_refresh_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
				Additional: map[string]any{
					"agent_id": input.AgentID,
				},
			})
		}
	}

	if err := uc.eventPub.PublishAgentEvent(ctx, domain.EventAgentLocationUpdated, domain.LocationUpdate{
		AgentID:   input.AgentID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}); err != nil {
		uc.log.Warn(logger.Entry{
			Action:  "location_event_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	if uc.listener != nil {
		point := geo.Point{Latitude: input.Latitude, Longitude: input.Longitude}
		if err := uc.listener.OnLocationUpdated(ctx, input.AgentID, point); err != nil {
			uc.log.Warn(logger.Entry{
				Action:  "location_listener_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
				Additional: map[string]any{
					"agent_id": input.AgentID,
				},
			})
		}
	}

	return &in.UpdateLocationOutput{
		AgentID:   input.AgentID,
		UpdatedAt: now.Format(time.RFC3339),
	}, nil
}
