package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	out "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/config"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

const notifyTimeout = 2 * time.Second

// Шаг расширения радиуса, когда в конфигурации задан ноль или меньше
const defaultRadiusIncrementKm = 2.0

// Matcher подбирает курьеров для доставок: поиск ближайшего с расширением
// радиуса и широковещательная рассылка в фиксированном радиусе.
type Matcher struct {
	agentRepo    out.AgentRepository
	locationRepo out.LocationRepository
	index        out.LocationIndex
	notifier     out.AgentNotifier
	cfg          config.DispatchConfig
	log          *logger.Logger
}

func NewMatcher(
	agentRepo out.AgentRepository,
	locationRepo out.LocationRepository,
	index out.LocationIndex,
	notifier out.AgentNotifier,
	cfg config.DispatchConfig,
	log *logger.Logger,
) *Matcher {
	return &Matcher{
		agentRepo:    agentRepo,
		locationRepo: locationRepo,
		index:        index,
		notifier:     notifier,
		cfg:          cfg,
		log:          log,
	}
}

// FindNearest ищет ближайшего доступного курьера, расширяя радиус поиска
// от начального до максимального. Кандидаты фильтруются до активных и
// верифицированных; при равном расстоянии выигрывает более свежая позиция.
func (m *Matcher) FindNearest(ctx context.Context, cityID string, point geo.Point) (*domain.Agent, error) {
	increment := m.cfg.RadiusIncrementKm
	if increment <= 0 {
		increment = defaultRadiusIncrementKm
	}
	for radius := m.cfg.InitialRadiusKm; radius <= m.cfg.MaxRadiusKm; radius += increment {
		candidates, err := m.index.Nearby(ctx, cityID, point, radius)
		if err != nil {
			return nil, fmt.Errorf("query location index: %w", err)
		}
		if len(candidates) == 0 {
			continue
		}

		best, err := m.pickBest(ctx, point, candidates)
		if err != nil {
			return nil, err
		}
		if best != nil {
			m.log.Info(logger.Entry{
				Action:  "agent_matched",
				Message: "nearest agent found",
				Additional: map[string]any{
					"agent_id":  best.ID,
					"city_id":   cityID,
					"radius_km": radius,
				},
			})
			return best, nil
		}
	}

	m.log.Warn(logger.Entry{
		Action:  "agent_match_failed",
		Message: "no agents within max radius",
		Additional: map[string]any{
			"city_id":       cityID,
			"max_radius_km": m.cfg.MaxRadiusKm,
		},
	})
	return nil, domain.ErrNoAgentsAvailable
}

// pickBest выбирает из кандидатов ближайшего подходящего курьера
func (m *Matcher) pickBest(ctx context.Context, point geo.Point, candidates []out.Candidate) (*domain.Agent, error) {
	ids := make([]string, 0, len(candidates))
	byID := make(map[string]out.Candidate, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.AgentID)
		byID[c.AgentID] = c
	}

	agents, err := m.agentRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load candidate agents: %w", err)
	}

	locations, err := m.locationRepo.ForAgents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load candidate locations: %w", err)
	}

	var (
		best     *domain.Agent
		bestDist float64
		bestAt   time.Time
	)
	for _, agent := range agents {
		if !agent.Eligible() || !agent.IsAvailable {
			continue
		}
		c, ok := byID[agent.ID]
		if !ok {
			continue
		}

		dist := geo.Haversine(point, c.Point)
		var updatedAt time.Time
		if loc, ok := locations[agent.ID]; ok {
			updatedAt = loc.UpdatedAt
		}

		switch {
		case best == nil:
		case dist < bestDist-distanceEpsilon:
		case math.Abs(dist-bestDist) <= distanceEpsilon && updatedAt.After(bestAt):
		default:
			continue
		}
		best, bestDist, bestAt = agent, dist, updatedAt
	}

	return best, nil
}

// Расстояния в пределах метра считаются равными при выборе победителя
const distanceEpsilon = 0.001

// Broadcast рассылает предложение доставки всем подходящим курьерам в
// фиксированном радиусе. Отправка каждому курьеру fire-and-forget: отказ
// одного уведомления не прерывает рассылку.
func (m *Matcher) Broadcast(ctx context.Context, cityID string, point geo.Point, payload any) error {
	candidates, err := m.index.Nearby(ctx, cityID, point, m.cfg.BroadcastRadiusKm)
	if err != nil {
		return fmt.Errorf("query location index: %w", err)
	}
	if len(candidates) == 0 {
		return nil
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.AgentID)
	}
	agents, err := m.agentRepo.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load candidate agents: %w", err)
	}

	notified := 0
	for _, agent := range agents {
		if !agent.Eligible() || !agent.IsAvailable {
			continue
		}
		notified++
		go func(agentID string) {
			nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := m.notifier.NotifyNewDelivery(nctx, agentID, payload); err != nil {
				m.log.Debug(logger.Entry{
					Action:  "broadcast_notify_failed",
					Message: err.Error(),
					Additional: map[string]any{
						"agent_id": agentID,
					},
				})
			}
		}(agent.ID)
	}

	m.log.Info(logger.Entry{
		Action:  "delivery_broadcast",
		Message: "delivery offered to nearby agents",
		Additional: map[string]any{
			"city_id":   cityID,
			"radius_km": m.cfg.BroadcastRadiusKm,
			"agents":    notified,
		},
	})

	return nil
}
