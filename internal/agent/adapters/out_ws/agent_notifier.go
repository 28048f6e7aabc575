package out_ws

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/ws"
)

// WsAgentNotifier отправляет курьерам предложения доставок через WebSocket
type WsAgentNotifier struct {
	hub *ws.Hub
	log *logger.Logger
}

// NewWsAgentNotifier создает новый notifier
func NewWsAgentNotifier(hub *ws.Hub, log *logger.Logger) *WsAgentNotifier {
	return &WsAgentNotifier{
		hub: hub,
		log: log,
	}
}

// NotifyNewDelivery отправляет курьеру предложение новой доставки
func (n *WsAgentNotifier) NotifyNewDelivery(ctx context.Context, agentID string, payload any) error {
	if err := n.hub.SendToUserJSON(agentID, payload); err != nil {
		n.log.Debug(logger.Entry{
			Action:  "notify_agent_failed",
			Message: err.Error(),
			Additional: map[string]any{
				"agent_id": agentID,
			},
		})
		return err
	}
	return nil
}
