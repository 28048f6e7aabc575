package out_ws

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/ws"
)

// WsDeliveryNotifier отправляет клиентам обновления доставок через WebSocket
type WsDeliveryNotifier struct {
	hub *ws.Hub
	log *logger.Logger
}

// NewWsDeliveryNotifier создает новый notifier
func NewWsDeliveryNotifier(hub *ws.Hub, log *logger.Logger) *WsDeliveryNotifier {
	return &WsDeliveryNotifier{
		hub: hub,
		log: log,
	}
}

// NotifyStatusChanged отправляет пользователю снимок статуса доставки
func (n *WsDeliveryNotifier) NotifyStatusChanged(ctx context.Context, userID string, payload any) error {
	return n.send(userID, payload)
}

// NotifyTracking отправляет клиенту обновление позиции агента
func (n *WsDeliveryNotifier) NotifyTracking(ctx context.Context, userID string, payload any) error {
	return n.send(userID, payload)
}

func (n *WsDeliveryNotifier) send(userID string, payload any) error {
	if err := n.hub.SendToUserJSON(userID, payload); err != nil {
		n.log.Debug(logger.Entry{
			Action:  "notify_user_failed",
			Message: err.Error(),
			Additional: map[string]any{
				"user_id": userID,
			},
		})
		return err
	}
	return nil
}
