package out

import "context"

// DeliveryNotifier доставляет realtime-сообщения клиенту и агенту
type DeliveryNotifier interface {
	// NotifyStatusChanged отправляет снимок статуса пользователю
	NotifyStatusChanged(ctx context.Context, userID string, payload any) error

	// NotifyTracking отправляет обновление трекинга клиенту
	NotifyTracking(ctx context.Context, userID string, payload any) error
}
