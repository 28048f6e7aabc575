package domain

import "time"

// DeliveryEvent публикуется в брокер при каждом изменении доставки
type DeliveryEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

const (
	EventDeliveryRequested = "delivery.requested"
	EventDeliveryAssigned  = "delivery.assigned"
	EventDeliveryPickedUp  = "delivery.picked_up"
	EventDeliveryInTransit = "delivery.in_transit"
	EventDeliveryDelivered = "delivery.delivered"
	EventDeliveryCancelled = "delivery.cancelled"
)

// Notification — сообщение для fanout-обмена уведомлений
type Notification struct {
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Type        string `json:"type"`
	ReferenceID string `json:"referenceId"`
}
