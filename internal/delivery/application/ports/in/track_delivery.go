package in

import "context"

// TrackDeliveryInput — запрос трекинга по трек-коду
type TrackDeliveryInput struct {
	TrackingCode string `json:"tracking_code"`
}

// TrackDeliveryOutput — снимок текущего положения доставки
type TrackDeliveryOutput struct {
	DeliveryID       string   `json:"delivery_id"`
	TrackingCode     string   `json:"tracking_code"`
	Status           string   `json:"status"`
	AgentLat         *float64 `json:"agent_lat,omitempty"`
	AgentLng         *float64 `json:"agent_lng,omitempty"`
	RemainingKm      *float64 `json:"remaining_km,omitempty"`
	RemainingMinutes *int     `json:"remaining_minutes,omitempty"`
	DropoffAddress   string   `json:"dropoff_address"`
}

// TrackDeliveryUseCase — интерфейс use-case для трекинга доставки
type TrackDeliveryUseCase interface {
	Execute(ctx context.Context, input TrackDeliveryInput) (*TrackDeliveryOutput, error)
}
