package in

import "context"

// CreateDeliveryInput — входные данные для создания доставки
type CreateDeliveryInput struct {
	ClientID        string   `json:"client_id"`
	CityID          string   `json:"city_id"`
	PickupLat       *float64 `json:"pickup_lat,omitempty"`
	PickupLng       *float64 `json:"pickup_lng,omitempty"`
	PickupAddress   string   `json:"pickup_address"`
	DropoffLat      *float64 `json:"dropoff_lat,omitempty"`
	DropoffLng      *float64 `json:"dropoff_lng,omitempty"`
	DropoffAddress  string   `json:"dropoff_address"`
	PackageWeightKg *float64 `json:"package_weight_kg,omitempty"`
	PackageNote     string   `json:"package_note"`
	PromoCode       string   `json:"promo_code,omitempty"`
	PaymentProvider string   `json:"payment_provider"`
	Tip             string   `json:"tip,omitempty"`
}

// CreateDeliveryOutput — результат создания доставки
type CreateDeliveryOutput struct {
	DeliveryID       string  `json:"delivery_id"`
	TrackingCode     string  `json:"tracking_code"`
	Status           string  `json:"status"`
	FareTotal        string  `json:"fare_total"`
	Discount         string  `json:"discount"`
	Currency         string  `json:"currency"`
	DistanceKm       float64 `json:"distance_km"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	PickupAddress    string  `json:"pickup_address"`
	DropoffAddress   string  `json:"dropoff_address"`
}

// CreateDeliveryUseCase — интерфейс use-case для создания доставки
type CreateDeliveryUseCase interface {
	Execute(ctx context.Context, input CreateDeliveryInput) (*CreateDeliveryOutput, error)
}
