package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery представляет основную сущность доставки.
type Delivery struct {
	ID               string          `json:"id" db:"id"`
	TrackingCode     string          `json:"tracking_code" db:"tracking_code"`
	ClientID         string          `json:"client_id" db:"client_id"`
	AgentID          *string         `json:"agent_id,omitempty" db:"agent_id"`
	CityID           string          `json:"city_id" db:"city_id"`
	Status           Status          `json:"status" db:"status"`
	PickupLatitude   float64         `json:"pickup_latitude" db:"pickup_latitude"`
	PickupLongitude  float64         `json:"pickup_longitude" db:"pickup_longitude"`
	PickupAddress    string          `json:"pickup_address" db:"pickup_address"`
	DropoffLatitude  float64         `json:"dropoff_latitude" db:"dropoff_latitude"`
	DropoffLongitude float64         `json:"dropoff_longitude" db:"dropoff_longitude"`
	DropoffAddress   string          `json:"dropoff_address" db:"dropoff_address"`
	PackageWeightKg  *float64        `json:"package_weight_kg,omitempty" db:"package_weight_kg"`
	PackageNote      string          `json:"package_note" db:"package_note"`
	DistanceKm       float64         `json:"distance_km" db:"distance_km"`
	FareTotal        decimal.Decimal `json:"fare_total" db:"fare_total"`
	Currency         string          `json:"currency" db:"currency"`
	AssignedAt       *time.Time      `json:"assigned_at,omitempty" db:"assigned_at"`
	RequestedAt      time.Time       `json:"requested_at" db:"requested_at"`
	PickedUpAt       *time.Time      `json:"picked_up_at,omitempty" db:"picked_up_at"`
	DeliveredAt      *time.Time      `json:"delivered_at,omitempty" db:"delivered_at"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancelReason     *string         `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CancelledBy      *string         `json:"cancelled_by,omitempty" db:"cancelled_by"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// Классы акторов в журнале истории доставки
const (
	ActorClient = "CLIENT"
	ActorAgent  = "AGENT"
	ActorSystem = "SYSTEM"
	ActorAdmin  = "ADMIN"
)

// DeliveryHistory — строка аудита перехода статуса
type DeliveryHistory struct {
	ID         string    `json:"id" db:"id"`
	DeliveryID string    `json:"delivery_id" db:"delivery_id"`
	Status     Status    `json:"status" db:"status"`
	Actor      string    `json:"actor" db:"actor"`
	Note       string    `json:"note" db:"note"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// IsTerminal сообщает, находится ли доставка в конечном статусе
func (d *Delivery) IsTerminal() bool {
	return d.Status == StatusDelivered || d.Status == StatusCancelled
}
