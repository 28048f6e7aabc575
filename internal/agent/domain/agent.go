package domain

import "time"

// Agent представляет курьера платформы.
type Agent struct {
	ID          string    `json:"id" db:"id"`
	FullName    string    `json:"full_name" db:"full_name"`
	Phone       string    `json:"phone" db:"phone"`
	CityID      string    `json:"city_id" db:"city_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	IsVerified  bool      `json:"is_verified" db:"is_verified"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Eligible сообщает, может ли курьер получать назначения
func (a *Agent) Eligible() bool {
	return a.IsActive && a.IsVerified
}

// CanGoOnline сообщает, может ли курьер перейти в онлайн
func (a *Agent) CanGoOnline() bool {
	return a.IsActive && a.IsVerified
}

// AgentLocation — последняя известная позиция курьера (last-write-wins).
type AgentLocation struct {
	AgentID   string    `json:"agent_id" db:"agent_id"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LocationUpdate — DTO от WebSocket или HTTP клиента.
type LocationUpdate struct {
	AgentID   string  `json:"agent_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Event — событие контекста курьеров для шины сообщений
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Типы событий курьеров
const (
	EventAgentOnline          = "agent.online"
	EventAgentOffline         = "agent.offline"
	EventAgentLocationUpdated = "agent.location_updated"
)
