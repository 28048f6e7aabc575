package domain

import "errors"

var (
	// ErrAgentNotFound возвращается когда курьер не найден
	ErrAgentNotFound = errors.New("agent not found")

	// ErrAgentNotEligible возвращается когда курьер неактивен или не верифицирован
	ErrAgentNotEligible = errors.New("agent is not eligible")

	// ErrInvalidCoordinates возвращается при невалидных координатах
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrLocationUpdateTooFrequent возвращается при превышении частоты обновления позиции
	ErrLocationUpdateTooFrequent = errors.New("location update too frequent")

	// ErrNoAgentsAvailable возвращается когда поиск не нашел курьера в максимальном радиусе
	ErrNoAgentsAvailable = errors.New("no agents available")
)
