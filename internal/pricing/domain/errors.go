package domain

import "errors"

var (
	// ErrConfigNotFound возвращается когда для города нет активной тарифной конфигурации
	ErrConfigNotFound = errors.New("pricing config not found")

	// ErrInvalidRoute возвращается при невалидных точках маршрута
	ErrInvalidRoute = errors.New("invalid route")
)
