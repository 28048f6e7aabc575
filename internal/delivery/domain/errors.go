package domain

import "errors"

// ErrDeliveryNotFound возвращается когда доставка не найдена в хранилище
var ErrDeliveryNotFound = errors.New("delivery not found")

// ErrInvalidStatus возвращается при разборе неизвестного статуса
var ErrInvalidStatus = errors.New("invalid delivery status")

// ErrInvalidTransition возвращается при недопустимом переходе статуса
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrDeliveryAlreadyAssigned возвращается когда агент уже назначен
var ErrDeliveryAlreadyAssigned = errors.New("delivery already assigned")

// ErrDeliveryNotAssignable возвращается когда доставка не в статусе REQUESTED
var ErrDeliveryNotAssignable = errors.New("delivery is not assignable")

// ErrAgentBusy возвращается когда у агента уже есть активная доставка
var ErrAgentBusy = errors.New("agent already has an active delivery")

// ErrNotDeliveryOwner возвращается при попытке действия над чужой доставкой
var ErrNotDeliveryOwner = errors.New("delivery belongs to another user")

// ErrGeocodeFailed возвращается когда адрес не удалось разрешить в координаты
var ErrGeocodeFailed = errors.New("failed to geocode address")
