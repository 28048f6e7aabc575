package domain

import "strings"

// Status — статус жизненного цикла доставки
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusAssigned  Status = "ASSIGNED"
	StatusPickedUp  Status = "PICKED_UP"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// statusAliases позволяет старым клиентам присылать PENDING
var statusAliases = map[string]Status{
	"PENDING": StatusRequested,
}

var validTransitions = map[Status][]Status{
	StatusRequested: {StatusAssigned, StatusCancelled},
	StatusAssigned:  {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ParseStatus разбирает статус без учёта регистра.
// Возвращает ErrInvalidStatus для неизвестных значений.
func ParseStatus(raw string) (Status, error) {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := statusAliases[upper]; ok {
		return alias, nil
	}
	s := Status(upper)
	if _, ok := validTransitions[s]; !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// CanTransitionTo проверяет допустимость перехода from -> to
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range validTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
