package out

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
)

// LocationListener получает уведомления о новой позиции курьера
type LocationListener interface {
	OnLocationUpdated(ctx context.Context, agentID string, point geo.Point) error
}
