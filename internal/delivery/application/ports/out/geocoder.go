package out

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
)

// Geocoder разрешает почтовый адрес в координаты
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Point, error)
}
