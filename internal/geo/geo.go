package geo

import (
	"fmt"
	"math"
)

// Point — географическая точка
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

const earthRadiusKm = 6371.0

// fallbackSpeedKmh подставляется, когда сконфигурированная скорость некорректна
const fallbackSpeedKmh = 30.0

// ErrInvalidCoordinates возвращается при невалидных координатах
var ErrInvalidCoordinates = fmt.Errorf("invalid coordinates")

// Validate проверяет корректность координат
func Validate(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidCoordinates)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidCoordinates)
	}
	return nil
}

// Haversine вычисляет расстояние между двумя точками в километрах
func Haversine(a, b Point) float64 {
	lat1Rad := a.Latitude * math.Pi / 180
	lat2Rad := b.Latitude * math.Pi / 180
	deltaLat := (b.Latitude - a.Latitude) * math.Pi / 180
	deltaLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// ETAMinutes вычисляет примерное время в пути (минуты, округление вверх).
// Если скорость задана некорректно (<= 0), подставляется fallbackSpeedKmh.
func ETAMinutes(distanceKm, avgSpeedKmh float64) int {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = fallbackSpeedKmh
	}
	if distanceKm <= 0 {
		return 0
	}
	return int(math.Ceil(distanceKm / avgSpeedKmh * 60))
}

// WithinRadius сообщает, лежит ли точка p в радиусе radiusKm от center
func WithinRadius(p, center Point, radiusKm float64) bool {
	if radiusKm <= 0 {
		return false
	}
	return Haversine(p, center) <= radiusKm
}

// PointInPolygon проверяет принадлежность точки полигону (even-odd rule).
// Полигон задается списком вершин; замыкание последней вершины на первую
// выполняется автоматически. Менее трех вершин — всегда false.
func PointInPolygon(p Point, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		vi, vj := polygon[i], polygon[j]
		if (vi.Latitude > p.Latitude) != (vj.Latitude > p.Latitude) {
			// Долгота пересечения ребра с горизонталью точки
			crossLng := (vj.Longitude-vi.Longitude)*(p.Latitude-vi.Latitude)/
				(vj.Latitude-vi.Latitude) + vi.Longitude
			if p.Longitude < crossLng {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
