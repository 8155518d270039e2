// internal/pkg/geo/haversine.go
package geo

import "math"

// earthRadiusKm is the mean radius of the Earth in kilometers.
const earthRadiusKm = 6371

// Coordinates represents a latitude/longitude pair in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HaversineDistance returns the great-circle distance between two points
// in kilometers.
func HaversineDistance(from, to Coordinates) float64 {
	dLat := degToRad(to.Latitude - from.Latitude)
	dLon := degToRad(to.Longitude - from.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(from.Latitude))*math.Cos(degToRad(to.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
