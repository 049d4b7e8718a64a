package distance

import (
	"context"
	"math"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/ports"
)

const earthRadiusMeters = 6371000

// GeodesicEstimator produces great-circle estimates when no live routing
// source is available. The road factor inflates the straight-line
// distance to approximate real road networks.
type GeodesicEstimator struct {
	AvgSpeedKmh float64
	RoadFactor  float64
}

func NewGeodesicEstimator(avgSpeedKmh, roadFactor float64) *GeodesicEstimator {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = 40
	}
	if roadFactor <= 0 {
		roadFactor = 1.3
	}
	return &GeodesicEstimator{AvgSpeedKmh: avgSpeedKmh, RoadFactor: roadFactor}
}

// DistanceAndDuration never fails; results are always marked degraded.
func (g *GeodesicEstimator) DistanceAndDuration(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (ports.DistanceResult, error) {
	meters := Haversine(origin, destination) * g.RoadFactor
	speedMs := g.AvgSpeedKmh * 1000 / 3600
	seconds := meters / speedMs

	return ports.DistanceResult{
		DistanceMeters:  int(math.Round(meters)),
		DurationSeconds: int(math.Round(seconds)),
		Degraded:        true,
	}, nil
}

// Haversine returns the great-circle distance in meters.
func Haversine(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}
