// Package geo converts raw geofence geometry into a single coordinate and
// resolves human-readable addresses.
package geo

import (
	"errors"
	"math"

	"visits/internal/model"
)

// Centroid averages the points on the unit sphere and converts the mean
// vector back to a coordinate. For the small convex regions geofences cover,
// the result stays inside the region.
func Centroid(points []model.Coordinate) (model.Coordinate, error) {
	if len(points) == 0 {
		return model.Coordinate{}, errors.New("centroid of no points")
	}
	var x, y, z float64
	for _, p := range points {
		lat := p.Lat * math.Pi / 180
		lng := p.Lng * math.Pi / 180
		x += math.Cos(lat) * math.Cos(lng)
		y += math.Cos(lat) * math.Sin(lng)
		z += math.Sin(lat)
	}
	n := float64(len(points))
	x /= n
	y /= n
	z /= n
	lng := math.Atan2(y, x)
	hyp := math.Sqrt(x*x + y*y)
	lat := math.Atan2(z, hyp)
	return model.NewCoordinate(lat*180/math.Pi, lng*180/math.Pi)
}
