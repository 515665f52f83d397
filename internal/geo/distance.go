package geo

import "math"

const earthRadiusKm = 6371.0

// Unknown is the sentinel distance for points with missing coordinates.
// Callers sort unknown distances to the end instead of failing.
var Unknown = math.Inf(1)

// Point is a geographic coordinate pair in degrees. Nil fields mean the
// coordinate was never reported.
type Point struct {
	Lat *float64
	Lng *float64
}

// NewPoint builds a Point from concrete coordinates.
func NewPoint(lat, lng float64) Point {
	return Point{Lat: &lat, Lng: &lng}
}

// Complete reports whether both coordinates are present.
func (p Point) Complete() bool {
	return p.Lat != nil && p.Lng != nil
}

// Distance returns the great-circle distance between a and b in kilometers
// using the Haversine formula. If either point is missing a coordinate the
// result is Unknown, never NaN.
func Distance(a, b Point) float64 {
	if !a.Complete() || !b.Complete() {
		return Unknown
	}

	dLat := toRadians(*b.Lat - *a.Lat)
	dLng := toRadians(*b.Lng - *a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(*a.Lat))*math.Cos(toRadians(*b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Known reports whether d is a real measured distance.
func Known(d float64) bool {
	return !math.IsInf(d, 1)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
