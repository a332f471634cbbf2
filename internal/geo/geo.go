// Package geo holds geodesic helpers for GPS coordinates.
package geo

import "math"

// DefaultPropertyRadiusMeters is the geofence used by WithinRadius callers
// checking presence at a property.
const DefaultPropertyRadiusMeters = 50.0

// Distance calculates the distance in meters between two geographical points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000 // Earth's radius in meters.
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}

// Bearing calculates the initial bearing (direction) in degrees.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lon1Rad := toRadians(lon1)
	lat2Rad := toRadians(lat2)
	lon2Rad := toRadians(lon2)

	deltaLon := lon2Rad - lon1Rad

	y := math.Sin(deltaLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon)
	bearingRad := math.Atan2(y, x)
	bearingDeg := toDegrees(bearingRad)

	return math.Mod(bearingDeg+360, 360)
}

// WithinRadius reports whether the current position is inside radiusMeters of
// the target position.
func WithinRadius(targetLat, targetLon, currentLat, currentLon, radiusMeters float64) bool {
	return Distance(targetLat, targetLon, currentLat, currentLon) <= radiusMeters
}

// toRadians converts an angle from degrees to radians.
func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// toDegrees converts an angle from radians to degrees.
func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
