package geo

import "math"

const earthRadiusMeters = 6371000

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Result carries the outcome of a geofence check. Skipped is true when the
// tenant has no office coordinate configured and validation was bypassed.
type Result struct {
	Accepted       bool
	Skipped        bool
	DistanceMeters float64
}

// HaversineDistance returns the great-circle distance between two points in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Validate checks whether a punch location falls inside the office geofence.
// A nil office coordinate means the tenant opted out of geofencing: the punch
// is accepted and Skipped is set so callers can tell the bypass apart from a
// real pass.
func Validate(punch Coordinate, office *Coordinate, radiusMeters float64) Result {
	if office == nil {
		return Result{Accepted: true, Skipped: true}
	}

	distance := HaversineDistance(punch.Latitude, punch.Longitude, office.Latitude, office.Longitude)

	return Result{
		Accepted:       distance <= radiusMeters,
		DistanceMeters: distance,
	}
}
