// Package geo holds the distance and travel-time primitives shared by the
// proximity filter and the route optimizer. One speed model and one ETA
// rounding policy live here so that every total in the API is comparable.
package geo

import (
	"math"

	"github.com/largekite/travel-planner/internal/types"
)

const earthRadiusKm = 6371

// Nominal speeds for ETA estimation.
const (
	WalkSpeedKmh  = 5.0
	DriveSpeedKmh = 30.0
)

// Meters-per-minute heuristics for converting a time budget into a provider
// search radius. Coarser than the km/h model on purpose: the radius is only
// a hint for the upstream places query, not an exact filter.
const (
	walkMetersPerMinute  = 80
	driveMetersPerMinute = 700
)

// Search radius clamp band, in meters.
const (
	MinSearchRadiusMeters = 500
	MaxSearchRadiusMeters = 15000
)

// DistanceKm returns the great-circle (haversine) distance between two
// coordinates in kilometers.
func DistanceKm(a, b types.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lon1 := a.Longitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	lon2 := b.Longitude * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// SpeedKmh returns the nominal speed for a travel mode.
func SpeedKmh(mode types.TravelMode) float64 {
	if mode == types.TravelModeDrive {
		return DriveSpeedKmh
	}
	return WalkSpeedKmh
}

// EtaMinutes estimates travel time for a distance at the mode's nominal
// speed, rounded to whole minutes and floored at 1 for any nonzero distance.
func EtaMinutes(mode types.TravelMode, distanceKm float64) int {
	if distanceKm <= 0 {
		return 0
	}
	mins := int(math.Round(distanceKm / SpeedKmh(mode) * 60))
	if mins < 1 {
		return 1
	}
	return mins
}

// SearchRadiusMeters converts a travel-time budget into a search radius for
// the upstream venue provider, clamped to [500, 15000] meters.
func SearchRadiusMeters(mode types.TravelMode, maxMinutes int) int {
	perMinute := walkMetersPerMinute
	if mode == types.TravelModeDrive {
		perMinute = driveMetersPerMinute
	}
	radius := maxMinutes * perMinute
	if radius < MinSearchRadiusMeters {
		return MinSearchRadiusMeters
	}
	if radius > MaxSearchRadiusMeters {
		return MaxSearchRadiusMeters
	}
	return radius
}
