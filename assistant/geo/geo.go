// Package geo holds the small amount of coordinate math the assistant
// needs: an equirectangular distance approximation and human-readable
// formatting for distances and walking times.
package geo

import (
	"fmt"
	"math"
)

// One degree of latitude in meters; longitude is scaled by cos(lat).
const metersPerDegree = 111000.0

// Average walking pace used for time estimates, meters per minute.
const walkingPaceMetersPerMinute = 80.0

// LatLng is a WGS84 coordinate pair in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the approximate distance between a and b in meters.
// The equirectangular approximation is plenty for city-scale spans.
func Distance(a, b LatLng) float64 {
	dLat := (b.Lat - a.Lat) * metersPerDegree
	dLng := (b.Lng - a.Lng) * metersPerDegree * math.Cos(a.Lat*math.Pi/180)
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// FormatDistance renders meters as "N m" below a kilometer and "N km"
// (whole kilometers, truncated) from a kilometer up.
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%d km", int(meters/1000))
	}
	return fmt.Sprintf("%d m", int(meters))
}

// WalkingTime estimates the walking time for a distance in meters,
// rounded to the nearest whole minute.
func WalkingTime(meters float64) int {
	return int(math.Round(meters / walkingPaceMetersPerMinute))
}

// FormatWalkingTime renders minutes as "N min" below an hour and
// "H hr" or "H hr M min" from an hour up.
func FormatWalkingTime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	rem := minutes % 60
	if rem == 0 {
		return fmt.Sprintf("%d hr", hours)
	}
	return fmt.Sprintf("%d hr %d min", hours, rem)
}
